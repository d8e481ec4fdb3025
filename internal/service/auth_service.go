package service

import (
	"errors"
	"strings"
	"time"

	"plataforma_backend/internal/config"
	"plataforma_backend/internal/model"
	"plataforma_backend/internal/repository"
	"plataforma_backend/internal/util"
	"plataforma_backend/pkg/logger"

	"go.uber.org/zap"
)

// AuthService cobre cadastro, login, troca de senha e o ciclo de vida do
// token. O token é um JWT assinado com validade de 24h; o formato antigo
// token_<id>_<timestamp> foi aposentado mantendo o mesmo contrato de expiração.
type AuthService struct {
	UserRepo repository.UserRepository
	Hasher   util.PasswordHasher
	Cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, hasher util.PasswordHasher, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Hasher:   hasher,
		Cfg:      cfg,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(in RegisterInput) AuthResult {
	name := strings.TrimSpace(in.Name)
	email := util.NormalizeEmail(in.Email)
	password := strings.TrimSpace(in.Password)

	if len(name) < 2 {
		return AuthResult{Envelope: fail(CodeValidation, "Nome deve ter pelo menos 2 caracteres")}
	}
	if !util.IsValidEmail(email) {
		return AuthResult{Envelope: fail(CodeValidation, "Formato de email inválido")}
	}
	if len(password) < 6 {
		return AuthResult{Envelope: fail(CodeValidation, "Senha deve ter pelo menos 6 caracteres")}
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		logger.Log.Error("falha ao gerar hash de senha", zap.Error(err))
		return AuthResult{Envelope: fail(CodeInternal, "erro interno, tente novamente")}
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleMember,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			return AuthResult{Envelope: fail(CodeConflict, "Este email já está em uso")}
		}
		logger.Log.Error("falha ao criar usuário", zap.Error(err))
		return AuthResult{Envelope: failFrom(err)}
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		logger.Log.Error("falha ao emitir token", zap.Error(err))
		return AuthResult{Envelope: fail(CodeInternal, "erro interno, tente novamente")}
	}

	return AuthResult{Envelope: ok(), User: sanitize(user), Token: token}
}

func (s *AuthService) Authenticate(email, password string) AuthResult {
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthResult{Envelope: fail(CodeValidation, "Email e senha são obrigatórios")}
	}
	email = util.NormalizeEmail(email)
	if !util.IsValidEmail(email) {
		return AuthResult{Envelope: fail(CodeValidation, "Formato de email inválido")}
	}

	user := s.validateCredentials(email, password)
	if user == nil {
		return AuthResult{Envelope: fail(CodeUnauthorized, "Email ou senha incorretos")}
	}
	if user.Status == model.StatusSuspended {
		return AuthResult{Envelope: fail(CodeUnauthorized, "Conta suspensa, entre em contato com o suporte")}
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		logger.Log.Warn("falha ao registrar último login", zap.String("userId", user.ID), zap.Error(err))
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		logger.Log.Error("falha ao emitir token", zap.Error(err))
		return AuthResult{Envelope: fail(CodeInternal, "erro interno, tente novamente")}
	}

	return AuthResult{Envelope: ok(), User: sanitize(user), Token: token}
}

// validateCredentials devolve o usuário quando email e senha conferem, nil
// caso contrário. Nunca distingue "email inexistente" de "senha errada".
func (s *AuthService) validateCredentials(email, password string) *model.User {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return nil
	}
	if !s.Hasher.Compare(user.PasswordHash, password) {
		return nil
	}
	return user
}

// ValidateToken checa assinatura e expiração. Token vencido ou malformado
// resulta em Valid=false, nunca em erro.
func (s *AuthService) ValidateToken(token string) TokenValidation {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return TokenValidation{Valid: false}
	}
	return TokenValidation{Valid: true, UserID: claims.UserID}
}

func (s *AuthService) ChangePassword(userID, current, newPassword string) Envelope {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return failFrom(err)
	}
	if !s.Hasher.Compare(user.PasswordHash, current) {
		return fail(CodeValidation, "Senha atual incorreta")
	}
	if len(strings.TrimSpace(newPassword)) < 6 {
		return fail(CodeValidation, "Nova senha deve ter pelo menos 6 caracteres")
	}

	hash, err := s.Hasher.Hash(strings.TrimSpace(newPassword))
	if err != nil {
		logger.Log.Error("falha ao gerar hash de senha", zap.Error(err))
		return fail(CodeInternal, "erro interno, tente novamente")
	}
	if _, err := s.UserRepo.Update(userID, model.UserPatch{PasswordHash: &hash}); err != nil {
		return failFrom(err)
	}
	return ok()
}

// sanitize devolve uma cópia sem o hash de credencial; além da tag json:"-",
// o campo é zerado para nunca atravessar a fronteira do serviço.
func sanitize(u *model.User) *model.User {
	cp := u.Clone()
	cp.PasswordHash = ""
	return cp
}
