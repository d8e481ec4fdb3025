package service

import (
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/repository"
	"plataforma_backend/pkg/logger"

	"go.uber.org/zap"
)

// UserService orquestra consultas e mutações de usuários sobre o
// repositório injetado.
type UserService struct {
	UserRepo repository.UserRepository
	Now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo, Now: time.Now}
}

func (s *UserService) GetUserByID(id string) UserResult {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return UserResult{Envelope: failFrom(err)}
	}
	return UserResult{Envelope: ok(), User: sanitize(user)}
}

func (s *UserService) GetUserByEmail(email string) UserResult {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return UserResult{Envelope: failFrom(err)}
	}
	return UserResult{Envelope: ok(), User: sanitize(user)}
}

func (s *UserService) ListUsers(filter model.UserFilter) UserListResult {
	users, total, err := s.UserRepo.FindAll(filter)
	if err != nil {
		return UserListResult{Envelope: failFrom(err)}
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return UserListResult{Envelope: ok(), Users: users, Total: total, Page: page, Limit: limit}
}

// UpdateUser aplica uma atualização parcial: sub-objetos de perfil,
// assinatura e progresso são mesclados campo a campo, nunca substituídos.
func (s *UserService) UpdateUser(id string, patch model.UserPatch) UserResult {
	user, err := s.UserRepo.Update(id, patch)
	if err != nil {
		return UserResult{Envelope: failFrom(err)}
	}
	return UserResult{Envelope: ok(), User: sanitize(user)}
}

func (s *UserService) DeleteUser(id string) Envelope {
	if err := s.UserRepo.Delete(id); err != nil {
		return failFrom(err)
	}
	return ok()
}

// SanitizeProgressPatch filtra um payload cru de progresso: só os quatro
// contadores conhecidos passam, cada um exigido como número não negativo.
// Campos desconhecidos e valores inválidos são descartados em silêncio.
func SanitizeProgressPatch(raw map[string]interface{}) model.ProgressPatch {
	var patch model.ProgressPatch
	if v, ok := nonNegativeUint(raw["coursesCompleted"]); ok {
		patch.CoursesCompleted = &v
	}
	if v, ok := nonNegativeUint(raw["totalWatchTime"]); ok {
		patch.TotalWatchTime = &v
	}
	if v, ok := nonNegativeUint(raw["certificatesEarned"]); ok {
		patch.CertificatesEarned = &v
	}
	if v, ok := nonNegativeUint(raw["currentStreak"]); ok {
		patch.CurrentStreak = &v
	}
	return patch
}

func nonNegativeUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n != float64(uint(n)) {
			return 0, false
		}
		return uint(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	}
	return 0, false
}

func (s *UserService) UpdateProgress(id string, raw map[string]interface{}) UserResult {
	patch := SanitizeProgressPatch(raw)
	user, err := s.UserRepo.UpdateProgress(id, patch)
	if err != nil {
		return UserResult{Envelope: failFrom(err)}
	}
	return UserResult{Envelope: ok(), User: sanitize(user)}
}

// HasPermission responde false para usuário ou papel desconhecido, nunca
// erro.
func (s *UserService) HasPermission(id string, perm model.Permission) bool {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return false
	}
	for _, p := range model.RolePermissions[user.EffectiveRole(s.Now())] {
		if p == perm {
			return true
		}
	}
	return false
}

// HasActiveSubscription revalida sempre contra expiresAt; o status
// armazenado sozinho não basta. Usuário desconhecido responde false.
func (s *UserService) HasActiveSubscription(id string) bool {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return false
	}
	return user.Subscription.IsActive(s.Now())
}

// ExpireLapsedSubscriptions é chamada pelo varredor periódico para alinhar
// o status armazenado de assinaturas vencidas.
func (s *UserService) ExpireLapsedSubscriptions() {
	n, err := s.UserRepo.ExpireLapsed(s.Now())
	if err != nil {
		logger.Log.Error("falha na varredura de assinaturas", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Log.Info("assinaturas vencidas normalizadas", zap.Int64("count", n))
	}
}
