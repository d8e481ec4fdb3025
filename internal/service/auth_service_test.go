package service

import (
	"testing"
	"time"

	"plataforma_backend/internal/config"
	"plataforma_backend/internal/model"
	"plataforma_backend/internal/repository"
	"plataforma_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "segredo-de-teste-para-assinatura"
	cfg.JWT.ExpireTime = 24 * time.Hour
	return cfg
}

func newAuthService() (*AuthService, repository.UserRepository) {
	repo := repository.NewMemoryUserRepository()
	return NewAuthService(repo, util.NewBcryptHasher(), testConfig()), repo
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()

	tests := []struct {
		name    string
		in      RegisterInput
		message string
	}{
		{"nome curto", RegisterInput{Name: "A", Email: "a@test.com", Password: "senha123"}, "Nome deve ter pelo menos 2 caracteres"},
		{"nome só espaços", RegisterInput{Name: "   ", Email: "a@test.com", Password: "senha123"}, "Nome deve ter pelo menos 2 caracteres"},
		{"email inválido", RegisterInput{Name: "Ana", Email: "não-é-email", Password: "senha123"}, "Formato de email inválido"},
		{"senha curta", RegisterInput{Name: "Ana", Email: "a@test.com", Password: "12345"}, "Senha deve ter pelo menos 6 caracteres"},
		{"senha com espaços não conta", RegisterInput{Name: "Ana", Email: "a@test.com", Password: "  123  "}, "Senha deve ter pelo menos 6 caracteres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Register(tt.in)
			assert.False(t, res.Success)
			assert.Equal(t, CodeValidation, res.Code)
			assert.Equal(t, tt.message, res.Message)
			assert.Nil(t, res.User)
			assert.Empty(t, res.Token)
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	svc, _ := newAuthService()

	res := svc.Register(RegisterInput{Name: "  Ana Silva  ", Email: "Ana@Test.com", Password: "senha123"})
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.User)
	assert.NotEmpty(t, res.Token)

	// O usuário devolvido sai higienizado e com os padrões de cadastro.
	assert.Equal(t, "Ana Silva", res.User.Name)
	assert.Equal(t, "ana@test.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
	assert.Equal(t, model.RoleMember, res.User.Role)
	assert.Equal(t, model.SubscriptionTrial, res.User.Subscription.Status)

	// O token recém-emitido valida e aponta para o usuário criado.
	v := svc.ValidateToken(res.Token)
	assert.True(t, v.Valid)
	assert.Equal(t, res.User.ID, v.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	require.True(t, svc.Register(RegisterInput{Name: "Ana", Email: "ana@test.com", Password: "senha123"}).Success)

	res := svc.Register(RegisterInput{Name: "Outra", Email: "ANA@test.com", Password: "senha456"})
	assert.False(t, res.Success)
	assert.Equal(t, CodeConflict, res.Code)
	assert.Equal(t, "Este email já está em uso", res.Message)
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newAuthService()

	reg := svc.Register(RegisterInput{Name: "Ana", Email: "ana@test.com", Password: "senha123"})
	require.True(t, reg.Success)

	t.Run("campos obrigatórios", func(t *testing.T) {
		res := svc.Authenticate("", "senha123")
		assert.Equal(t, CodeValidation, res.Code)
		assert.Equal(t, "Email e senha são obrigatórios", res.Message)
	})

	t.Run("senha errada", func(t *testing.T) {
		res := svc.Authenticate("ana@test.com", "errada123")
		assert.Equal(t, CodeUnauthorized, res.Code)
		assert.Equal(t, "Email ou senha incorretos", res.Message)
	})

	t.Run("email inexistente usa a mesma mensagem", func(t *testing.T) {
		res := svc.Authenticate("ninguem@test.com", "senha123")
		assert.Equal(t, "Email ou senha incorretos", res.Message)
	})

	t.Run("sucesso registra último login", func(t *testing.T) {
		res := svc.Authenticate("ANA@test.com", "senha123")
		require.True(t, res.Success, res.Message)
		assert.NotEmpty(t, res.Token)
		assert.Empty(t, res.User.PasswordHash)

		stored, err := repo.FindByID(res.User.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), stored.Profile.LastLogin, time.Minute)
	})

	t.Run("conta suspensa", func(t *testing.T) {
		suspended := model.StatusSuspended
		_, err := repo.Update(reg.User.ID, model.UserPatch{Status: &suspended})
		require.NoError(t, err)

		res := svc.Authenticate("ana@test.com", "senha123")
		assert.Equal(t, CodeUnauthorized, res.Code)
		assert.Equal(t, "Conta suspensa, entre em contato com o suporte", res.Message)
	})
}

func TestValidateTokenExpiry(t *testing.T) {
	svc, _ := newAuthService()

	reg := svc.Register(RegisterInput{Name: "Ana", Email: "ana@test.com", Password: "senha123"})
	require.True(t, reg.Success)

	// Token emitido com expiração no passado equivale a um token de 25 horas
	// atrás: tem de falhar sem erro, só Valid=false.
	expired, err := util.GenerateJWT(reg.User, svc.Cfg.JWT.Secret, -time.Hour)
	require.NoError(t, err)
	assert.False(t, svc.ValidateToken(expired).Valid)

	fresh, err := util.GenerateJWT(reg.User, svc.Cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	assert.True(t, svc.ValidateToken(fresh).Valid)

	assert.False(t, svc.ValidateToken("lixo.nao.assinado").Valid)
	assert.False(t, svc.ValidateToken("").Valid)

	// Assinatura com outro segredo não passa.
	forged, err := util.GenerateJWT(reg.User, "outro-segredo-qualquer-bem-longo", time.Hour)
	require.NoError(t, err)
	assert.False(t, svc.ValidateToken(forged).Valid)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService()

	reg := svc.Register(RegisterInput{Name: "Ana", Email: "ana@test.com", Password: "senha123"})
	require.True(t, reg.Success)

	env := svc.ChangePassword(reg.User.ID, "errada", "novasenha")
	assert.Equal(t, CodeValidation, env.Code)
	assert.Equal(t, "Senha atual incorreta", env.Message)

	env = svc.ChangePassword(reg.User.ID, "senha123", "curta")
	assert.Equal(t, CodeValidation, env.Code)
	assert.Equal(t, "Nova senha deve ter pelo menos 6 caracteres", env.Message)

	env = svc.ChangePassword("id-inexistente", "senha123", "novasenha")
	assert.Equal(t, CodeNotFound, env.Code)

	env = svc.ChangePassword(reg.User.ID, "senha123", "novasenha")
	require.True(t, env.Success, env.Message)

	assert.False(t, svc.Authenticate("ana@test.com", "senha123").Success)
	assert.True(t, svc.Authenticate("ana@test.com", "novasenha").Success)
}
