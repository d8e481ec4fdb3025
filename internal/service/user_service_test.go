package service

import (
	"testing"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, *repository.MemoryUserRepository) {
	t.Helper()
	repo := repository.NewMemoryUserRepository()
	return NewUserService(repo), repo
}

func seedUser(t *testing.T, repo *repository.MemoryUserRepository, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Usuária", Email: email, PasswordHash: "hash-secreto"}
	require.NoError(t, repo.Create(u))
	return u
}

func setSubscription(t *testing.T, repo *repository.MemoryUserRepository, id string, status model.SubscriptionStatus, expiresAt time.Time) {
	t.Helper()
	_, err := repo.Update(id, model.UserPatch{
		Subscription: &model.SubscriptionPatch{Status: &status, ExpiresAt: &expiresAt},
	})
	require.NoError(t, err)
}

func TestGetUserByIDSanitizes(t *testing.T) {
	svc, repo := newUserFixture(t)
	u := seedUser(t, repo, "a@test.com")

	res := svc.GetUserByID(u.ID)
	require.True(t, res.Success)
	assert.Empty(t, res.User.PasswordHash)

	res = svc.GetUserByID("nada")
	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
}

func TestListUsersStripsHashes(t *testing.T) {
	svc, repo := newUserFixture(t)
	seedUser(t, repo, "a@test.com")
	seedUser(t, repo, "b@test.com")

	res := svc.ListUsers(model.UserFilter{})
	require.True(t, res.Success)
	assert.Equal(t, int64(2), res.Total)
	for _, u := range res.Users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestHasActiveSubscription(t *testing.T) {
	svc, repo := newUserFixture(t)
	u := seedUser(t, repo, "a@test.com")

	future := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name      string
		status    model.SubscriptionStatus
		expiresAt time.Time
		want      bool
	}{
		{"ativa e vigente", model.SubscriptionActive, future, true},
		{"ativa porém vencida", model.SubscriptionActive, past, false},
		{"trial vigente não é ativa", model.SubscriptionTrial, future, false},
		{"cancelada vigente não é ativa", model.SubscriptionCancelled, future, false},
		{"inativa", model.SubscriptionInactive, past, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSubscription(t, repo, u.ID, tt.status, tt.expiresAt)
			assert.Equal(t, tt.want, svc.HasActiveSubscription(u.ID))
		})
	}

	assert.False(t, svc.HasActiveSubscription("id-inexistente"))
}

func TestHasPermission(t *testing.T) {
	svc, repo := newUserFixture(t)

	admin := seedUser(t, repo, "admin@test.com")
	role := model.RoleAdmin
	_, err := repo.Update(admin.ID, model.UserPatch{Role: &role})
	require.NoError(t, err)

	member := seedUser(t, repo, "member@test.com")
	setSubscription(t, repo, member.ID, model.SubscriptionActive, time.Now().Add(24*time.Hour))

	trial := seedUser(t, repo, "trial@test.com") // cadastro novo cai no trial

	assert.True(t, svc.HasPermission(admin.ID, model.PermManageUsers))
	assert.True(t, svc.HasPermission(admin.ID, model.PermDelete))

	assert.True(t, svc.HasPermission(member.ID, model.PermRead))
	assert.True(t, svc.HasPermission(member.ID, model.PermWriteOwn))
	assert.False(t, svc.HasPermission(member.ID, model.PermManageUsers))

	// Membro em trial enxerga só o conjunto limitado.
	assert.True(t, svc.HasPermission(trial.ID, model.PermReadLimited))
	assert.False(t, svc.HasPermission(trial.ID, model.PermRead))

	assert.False(t, svc.HasPermission("id-inexistente", model.PermRead))
	assert.False(t, svc.HasPermission(admin.ID, model.Permission("permissao-desconhecida")))
}

func TestSanitizeProgressPatch(t *testing.T) {
	// Valores chegam como float64 por virem de JSON decodificado.
	patch := SanitizeProgressPatch(map[string]interface{}{
		"coursesCompleted":   float64(3),
		"totalWatchTime":     float64(120),
		"certificatesEarned": float64(-1),  // negativo cai fora
		"currentStreak":      float64(2.5), // fração cai fora
		"hackField":          float64(999), // desconhecido cai fora
		"role":               "admin",      // tipo errado cai fora
	})

	require.NotNil(t, patch.CoursesCompleted)
	assert.Equal(t, uint(3), *patch.CoursesCompleted)
	require.NotNil(t, patch.TotalWatchTime)
	assert.Equal(t, uint(120), *patch.TotalWatchTime)
	assert.Nil(t, patch.CertificatesEarned)
	assert.Nil(t, patch.CurrentStreak)
}

func TestUpdateProgressIgnoresUnknownFields(t *testing.T) {
	svc, repo := newUserFixture(t)
	u := seedUser(t, repo, "a@test.com")

	res := svc.UpdateProgress(u.ID, map[string]interface{}{
		"coursesCompleted": float64(5),
		"subscription":     map[string]interface{}{"status": "active"},
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, uint(5), res.User.Progress.CoursesCompleted)

	// O payload cru nunca alcança a assinatura.
	got, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, got.Subscription.Status)
}

func TestUpdateUserMergesPartial(t *testing.T) {
	svc, repo := newUserFixture(t)
	u := seedUser(t, repo, "a@test.com")

	name := "Novo Nome"
	res := svc.UpdateUser(u.ID, model.UserPatch{Name: &name})
	require.True(t, res.Success)
	assert.Equal(t, "Novo Nome", res.User.Name)
	assert.Equal(t, "a@test.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
}

func TestExpireLapsedSubscriptionsSweep(t *testing.T) {
	svc, repo := newUserFixture(t)

	lapsed := seedUser(t, repo, "lapsed@test.com")
	setSubscription(t, repo, lapsed.ID, model.SubscriptionActive, time.Now().Add(-time.Hour))

	current := seedUser(t, repo, "current@test.com")
	setSubscription(t, repo, current.ID, model.SubscriptionActive, time.Now().Add(time.Hour))

	svc.ExpireLapsedSubscriptions()

	got, err := repo.FindByID(lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionInactive, got.Subscription.Status)

	got, err = repo.FindByID(current.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, got.Subscription.Status)
}
