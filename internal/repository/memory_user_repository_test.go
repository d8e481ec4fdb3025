package repository

import (
	"testing"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(name, email string) *model.User {
	return &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$hash",
	}
}

func TestCreateSeedsTrialSubscription(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := newUser("Maria", "maria@test.com")
	require.NoError(t, repo.Create(u))

	got, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, got.Subscription.Status)
	assert.WithinDuration(t, time.Now().Add(model.TrialDuration), got.Subscription.ExpiresAt, time.Minute)
	assert.Equal(t, model.Progress{}, got.Progress)
	assert.Equal(t, model.RoleMember, got.Role)
	assert.False(t, got.Profile.JoinDate.IsZero())
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(newUser("Maria", "maria@test.com")))

	err := repo.Create(newUser("Outra Maria", "MARIA@test.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := newUser("Admin", "admin@test.com")
	require.NoError(t, repo.Create(u))

	got, err := repo.FindByEmail("ADMIN@TEST.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "admin@test.com", got.Email)
}

func TestFindByIDUnknown(t *testing.T) {
	repo := NewMemoryUserRepository()

	_, err := repo.FindByID("nope")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestUpdateDeepMergesNestedObjects(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := newUser("Maria", "maria@test.com")
	require.NoError(t, repo.Create(u))

	watch := uint(120)
	_, err := repo.UpdateProgress(u.ID, model.ProgressPatch{TotalWatchTime: &watch})
	require.NoError(t, err)

	// Atualizar só coursesCompleted não pode zerar totalWatchTime.
	completed := uint(3)
	updated, err := repo.Update(u.ID, model.UserPatch{
		Progress: &model.ProgressPatch{CoursesCompleted: &completed},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), updated.Progress.CoursesCompleted)
	assert.Equal(t, uint(120), updated.Progress.TotalWatchTime)

	// O mesmo vale para preferências dentro do perfil.
	lang := "en"
	updated, err = repo.Update(u.ID, model.UserPatch{
		Profile: &model.ProfilePatch{
			Preferences: &model.PreferencesPatch{Language: &lang},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "en", updated.Profile.Preferences.Language)
	assert.True(t, updated.Profile.Preferences.Notifications)
	assert.False(t, updated.Profile.JoinDate.IsZero())
}

func TestReadsReturnCopies(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := newUser("Maria", "maria@test.com")
	require.NoError(t, repo.Create(u))

	got, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	got.Name = "Hackeada"
	got.Progress.CoursesCompleted = 99

	fresh, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", fresh.Name)
	assert.Equal(t, uint(0), fresh.Progress.CoursesCompleted)
}

func TestFindAllFiltersAndPaginates(t *testing.T) {
	repo := NewMemoryUserRepository()

	admin := newUser("Admin", "admin@test.com")
	admin.Role = model.RoleAdmin
	require.NoError(t, repo.Create(admin))

	for _, email := range []string{"a@test.com", "b@test.com", "c@test.com"} {
		require.NoError(t, repo.Create(newUser("Membro", email)))
	}

	admins, total, err := repo.FindAll(model.UserFilter{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)

	trials, total, err := repo.FindAll(model.UserFilter{SubscriptionStatus: "trial", Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, trials, 2)

	page3, _, err := repo.FindAll(model.UserFilter{SubscriptionStatus: "trial", Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestDeleteRemovesEmailIndex(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := newUser("Maria", "maria@test.com")
	require.NoError(t, repo.Create(u))
	require.NoError(t, repo.Delete(u.ID))

	_, err := repo.FindByEmail("maria@test.com")
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	// Email liberado para novo cadastro.
	assert.NoError(t, repo.Create(newUser("Maria 2", "maria@test.com")))
}

func TestExpireLapsedNormalizesStatus(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := newUser("Maria", "maria@test.com")
	require.NoError(t, repo.Create(u))

	past := time.Now().Add(-time.Hour)
	active := model.SubscriptionActive
	_, err := repo.Update(u.ID, model.UserPatch{
		Subscription: &model.SubscriptionPatch{Status: &active, ExpiresAt: &past},
	})
	require.NoError(t, err)

	n, err := repo.ExpireLapsed(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionInactive, got.Subscription.Status)
}
