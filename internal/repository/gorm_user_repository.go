package repository

import (
	"errors"
	"fmt"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"

	"gorm.io/gorm"
)

// GormUserRepository implementa o mesmo contrato sobre MySQL. A mesclagem
// parcial é feita com leitura + aplicação + gravação dentro de uma transação
// para não perder atualizações concorrentes.
type GormUserRepository struct {
	DB *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{DB: db}
}

func (r *GormUserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("erro ao buscar usuário por ID: %w", util.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar usuário por ID: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", util.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("erro ao buscar usuário por email: %w", util.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar usuário por email: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) Create(user *model.User) error {
	user.Email = util.NormalizeEmail(user.Email)

	var count int64
	if err := r.DB.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("erro ao criar usuário: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("erro ao criar usuário: %w", util.ErrEmailRegistered)
	}

	now := time.Now()
	if user.Role == "" {
		user.Role = model.RoleMember
	}
	if user.Status == "" {
		user.Status = model.StatusActive
	}
	if user.Subscription.Status == "" {
		user.Subscription = model.Subscription{
			Status:    model.SubscriptionTrial,
			Plan:      "trial",
			ExpiresAt: now.Add(model.TrialDuration),
		}
	}
	user.Progress = model.Progress{}
	if user.Profile.JoinDate.IsZero() {
		user.Profile.JoinDate = now
	}

	if err := r.DB.Create(user).Error; err != nil {
		return fmt.Errorf("erro ao criar usuário: %w", err)
	}
	return nil
}

func (r *GormUserRepository) Update(id string, patch model.UserPatch) (*model.User, error) {
	var updated *model.User
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}
		user.Apply(patch)
		user.UpdatedAt = time.Now()
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar usuário: %w", err)
	}
	return updated, nil
}

func (r *GormUserRepository) UpdateLastLogin(id string, at time.Time) error {
	res := r.DB.Model(&model.User{}).Where("id = ?", id).
		Update("profile_last_login", at)
	if res.Error != nil {
		return fmt.Errorf("erro ao atualizar último login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("erro ao atualizar último login: %w", util.ErrUserNotFound)
	}
	return nil
}

func (r *GormUserRepository) UpdateProgress(id string, patch model.ProgressPatch) (*model.User, error) {
	return r.Update(id, model.UserPatch{Progress: &patch})
}

func (r *GormUserRepository) FindAll(filter model.UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.SubscriptionStatus != "" {
		query = query.Where("subscription_status = ?", filter.SubscriptionStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("erro ao listar usuários: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("erro ao listar usuários: %w", err)
	}
	return users, total, nil
}

func (r *GormUserRepository) Delete(id string) error {
	res := r.DB.Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("erro ao excluir usuário: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("erro ao excluir usuário: %w", util.ErrUserNotFound)
	}
	return nil
}

func (r *GormUserRepository) ExpireLapsed(now time.Time) (int64, error) {
	res := r.DB.Model(&model.User{}).
		Where("subscription_status IN ?", []string{string(model.SubscriptionActive), string(model.SubscriptionTrial)}).
		Where("subscription_expires_at <= ?", now).
		Update("subscription_status", model.SubscriptionInactive)
	if res.Error != nil {
		return 0, fmt.Errorf("erro ao expirar assinaturas: %w", res.Error)
	}
	return res.RowsAffected, nil
}
