package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"
)

// MemoryUserRepository é o dono único da coleção de usuários em processo.
// O mutex serializa toda mutação; a mesclagem parcial acontece dentro da
// seção crítica para que atualizações concorrentes do mesmo registro não se
// percam.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string // email normalizado -> id
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) FindByID(id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("erro ao buscar usuário por ID: %w", util.ErrUserNotFound)
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) FindByEmail(email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[util.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("erro ao buscar usuário por email: %w", util.ErrUserNotFound)
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryUserRepository) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = util.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("erro ao criar usuário: %w", util.ErrEmailRegistered)
	}

	now := time.Now()
	if user.ID == "" {
		user.ID = model.GenerateID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleMember
	}
	if user.Status == "" {
		user.Status = model.StatusActive
	}
	// Cadastro novo entra em período de teste de 7 dias com progresso zerado.
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
	if user.Profile.Preferences.Language == "" {
		user.Profile.Preferences = model.Preferences{
			Language:      "pt-BR",
			Notifications: true,
			Autoplay:      true,
		}
	}

	r.byID[user.ID] = user.Clone()
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) Update(id string, patch model.UserPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("erro ao atualizar usuário: %w", util.ErrUserNotFound)
	}

	u.Apply(patch)
	u.UpdatedAt = time.Now()
	return u.Clone(), nil
}

func (r *MemoryUserRepository) UpdateLastLogin(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("erro ao atualizar último login: %w", util.ErrUserNotFound)
	}
	u.Profile.LastLogin = at
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) UpdateProgress(id string, patch model.ProgressPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("erro ao atualizar progresso: %w", util.ErrUserNotFound)
	}
	u.Progress.Apply(&patch)
	u.UpdatedAt = time.Now()
	return u.Clone(), nil
}

func (r *MemoryUserRepository) FindAll(filter model.UserFilter) ([]model.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		if filter.Role != "" && string(u.Role) != filter.Role {
			continue
		}
		if filter.SubscriptionStatus != "" && string(u.Subscription.Status) != filter.SubscriptionStatus {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page, limit := normalizePage(filter.Page, filter.Limit)
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]model.User, 0, end-start)
	for _, u := range matched[start:end] {
		out = append(out, *u.Clone())
	}
	return out, total, nil
}

func (r *MemoryUserRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("erro ao excluir usuário: %w", util.ErrUserNotFound)
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

// ExpireLapsed normaliza o status armazenado de assinaturas vencidas. A
// checagem de acesso nunca depende disso; é apenas higiene do estado.
func (r *MemoryUserRepository) ExpireLapsed(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.byID {
		s := u.Subscription.Status
		if (s == model.SubscriptionActive || s == model.SubscriptionTrial) && !u.Subscription.ExpiresAt.After(now) {
			u.Subscription.Status = model.SubscriptionInactive
			u.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
