package service

import (
	"testing"
	"time"

	"plataforma_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func fixedAccessService(now time.Time) *AccessService {
	s := NewAccessService()
	s.Now = func() time.Time { return now }
	return s
}

func TestCheckAccessPriorityChain(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := fixedAccessService(now)

	freeCourse := &model.Course{IsPremium: false}
	premiumCourse := &model.Course{IsPremium: true}

	activeUser := &model.User{
		Role: model.RoleMember,
		Subscription: model.Subscription{
			Status:    model.SubscriptionActive,
			ExpiresAt: now.Add(30 * 24 * time.Hour),
		},
	}
	expiredActiveUser := &model.User{
		Role: model.RoleMember,
		Subscription: model.Subscription{
			Status:    model.SubscriptionActive,
			ExpiresAt: now.Add(-time.Hour),
		},
	}
	adminUser := &model.User{
		Role: model.RoleAdmin,
		Subscription: model.Subscription{
			Status: model.SubscriptionInactive,
		},
	}
	trialUser := &model.User{
		Role: model.RoleMember,
		Subscription: model.Subscription{
			Status:    model.SubscriptionTrial,
			ExpiresAt: now.Add(3 * 24 * time.Hour),
		},
	}
	lapsedUser := &model.User{
		Role: model.RoleMember,
		Subscription: model.Subscription{
			Status:    model.SubscriptionCancelled,
			ExpiresAt: now.Add(-time.Hour),
		},
	}

	tests := []struct {
		name      string
		course    *model.Course
		user      *model.User
		hasAccess bool
		level     model.AccessLevel
		reason    string
	}{
		{"curso inexistente", nil, activeUser, false, model.AccessNone, model.ReasonCourseNotFound},
		{"usuário inexistente", premiumCourse, nil, false, model.AccessNone, model.ReasonUserNotFound},
		{"curso gratuito vence assinatura", freeCourse, lapsedUser, true, model.AccessFull, model.ReasonFreeCourse},
		{"assinatura ativa", premiumCourse, activeUser, true, model.AccessFull, model.ReasonActiveSubscription},
		{"admin sem assinatura", premiumCourse, adminUser, true, model.AccessFull, model.ReasonAdminOverride},
		{"período de teste", premiumCourse, trialUser, true, model.AccessPreview, model.ReasonTrialPeriod},
		{"assinatura exigida", premiumCourse, lapsedUser, false, model.AccessNone, model.ReasonSubscriptionRequired},
		{"status ativo vencido não basta", premiumCourse, expiredActiveUser, false, model.AccessNone, model.ReasonSubscriptionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := svc.CheckAccess(tt.course, tt.user)
			assert.Equal(t, tt.hasAccess, d.HasAccess)
			assert.Equal(t, tt.level, d.Level)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheckAccessAdminWithActiveSubscription(t *testing.T) {
	// Assinatura ativa tem prioridade sobre o papel de admin.
	now := time.Now()
	svc := fixedAccessService(now)

	admin := &model.User{
		Role: model.RoleAdmin,
		Subscription: model.Subscription{
			Status:    model.SubscriptionActive,
			ExpiresAt: now.Add(time.Hour),
		},
	}

	d := svc.CheckAccess(&model.Course{IsPremium: true}, admin)
	assert.True(t, d.HasAccess)
	assert.Equal(t, model.ReasonActiveSubscription, d.Reason)
}

func TestCheckAnonymousAccess(t *testing.T) {
	svc := NewAccessService()

	free := svc.CheckAnonymousAccess(&model.Course{IsPremium: false})
	assert.True(t, free.HasAccess)
	// Visitante nunca recebe acesso full, mesmo em curso gratuito.
	assert.Equal(t, model.AccessPreview, free.Level)

	premium := svc.CheckAnonymousAccess(&model.Course{IsPremium: true})
	assert.False(t, premium.HasAccess)
	assert.Equal(t, model.AccessNone, premium.Level)

	missing := svc.CheckAnonymousAccess(nil)
	assert.False(t, missing.HasAccess)
	assert.Equal(t, model.ReasonCourseNotFound, missing.Reason)
}
