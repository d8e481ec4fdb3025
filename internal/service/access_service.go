package service

import (
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/pkg/monitoring"
)

// AccessService decide a visibilidade de conteúdo. A decisão é uma cadeia de
// prioridade: a primeira regra que casa vence, e nada é cacheado.
type AccessService struct {
	Now func() time.Time
}

func NewAccessService() *AccessService {
	return &AccessService{Now: time.Now}
}

// CheckAccess avalia (curso, usuário) na ordem fixa:
//  1. curso inexistente  2. usuário inexistente  3. curso gratuito
//  4. assinatura ativa  5. admin  6. período de teste  7. assinatura exigida
func (s *AccessService) CheckAccess(course *model.Course, user *model.User) model.AccessDecision {
	d := s.decide(course, user)
	monitoring.AccessDecisionCounter.WithLabelValues(d.Reason).Inc()
	return d
}

func (s *AccessService) decide(course *model.Course, user *model.User) model.AccessDecision {
	if course == nil {
		return model.AccessDecision{HasAccess: false, Level: model.AccessNone, Reason: model.ReasonCourseNotFound}
	}
	if user == nil {
		return model.AccessDecision{HasAccess: false, Level: model.AccessNone, Reason: model.ReasonUserNotFound}
	}
	if !course.IsPremium {
		return model.AccessDecision{HasAccess: true, Level: model.AccessFull, Reason: model.ReasonFreeCourse}
	}
	if user.Subscription.IsActive(s.Now()) {
		return model.AccessDecision{HasAccess: true, Level: model.AccessFull, Reason: model.ReasonActiveSubscription}
	}
	if user.Role == model.RoleAdmin {
		return model.AccessDecision{HasAccess: true, Level: model.AccessFull, Reason: model.ReasonAdminOverride}
	}
	if user.Subscription.Status == model.SubscriptionTrial {
		return model.AccessDecision{HasAccess: true, Level: model.AccessPreview, Reason: model.ReasonTrialPeriod}
	}
	return model.AccessDecision{HasAccess: false, Level: model.AccessNone, Reason: model.ReasonSubscriptionRequired}
}

// CheckAnonymousAccess trata visitantes sem login. Curso gratuito aparece
// como preview, nunca como full: a assimetria com o usuário logado é
// proposital.
func (s *AccessService) CheckAnonymousAccess(course *model.Course) model.AccessDecision {
	var d model.AccessDecision
	if course == nil {
		d = model.AccessDecision{HasAccess: false, Level: model.AccessNone, Reason: model.ReasonCourseNotFound}
	} else if course.IsPremium {
		d = model.AccessDecision{HasAccess: false, Level: model.AccessNone, Reason: model.ReasonAnonymousPremium}
	} else {
		d = model.AccessDecision{HasAccess: true, Level: model.AccessPreview, Reason: model.ReasonAnonymousFree}
	}
	monitoring.AccessDecisionCounter.WithLabelValues(d.Reason).Inc()
	return d
}
