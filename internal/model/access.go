package model

type AccessLevel string

const (
	AccessFull    AccessLevel = "full"
	AccessPreview AccessLevel = "preview"
	AccessNone    AccessLevel = "none"
)

// Motivos na ordem de prioridade da cadeia de decisão.
const (
	ReasonCourseNotFound       = "CourseNotFound"
	ReasonUserNotFound         = "UserNotFound"
	ReasonFreeCourse           = "FreeCourse"
	ReasonActiveSubscription   = "ActiveSubscription"
	ReasonAdminOverride        = "AdminOverride"
	ReasonTrialPeriod          = "TrialPeriod"
	ReasonSubscriptionRequired = "SubscriptionRequired"
	ReasonAnonymousFree        = "AnonymousFreePreview"
	ReasonAnonymousPremium     = "AnonymousPremiumLocked"
)

// AccessDecision é derivada a cada consulta, nunca armazenada.
type AccessDecision struct {
	HasAccess bool        `json:"hasAccess"`
	Level     AccessLevel `json:"accessLevel"`
	Reason    string      `json:"reason"`
}
