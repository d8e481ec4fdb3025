package model

import (
	"time"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// TrialDuration é o período de teste concedido a cada novo cadastro.
const TrialDuration = 7 * 24 * time.Hour

type Subscription struct {
	Status    SubscriptionStatus `gorm:"size:20;default:'trial'" json:"status"`
	Plan      string             `gorm:"size:50" json:"plan"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// IsActive valida a assinatura contra o relógio: o status armazenado sozinho
// nunca é autoritativo.
func (s Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionActive && s.ExpiresAt.After(now)
}

type Progress struct {
	CoursesCompleted   uint `gorm:"default:0" json:"coursesCompleted"`
	TotalWatchTime     uint `gorm:"default:0" json:"totalWatchTime"` // minutos
	CertificatesEarned uint `gorm:"default:0" json:"certificatesEarned"`
	CurrentStreak      uint `gorm:"default:0" json:"currentStreak"`
}

type Preferences struct {
	Language      string `gorm:"size:10;default:'pt-BR'" json:"language"`
	Notifications bool   `gorm:"default:true" json:"notifications"`
	Autoplay      bool   `gorm:"default:true" json:"autoplay"`
}

type Profile struct {
	JoinDate    time.Time   `json:"joinDate"`
	LastLogin   time.Time   `json:"lastLogin"`
	Avatar      string      `gorm:"size:255" json:"avatar"`
	Preferences Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
}

type User struct {
	BaseModel
	Name         string       `gorm:"size:100;not null" json:"name"`
	Email        string       `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"size:100;not null" json:"-"`
	Role         UserRole     `gorm:"size:20;default:'member'" json:"role"`
	Status       UserStatus   `gorm:"size:20;default:'active'" json:"status"`
	Subscription Subscription `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription"`
	Progress     Progress     `gorm:"embedded;embeddedPrefix:progress_" json:"progress"`
	Profile      Profile      `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
}

func (User) TableName() string {
	return "users"
}

// Clone devolve uma cópia independente; todos os campos do usuário são
// tipos-valor, então a cópia da struct basta.
func (u *User) Clone() *User {
	cp := *u
	return &cp
}

// SubscriptionPatch, ProgressPatch, PreferencesPatch, ProfilePatch e
// UserPatch descrevem atualizações parciais. Nil significa "não tocar":
// sub-objetos são mesclados campo a campo, nunca substituídos inteiros.
type SubscriptionPatch struct {
	Status    *SubscriptionStatus `json:"status,omitempty"`
	Plan      *string             `json:"plan,omitempty"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
}

type ProgressPatch struct {
	CoursesCompleted   *uint `json:"coursesCompleted,omitempty"`
	TotalWatchTime     *uint `json:"totalWatchTime,omitempty"`
	CertificatesEarned *uint `json:"certificatesEarned,omitempty"`
	CurrentStreak      *uint `json:"currentStreak,omitempty"`
}

type PreferencesPatch struct {
	Language      *string `json:"language,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
	Autoplay      *bool   `json:"autoplay,omitempty"`
}

type ProfilePatch struct {
	Avatar      *string           `json:"avatar,omitempty"`
	Preferences *PreferencesPatch `json:"preferences,omitempty"`
}

type UserPatch struct {
	Name         *string            `json:"name,omitempty"`
	PasswordHash *string            `json:"-"`
	Role         *UserRole          `json:"role,omitempty"`
	Status       *UserStatus        `json:"status,omitempty"`
	Subscription *SubscriptionPatch `json:"subscription,omitempty"`
	Progress     *ProgressPatch     `json:"progress,omitempty"`
	Profile      *ProfilePatch      `json:"profile,omitempty"`
}

func (s *Subscription) Apply(p *SubscriptionPatch) {
	if p == nil {
		return
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Plan != nil {
		s.Plan = *p.Plan
	}
	if p.ExpiresAt != nil {
		s.ExpiresAt = *p.ExpiresAt
	}
}

func (g *Progress) Apply(p *ProgressPatch) {
	if p == nil {
		return
	}
	if p.CoursesCompleted != nil {
		g.CoursesCompleted = *p.CoursesCompleted
	}
	if p.TotalWatchTime != nil {
		g.TotalWatchTime = *p.TotalWatchTime
	}
	if p.CertificatesEarned != nil {
		g.CertificatesEarned = *p.CertificatesEarned
	}
	if p.CurrentStreak != nil {
		g.CurrentStreak = *p.CurrentStreak
	}
}

func (f *Preferences) Apply(p *PreferencesPatch) {
	if p == nil {
		return
	}
	if p.Language != nil {
		f.Language = *p.Language
	}
	if p.Notifications != nil {
		f.Notifications = *p.Notifications
	}
	if p.Autoplay != nil {
		f.Autoplay = *p.Autoplay
	}
}

func (pr *Profile) Apply(p *ProfilePatch) {
	if p == nil {
		return
	}
	if p.Avatar != nil {
		pr.Avatar = *p.Avatar
	}
	pr.Preferences.Apply(p.Preferences)
}

func (u *User) Apply(p UserPatch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	u.Subscription.Apply(p.Subscription)
	u.Progress.Apply(p.Progress)
	u.Profile.Apply(p.Profile)
}

type Permission string

const (
	PermRead          Permission = "read"
	PermWrite         Permission = "write"
	PermDelete        Permission = "delete"
	PermManageUsers   Permission = "manage_users"
	PermManageContent Permission = "manage_content"
	PermWriteOwn      Permission = "write_own"
	PermReadLimited   Permission = "read_limited"
)

// RolePermissions mapeia papel efetivo para ações permitidas. "trial" é o
// papel efetivo de um membro cuja única assinatura é o período de teste.
var RolePermissions = map[string][]Permission{
	"admin":  {PermRead, PermWrite, PermDelete, PermManageUsers, PermManageContent},
	"member": {PermRead, PermWriteOwn},
	"trial":  {PermReadLimited},
}

// EffectiveRole resolve o papel usado na consulta de permissões: membros em
// período de teste (sem assinatura ativa) caem no conjunto "trial".
func (u *User) EffectiveRole(now time.Time) string {
	if u.Role == RoleMember && u.Subscription.Status == SubscriptionTrial && !u.Subscription.IsActive(now) {
		return "trial"
	}
	return string(u.Role)
}
