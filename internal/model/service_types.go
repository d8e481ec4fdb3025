package model

// UserFilter define os critérios de listagem de usuários.
type UserFilter struct {
	Role               string
	SubscriptionStatus string
	Page               int
	Limit              int
}

// CourseFilter define os critérios de listagem do catálogo. Campos *bool em
// nil significam "não filtrar".
type CourseFilter struct {
	Category    string
	Level       string
	IsPremium   *bool
	IsFeatured  *bool
	IsPublished *bool
	Search      string
	Sort        string // title | rating | students | price | newest
	Page        int
	Limit       int
}

type CourseStats struct {
	Total         int64            `json:"total"`
	Published     int64            `json:"published"`
	Premium       int64            `json:"premium"`
	Free          int64            `json:"free"`
	Featured      int64            `json:"featured"`
	AverageRating float64          `json:"averageRating"`
	TotalStudents uint64           `json:"totalStudents"`
	ByCategory    map[string]int64 `json:"byCategory"`
}
