package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"
)

type Chapter struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Duration        uint   `json:"duration"` // minutos
	IsCompleted     bool   `json:"isCompleted"`
	IsCurrentLesson bool   `json:"isCurrentLesson"`
}

// Chapters persiste como coluna JSON no MySQL.
type Chapters []Chapter

func (c Chapters) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *Chapters) Scan(value interface{}) error {
	if value == nil {
		*c = Chapters{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return errors.New("tipo inesperado para coluna de capítulos")
}

type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.New("tipo inesperado para coluna de tags")
}

type Course struct {
	BaseModel
	Slug        string     `gorm:"size:150;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"size:50;index" json:"category"`
	Level       string     `gorm:"size:20" json:"level"`
	Instructor  string     `gorm:"size:100" json:"instructor"`
	Tags        StringList `gorm:"type:json" json:"tags"`
	IsPremium   bool       `gorm:"default:false" json:"isPremium"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	IsFeatured  bool       `gorm:"default:false" json:"isFeatured"`
	Rating      float64    `gorm:"default:0" json:"rating"`
	Students    uint       `gorm:"default:0" json:"students"`
	Price       float64    `gorm:"default:0" json:"price"`
	Duration    uint       `gorm:"default:0" json:"duration"` // minutos somados das aulas

	// Progresso agregado do catálogo original (não por usuário); o registro
	// de matrícula abaixo é o modelo corrigido que convive com ele.
	Progress         uint     `gorm:"default:0" json:"progress"` // 0-100
	CompletedLessons uint     `gorm:"default:0" json:"completedLessons"`
	Chapters         Chapters `gorm:"type:json" json:"chapters"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) Clone() *Course {
	cp := *c
	cp.Chapters = make(Chapters, len(c.Chapters))
	copy(cp.Chapters, c.Chapters)
	cp.Tags = make(StringList, len(c.Tags))
	copy(cp.Tags, c.Tags)
	return &cp
}

// RecountProgress recalcula o percentual agregado a partir dos capítulos
// concluídos, arredondado para o inteiro mais próximo.
func (c *Course) RecountProgress() {
	total := len(c.Chapters)
	if total == 0 {
		c.Progress = 0
		c.CompletedLessons = 0
		return
	}
	completed := 0
	for _, ch := range c.Chapters {
		if ch.IsCompleted {
			completed++
		}
	}
	c.CompletedLessons = uint(completed)
	c.Progress = uint(math.Round(100 * float64(completed) / float64(total)))
}

// CompleteChapter marca o capítulo como concluído, limpa sua flag de aula
// atual e avança a flag para o próximo capítulo incompleto na ordem do
// array. Retorna false se o capítulo não existe.
func (c *Course) CompleteChapter(chapterID string) bool {
	idx := -1
	for i := range c.Chapters {
		if c.Chapters[i].ID == chapterID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	c.Chapters[idx].IsCompleted = true
	for i := range c.Chapters {
		c.Chapters[i].IsCurrentLesson = false
	}
	for i := range c.Chapters {
		if !c.Chapters[i].IsCompleted {
			c.Chapters[i].IsCurrentLesson = true
			break
		}
	}
	c.RecountProgress()
	return true
}

type CoursePatch struct {
	Slug        *string     `json:"slug,omitempty"`
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Level       *string     `json:"level,omitempty"`
	Instructor  *string     `json:"instructor,omitempty"`
	Tags        *StringList `json:"tags,omitempty"`
	IsPremium   *bool       `json:"isPremium,omitempty"`
	IsPublished *bool       `json:"isPublished,omitempty"`
	IsFeatured  *bool       `json:"isFeatured,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	Students    *uint       `json:"students,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Duration    *uint       `json:"duration,omitempty"`
	Chapters    *Chapters   `json:"chapters,omitempty"`
}

func (c *Course) Apply(p CoursePatch) {
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Instructor != nil {
		c.Instructor = *p.Instructor
	}
	if p.Tags != nil {
		c.Tags = *p.Tags
	}
	if p.IsPremium != nil {
		c.IsPremium = *p.IsPremium
	}
	if p.IsPublished != nil {
		c.IsPublished = *p.IsPublished
	}
	if p.IsFeatured != nil {
		c.IsFeatured = *p.IsFeatured
	}
	if p.Rating != nil {
		c.Rating = *p.Rating
	}
	if p.Students != nil {
		c.Students = *p.Students
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	if p.Chapters != nil {
		c.Chapters = *p.Chapters
		c.RecountProgress()
	}
}

// CourseProgressPatch sobrescreve parcialmente o progresso agregado.
type CourseProgressPatch struct {
	CompletedLessons *uint `json:"completedLessons,omitempty"`
	Progress         *uint `json:"progress,omitempty"`
}

// Enrollment é o registro por (usuário, curso) que corrige a limitação do
// progresso agregado herdado do catálogo.
type Enrollment struct {
	BaseModel
	UserID           string     `gorm:"size:36;index:idx_enrollment,unique" json:"userId"`
	CourseID         string     `gorm:"size:36;index:idx_enrollment,unique" json:"courseId"`
	Progress         uint       `gorm:"default:0" json:"progress"`
	CompletedLessons uint       `gorm:"default:0" json:"completedLessons"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
