package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"
)

const DefaultFeaturedLimit = 6

type MemoryCourseRepository struct {
	mu          sync.RWMutex
	byID        map[string]*model.Course
	bySlug      map[string]string            // slug -> id
	enrollments map[string]*model.Enrollment // courseID+"/"+userID
}

func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{
		byID:        make(map[string]*model.Course),
		bySlug:      make(map[string]string),
		enrollments: make(map[string]*model.Enrollment),
	}
}

func (r *MemoryCourseRepository) FindByID(id string) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("erro ao buscar curso por ID: %w", util.ErrCourseNotFound)
	}
	return c.Clone(), nil
}

func (r *MemoryCourseRepository) FindBySlug(slug string) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("erro ao buscar curso por slug: %w", util.ErrCourseNotFound)
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryCourseRepository) FindAll(filter model.CourseFilter) ([]model.Course, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Course, 0, len(r.byID))
	for _, c := range r.byID {
		if !matchesFilter(c, filter) {
			continue
		}
		matched = append(matched, c)
	}

	sortCourses(matched, filter.Sort)

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

	out := make([]model.Course, 0, end-start)
	for _, c := range matched[start:end] {
		out = append(out, *c.Clone())
	}
	return out, total, nil
}

func matchesFilter(c *model.Course, f model.CourseFilter) bool {
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Level != "" && c.Level != f.Level {
		return false
	}
	if f.IsPremium != nil && c.IsPremium != *f.IsPremium {
		return false
	}
	if f.IsFeatured != nil && c.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.IsPublished != nil && c.IsPublished != *f.IsPublished {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) &&
			!tagsContain(c.Tags, term) {
			return false
		}
	}
	return true
}

func tagsContain(tags model.StringList, term string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

func sortCourses(courses []*model.Course, key string) {
	switch key {
	case "title":
		sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	case "rating":
		sort.Slice(courses, func(i, j int) bool { return courses[i].Rating > courses[j].Rating })
	case "students":
		sort.Slice(courses, func(i, j int) bool { return courses[i].Students > courses[j].Students })
	case "price":
		sort.Slice(courses, func(i, j int) bool { return courses[i].Price < courses[j].Price })
	default: // newest
		sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	}
}

func (r *MemoryCourseRepository) FindFeatured(limit int) ([]model.Course, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	featured := true
	published := true
	out, _, err := r.FindAll(model.CourseFilter{
		IsFeatured:  &featured,
		IsPublished: &published,
		Sort:        "newest",
		Page:        1,
		Limit:       limit,
	})
	return out, err
}

func (r *MemoryCourseRepository) FindByCategory(category string, limit int) ([]model.Course, error) {
	if limit <= 0 {
		limit = 50
	}
	published := true
	out, _, err := r.FindAll(model.CourseFilter{
		Category:    category,
		IsPublished: &published,
		Sort:        "newest",
		Page:        1,
		Limit:       limit,
	})
	return out, err
}

func (r *MemoryCourseRepository) Create(course *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[course.Slug]; exists {
		return fmt.Errorf("erro ao criar curso: %w", util.ErrSlugRegistered)
	}

	now := time.Now()
	if course.ID == "" {
		course.ID = model.GenerateID()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	course.RecountProgress()

	r.byID[course.ID] = course.Clone()
	r.bySlug[course.Slug] = course.ID
	return nil
}

func (r *MemoryCourseRepository) Update(id string, patch model.CoursePatch) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("erro ao atualizar curso: %w", util.ErrCourseNotFound)
	}
	if patch.Slug != nil && *patch.Slug != c.Slug {
		if _, taken := r.bySlug[*patch.Slug]; taken {
			return nil, fmt.Errorf("erro ao atualizar curso: %w", util.ErrSlugRegistered)
		}
		delete(r.bySlug, c.Slug)
		r.bySlug[*patch.Slug] = id
	}

	c.Apply(patch)
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

func (r *MemoryCourseRepository) UpdateProgress(id string, patch model.CourseProgressPatch) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("erro ao atualizar progresso do curso: %w", util.ErrCourseNotFound)
	}
	if patch.CompletedLessons != nil {
		c.CompletedLessons = *patch.CompletedLessons
	}
	if patch.Progress != nil {
		p := *patch.Progress
		if p > 100 {
			p = 100
		}
		c.Progress = p
	}
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

func (r *MemoryCourseRepository) CompleteLesson(courseID, chapterID string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[courseID]
	if !ok {
		return nil, fmt.Errorf("erro ao concluir aula: %w", util.ErrCourseNotFound)
	}
	if !c.CompleteChapter(chapterID) {
		return nil, fmt.Errorf("erro ao concluir aula: %w", util.ErrChapterNotFound)
	}
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

func (r *MemoryCourseRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("erro ao excluir curso: %w", util.ErrCourseNotFound)
	}
	delete(r.bySlug, c.Slug)
	delete(r.byID, id)
	return nil
}

func (r *MemoryCourseRepository) Stats() (*model.CourseStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &model.CourseStats{ByCategory: make(map[string]int64)}
	var ratingSum float64
	for _, c := range r.byID {
		stats.Total++
		if c.IsPublished {
			stats.Published++
		}
		if c.IsPremium {
			stats.Premium++
		} else {
			stats.Free++
		}
		if c.IsFeatured {
			stats.Featured++
		}
		stats.TotalStudents += uint64(c.Students)
		ratingSum += c.Rating
		if c.Category != "" {
			stats.ByCategory[c.Category]++
		}
	}
	if stats.Total > 0 {
		stats.AverageRating = ratingSum / float64(stats.Total)
	}
	return stats, nil
}

func (r *MemoryCourseRepository) SaveEnrollment(e *model.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := e.CourseID + "/" + e.UserID
	now := time.Now()
	if existing, ok := r.enrollments[key]; ok {
		existing.Progress = e.Progress
		existing.CompletedLessons = e.CompletedLessons
		existing.CompletedAt = e.CompletedAt
		existing.UpdatedAt = now
		return nil
	}
	if e.ID == "" {
		e.ID = model.GenerateID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	cp := *e
	r.enrollments[key] = &cp
	return nil
}

func (r *MemoryCourseRepository) FindEnrollment(courseID, userID string) (*model.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.enrollments[courseID+"/"+userID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}
