package repository

import (
	"testing"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourse(slug, title string) *model.Course {
	return &model.Course{
		Slug:        slug,
		Title:       title,
		Category:    "programacao",
		Level:       "iniciante",
		IsPublished: true,
		Chapters: model.Chapters{
			{ID: "cap-1", Title: "Introdução", Duration: 10, IsCompleted: true},
			{ID: "cap-2", Title: "Fundamentos", Duration: 20, IsCurrentLesson: true},
			{ID: "cap-3", Title: "Prática", Duration: 30},
		},
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	repo := NewMemoryCourseRepository()

	require.NoError(t, repo.Create(newCourse("go-basico", "Go Básico")))

	err := repo.Create(newCourse("go-basico", "Outro Curso"))
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrSlugRegistered)
}

func TestCreateRecountsProgress(t *testing.T) {
	repo := NewMemoryCourseRepository()

	c := newCourse("go-basico", "Go Básico")
	require.NoError(t, repo.Create(c))

	got, err := repo.FindBySlug("go-basico")
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.CompletedLessons)
	assert.Equal(t, uint(33), got.Progress)
}

func TestCompleteLessonAdvancesCurrent(t *testing.T) {
	repo := NewMemoryCourseRepository()

	c := newCourse("go-basico", "Go Básico")
	require.NoError(t, repo.Create(c))

	got, err := repo.CompleteLesson(c.ID, "cap-2")
	require.NoError(t, err)

	assert.True(t, got.Chapters[0].IsCompleted)
	assert.True(t, got.Chapters[1].IsCompleted)
	assert.False(t, got.Chapters[1].IsCurrentLesson)
	// A aula atual passa a ser a primeira não concluída.
	assert.False(t, got.Chapters[2].IsCompleted)
	assert.True(t, got.Chapters[2].IsCurrentLesson)

	assert.Equal(t, uint(2), got.CompletedLessons)
	assert.Equal(t, uint(67), got.Progress) // round(100*2/3)
}

func TestCompleteLessonUnknownChapter(t *testing.T) {
	repo := NewMemoryCourseRepository()

	c := newCourse("go-basico", "Go Básico")
	require.NoError(t, repo.Create(c))

	_, err := repo.CompleteLesson(c.ID, "cap-999")
	assert.ErrorIs(t, err, util.ErrChapterNotFound)

	_, err = repo.CompleteLesson("curso-inexistente", "cap-1")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestFindAllFilters(t *testing.T) {
	repo := NewMemoryCourseRepository()

	premium := newCourse("go-avancado", "Go Avançado")
	premium.IsPremium = true
	premium.Level = "avancado"
	premium.Tags = model.StringList{"concorrência", "performance"}
	require.NoError(t, repo.Create(premium))

	free := newCourse("go-basico", "Go Básico")
	require.NoError(t, repo.Create(free))

	draft := newCourse("go-rascunho", "Go Rascunho")
	draft.IsPublished = false
	require.NoError(t, repo.Create(draft))

	yes := true
	out, total, err := repo.FindAll(model.CourseFilter{IsPremium: &yes})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, "go-avancado", out[0].Slug)

	published := true
	out, total, err = repo.FindAll(model.CourseFilter{IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Busca é case-insensitive e alcança as tags.
	out, _, err = repo.FindAll(model.CourseFilter{Search: "CONCORRÊNCIA"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "go-avancado", out[0].Slug)

	out, _, err = repo.FindAll(model.CourseFilter{Level: "avancado"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestFindAllSortsByTitle(t *testing.T) {
	repo := NewMemoryCourseRepository()

	require.NoError(t, repo.Create(newCourse("b", "Banco de Dados")))
	require.NoError(t, repo.Create(newCourse("a", "APIs REST")))

	out, _, err := repo.FindAll(model.CourseFilter{Sort: "title"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "APIs REST", out[0].Title)
}

func TestFindFeaturedOnlyPublished(t *testing.T) {
	repo := NewMemoryCourseRepository()

	for i, slug := range []string{"f1", "f2", "f3"} {
		c := newCourse(slug, slug)
		c.IsFeatured = true
		if i == 2 {
			c.IsPublished = false
		}
		require.NoError(t, repo.Create(c))
	}
	require.NoError(t, repo.Create(newCourse("comum", "Comum")))

	out, err := repo.FindFeatured(0)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	for _, c := range out {
		assert.True(t, c.IsFeatured)
		assert.True(t, c.IsPublished)
	}
}

func TestCourseReadsReturnCopies(t *testing.T) {
	repo := NewMemoryCourseRepository()

	c := newCourse("go-basico", "Go Básico")
	require.NoError(t, repo.Create(c))

	got, err := repo.FindByID(c.ID)
	require.NoError(t, err)
	got.Title = "Mudado"
	got.Chapters[0].IsCompleted = false

	fresh, err := repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Básico", fresh.Title)
	assert.True(t, fresh.Chapters[0].IsCompleted)
}

func TestUpdateSlugKeepsIndexConsistent(t *testing.T) {
	repo := NewMemoryCourseRepository()

	c := newCourse("antigo", "Curso")
	require.NoError(t, repo.Create(c))
	require.NoError(t, repo.Create(newCourse("ocupado", "Outro")))

	taken := "ocupado"
	_, err := repo.Update(c.ID, model.CoursePatch{Slug: &taken})
	assert.ErrorIs(t, err, util.ErrSlugRegistered)

	novo := "novo"
	_, err = repo.Update(c.ID, model.CoursePatch{Slug: &novo})
	require.NoError(t, err)

	_, err = repo.FindBySlug("antigo")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	got, err := repo.FindBySlug("novo")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestStatsAggregation(t *testing.T) {
	repo := NewMemoryCourseRepository()

	a := newCourse("a", "A")
	a.IsPremium = true
	a.Rating = 4.0
	a.Students = 100
	require.NoError(t, repo.Create(a))

	b := newCourse("b", "B")
	b.Category = "design"
	b.Rating = 5.0
	b.Students = 50
	b.IsFeatured = true
	require.NoError(t, repo.Create(b))

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Published)
	assert.Equal(t, int64(1), stats.Premium)
	assert.Equal(t, int64(1), stats.Free)
	assert.Equal(t, int64(1), stats.Featured)
	assert.Equal(t, uint64(150), stats.TotalStudents)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
	assert.Equal(t, int64(1), stats.ByCategory["programacao"])
	assert.Equal(t, int64(1), stats.ByCategory["design"])
}

func TestEnrollmentSaveAndFind(t *testing.T) {
	repo := NewMemoryCourseRepository()

	e, err := repo.FindEnrollment("c1", "u1")
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, repo.SaveEnrollment(&model.Enrollment{
		CourseID: "c1",
		UserID:   "u1",
		Progress: 33,
	}))

	e, err = repo.FindEnrollment("c1", "u1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, uint(33), e.Progress)

	// Regravar a mesma matrícula só atualiza o progresso.
	require.NoError(t, repo.SaveEnrollment(&model.Enrollment{
		CourseID: "c1",
		UserID:   "u1",
		Progress: 100,
	}))
	again, err := repo.FindEnrollment("c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, e.ID, again.ID)
	assert.Equal(t, uint(100), again.Progress)
}
