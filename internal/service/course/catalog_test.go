package course

import (
	"context"
	"testing"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRoster struct {
	counts map[uuid.UUID]int
}

func (r staticRoster) CountLive(_ context.Context, courseID uuid.UUID) (int, error) {
	return r.counts[courseID], nil
}

func testCatalog(repo *mockCourseRepo, search *mockSearch, roster staticRoster) *CatalogService {
	return NewCatalogService(logger.New("local"), repo, search, roster, mockMedia{})
}

func seedCourse(repo *mockCourseRepo, status string, lessons int) *models.Course {
	c := &models.Course{
		ID:           uuid.New(),
		Title:        "Course " + status,
		Status:       status,
		InstructorID: uuid.New(),
		Modules: []models.Module{{
			Title:   "M",
			Lessons: make([]models.Lesson, lessons),
		}},
		CoverObjectKey: "courses/cover/object",
	}
	repo.courses[c.ID] = c
	return c
}

func TestListPublishedPreviews(t *testing.T) {
	repo := newMockCourseRepo()
	published := seedCourse(repo, models.StatusPublished, 3)
	seedCourse(repo, models.StatusDraft, 2)
	catalog := testCatalog(repo, &mockSearch{}, staticRoster{counts: map[uuid.UUID]int{published.ID: 7}})

	previews, err := catalog.ListPublished(context.Background())

	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, published.ID, previews[0].ID)
	assert.Equal(t, 3, previews[0].TotalLessons)
	assert.Equal(t, 7, previews[0].EnrolledCount)
	assert.Contains(t, previews[0].CoverURL, "https://media.local/")
}

func TestSearchFiltersUnpublishedMatches(t *testing.T) {
	repo := newMockCourseRepo()
	published := seedCourse(repo, models.StatusPublished, 1)
	draft := seedCourse(repo, models.StatusDraft, 1)
	search := &mockSearch{results: []uuid.UUID{published.ID, draft.ID}}
	catalog := testCatalog(repo, search, staticRoster{})

	previews, err := catalog.Search(context.Background(), "course")

	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, published.ID, previews[0].ID)
}

func TestSearchEmptyQueryListsAll(t *testing.T) {
	repo := newMockCourseRepo()
	seedCourse(repo, models.StatusPublished, 1)
	catalog := testCatalog(repo, &mockSearch{}, staticRoster{})

	previews, err := catalog.Search(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, previews, 1)
}

func TestSearchNoMatches(t *testing.T) {
	repo := newMockCourseRepo()
	seedCourse(repo, models.StatusPublished, 1)
	catalog := testCatalog(repo, &mockSearch{results: nil}, staticRoster{})

	previews, err := catalog.Search(context.Background(), "nothing")

	require.NoError(t, err)
	assert.Empty(t, previews)
}

func TestDetailHidesUnpublishedFromOutsiders(t *testing.T) {
	repo := newMockCourseRepo()
	draft := seedCourse(repo, models.StatusDraft, 1)
	catalog := testCatalog(repo, &mockSearch{}, staticRoster{})

	_, err := catalog.Detail(context.Background(), principal(models.RoleEmployee), draft.ID)
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)

	owner := principal(models.RoleInstructor)
	owner.User.ID = draft.InstructorID
	got, err := catalog.Detail(context.Background(), owner, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	got, err = catalog.Detail(context.Background(), principal(models.RoleAdmin), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}

func TestReportsAuthorization(t *testing.T) {
	repo := newMockCourseRepo()
	published := seedCourse(repo, models.StatusPublished, 1)
	reports := NewReportsService(logger.New("local"), &stubStats{})

	_, err := reports.Overview(context.Background(), principal(models.RoleEmployee))
	assert.ErrorIs(t, err, app_errors.ErrNotAuthorized)

	_, err = reports.Overview(context.Background(), principal(models.RoleManager))
	require.NoError(t, err)

	_, err = reports.ForCourse(context.Background(), principal(models.RoleEmployee), published.ID)
	require.NoError(t, err, "employees may view their own course report")
}

type stubStats struct{}

func (stubStats) CourseStats(_ context.Context, courseID uuid.UUID) (*models.CourseStats, error) {
	return &models.CourseStats{CourseID: courseID}, nil
}

func (stubStats) AllCourseStats(_ context.Context) ([]models.CourseStats, error) {
	return []models.CourseStats{}, nil
}
