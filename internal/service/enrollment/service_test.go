package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCourseRepo struct {
	courses map[uuid.UUID]*models.Course
}

func (m *mockCourseRepo) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	copied := *c
	return &copied, nil
}

type mockEnrollmentRepo struct {
	byID map[uuid.UUID]*models.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{byID: make(map[uuid.UUID]*models.Enrollment)}
}

func (m *mockEnrollmentRepo) liveCount(courseID uuid.UUID) int {
	n := 0
	for _, e := range m.byID {
		if e.CourseID == courseID && e.Status != models.EnrollmentDropped {
			n++
		}
	}
	return n
}

func (m *mockEnrollmentRepo) CreateWithCapacityCheck(_ context.Context, e *models.Enrollment, maxStudents int) error {
	for _, existing := range m.byID {
		if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
			return app_errors.ErrAlreadyEnrolled
		}
	}
	if maxStudents > 0 && m.liveCount(e.CourseID) >= maxStudents {
		return app_errors.ErrCapacityExceeded
	}
	copied := *e
	m.byID[e.ID] = &copied
	return nil
}

func (m *mockEnrollmentRepo) ReactivateWithCapacityCheck(_ context.Context, enrollmentID, courseID uuid.UUID, maxStudents int) (*models.Enrollment, error) {
	if maxStudents > 0 && m.liveCount(courseID) >= maxStudents {
		return nil, app_errors.ErrCapacityExceeded
	}
	e, ok := m.byID[enrollmentID]
	if !ok {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	e.Status = models.EnrollmentActive
	copied := *e
	return &copied, nil
}

func (m *mockEnrollmentRepo) ByUserCourse(_ context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	for _, e := range m.byID {
		if e.UserID == userID && e.CourseID == courseID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, app_errors.ErrEnrollmentNotFound
}

func (m *mockEnrollmentRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	e, ok := m.byID[id]
	if !ok {
		return app_errors.ErrEnrollmentNotFound
	}
	e.Status = status
	return nil
}

func (m *mockEnrollmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.byID {
		if e.UserID == userID && e.Status != models.EnrollmentDropped {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID uuid.UUID) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.byID {
		if e.CourseID == courseID && e.Status != models.EnrollmentDropped {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) CountLive(_ context.Context, courseID uuid.UUID) (int, error) {
	return m.liveCount(courseID), nil
}

func publishedCourse(maxStudents int) *models.Course {
	return &models.Course{
		ID:          uuid.New(),
		Title:       "Onboarding",
		Status:      models.StatusPublished,
		MaxStudents: maxStudents,
	}
}

func testService(courses map[uuid.UUID]*models.Course, enrollments *mockEnrollmentRepo) *Service {
	return NewService(logger.New("local"), &mockCourseRepo{courses: courses}, enrollments)
}

func TestEnrollCreatesActiveEnrollment(t *testing.T) {
	course := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)
	userID := uuid.New()

	e, err := s.Enroll(context.Background(), userID, course.ID)

	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, e.Status)
	assert.Equal(t, 0, e.Progress)
	assert.Empty(t, e.CompletedLessons)
	assert.NotNil(t, repo.byID[e.ID])
}

func TestEnrollRejectsUnpublishedCourse(t *testing.T) {
	course := publishedCourse(0)
	course.Status = models.StatusDraft
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, newMockEnrollmentRepo())

	_, err := s.Enroll(context.Background(), uuid.New(), course.ID)

	assert.ErrorIs(t, err, app_errors.ErrCourseNotPublished)
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	course := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)
	userID := uuid.New()

	_, err := s.Enroll(context.Background(), userID, course.ID)
	require.NoError(t, err)

	_, err = s.Enroll(context.Background(), userID, course.ID)
	assert.ErrorIs(t, err, app_errors.ErrAlreadyEnrolled)
	assert.Len(t, repo.byID, 1)
}

func TestEnrollRejectsWhenCourseFull(t *testing.T) {
	course := publishedCourse(1)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)

	_, err := s.Enroll(context.Background(), uuid.New(), course.ID)
	require.NoError(t, err)

	_, err = s.Enroll(context.Background(), uuid.New(), course.ID)
	assert.ErrorIs(t, err, app_errors.ErrCapacityExceeded)
}

func TestEnrollUnlimitedWhenNoCap(t *testing.T) {
	course := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)

	for i := 0; i < 25; i++ {
		_, err := s.Enroll(context.Background(), uuid.New(), course.ID)
		require.NoError(t, err)
	}
}

func TestUnenrollRetainsRecordAsDropped(t *testing.T) {
	course := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)
	userID := uuid.New()

	e, err := s.Enroll(context.Background(), userID, course.ID)
	require.NoError(t, err)

	require.NoError(t, s.Unenroll(context.Background(), userID, course.ID))

	stored, ok := repo.byID[e.ID]
	require.True(t, ok, "the enrollment record must survive unenrolling")
	assert.Equal(t, models.EnrollmentDropped, stored.Status)

	_, err = s.Get(context.Background(), userID, course.ID)
	assert.ErrorIs(t, err, app_errors.ErrEnrollmentNotFound)

	roster, err := s.Roster(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestUnenrollTwiceFails(t *testing.T) {
	course := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)
	userID := uuid.New()

	_, err := s.Enroll(context.Background(), userID, course.ID)
	require.NoError(t, err)
	require.NoError(t, s.Unenroll(context.Background(), userID, course.ID))

	assert.ErrorIs(t, s.Unenroll(context.Background(), userID, course.ID), app_errors.ErrEnrollmentNotFound)
}

func TestReenrollReactivatesPreservingProgress(t *testing.T) {
	course := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)
	userID := uuid.New()

	first, err := s.Enroll(context.Background(), userID, course.ID)
	require.NoError(t, err)

	repo.byID[first.ID].CompletedLessons = []string{"0-0", "0-1"}
	repo.byID[first.ID].Progress = 50
	require.NoError(t, s.Unenroll(context.Background(), userID, course.ID))

	second, err := s.Enroll(context.Background(), userID, course.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-enrolling must reuse the historical record")
	assert.Equal(t, models.EnrollmentActive, second.Status)
	assert.Equal(t, []string{"0-0", "0-1"}, second.CompletedLessons)
}

func TestReenrollCountsAgainstCapacity(t *testing.T) {
	course := publishedCourse(1)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, repo)
	first := uuid.New()

	_, err := s.Enroll(context.Background(), first, course.ID)
	require.NoError(t, err)
	require.NoError(t, s.Unenroll(context.Background(), first, course.ID))

	// The freed seat goes to someone else.
	_, err = s.Enroll(context.Background(), uuid.New(), course.ID)
	require.NoError(t, err)

	_, err = s.Enroll(context.Background(), first, course.ID)
	assert.ErrorIs(t, err, app_errors.ErrCapacityExceeded)
}

func TestListExcludesDropped(t *testing.T) {
	courseA := publishedCourse(0)
	courseB := publishedCourse(0)
	repo := newMockEnrollmentRepo()
	s := testService(map[uuid.UUID]*models.Course{courseA.ID: courseA, courseB.ID: courseB}, repo)
	userID := uuid.New()

	_, err := s.Enroll(context.Background(), userID, courseA.ID)
	require.NoError(t, err)
	_, err = s.Enroll(context.Background(), userID, courseB.ID)
	require.NoError(t, err)
	require.NoError(t, s.Unenroll(context.Background(), userID, courseA.ID))

	list, err := s.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, courseB.ID, list[0].CourseID)
}

func TestRosterUnknownCourse(t *testing.T) {
	s := testService(map[uuid.UUID]*models.Course{}, newMockEnrollmentRepo())

	_, err := s.Roster(context.Background(), uuid.New())

	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func TestEnrollTimestamps(t *testing.T) {
	course := publishedCourse(0)
	s := testService(map[uuid.UUID]*models.Course{course.ID: course}, newMockEnrollmentRepo())

	before := time.Now().UTC().Add(-time.Second)
	e, err := s.Enroll(context.Background(), uuid.New(), course.ID)
	require.NoError(t, err)

	assert.True(t, e.EnrolledAt.After(before))
	assert.Nil(t, e.CompletedAt)
}
