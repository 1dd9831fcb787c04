package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	// CreateWithCapacityCheck runs the capacity test and the insert in a
	// single transaction with the course row locked, so two concurrent
	// joins near the limit cannot both pass the check.
	CreateWithCapacityCheck(ctx context.Context, e *models.Enrollment, maxStudents int) error
	ReactivateWithCapacityCheck(ctx context.Context, enrollmentID, courseID uuid.UUID, maxStudents int) (*models.Enrollment, error)
	ByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Enrollment, error)
	CountLive(ctx context.Context, courseID uuid.UUID) (int, error)
}

type Service struct {
	log         logger.Log
	courses     courseRepo
	enrollments enrollmentRepo
}

func NewService(log logger.Log, courses courseRepo, enrollments enrollmentRepo) *Service {
	return &Service{
		log:         log,
		courses:     courses,
		enrollments: enrollments,
	}
}

// Enroll creates the enrollment for (user, course). A dropped enrollment
// is reactivated in place, preserving recorded lesson completions, so the
// pair keeps a single record for its whole history.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	course, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.StatusPublished {
		return nil, app_errors.ErrCourseNotPublished
	}

	existing, err := s.enrollments.ByUserCourse(ctx, userID, courseID)
	if err != nil && !errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status != models.EnrollmentDropped {
			return nil, app_errors.ErrAlreadyEnrolled
		}
		return s.enrollments.ReactivateWithCapacityCheck(ctx, existing.ID, courseID, course.MaxStudents)
	}

	e := &models.Enrollment{
		ID:               uuid.New(),
		UserID:           userID,
		CourseID:         courseID,
		Status:           models.EnrollmentActive,
		Progress:         0,
		CompletedLessons: []string{},
		EnrolledAt:       time.Now().UTC(),
	}
	if err := s.enrollments.CreateWithCapacityCheck(ctx, e, course.MaxStudents); err != nil {
		return nil, err
	}
	return e, nil
}

// Unenroll marks the enrollment dropped. The record is retained for
// history; roster membership derives from non-dropped enrollments, so the
// user leaves the roster with this single write.
func (s *Service) Unenroll(ctx context.Context, userID, courseID uuid.UUID) error {
	e, err := s.enrollments.ByUserCourse(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if e.Status == models.EnrollmentDropped {
		return app_errors.ErrEnrollmentNotFound
	}
	return s.enrollments.SetStatus(ctx, e.ID, models.EnrollmentDropped)
}

func (s *Service) Get(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	e, err := s.enrollments.ByUserCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if e.Status == models.EnrollmentDropped {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	return s.enrollments.ListByUser(ctx, userID)
}

// Roster returns the live enrollments of a course, derived by query
// rather than read from a stored membership array.
func (s *Service) Roster(ctx context.Context, courseID uuid.UUID) ([]models.Enrollment, error) {
	if _, err := s.courses.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.enrollments.ListByCourse(ctx, courseID)
}

func (s *Service) RosterCount(ctx context.Context, courseID uuid.UUID) (int, error) {
	return s.enrollments.CountLive(ctx, courseID)
}
