package course

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

type courseRepo interface {
	CreateCourse(ctx context.Context, c *models.Course) error
	UpdateCourse(ctx context.Context, c *models.Course) error
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error)
}

type searchRepo interface {
	Index(ctx context.Context, c models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type mediaStorage interface {
	Upload(ctx context.Context, courseID uuid.UUID, kind, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type ManagementService struct {
	log     logger.Log
	courses courseRepo
	search  searchRepo
	media   mediaStorage
}

func NewManagementService(log logger.Log, courses courseRepo, search searchRepo, media mediaStorage) *ManagementService {
	return &ManagementService{
		log:     log,
		courses: courses,
		search:  search,
		media:   media,
	}
}

func (s *ManagementService) Create(ctx context.Context, actor *identity.ResolvedPrincipal, course models.Course) (*models.Course, error) {
	if !actor.HasPermission(models.PermCoursesCreate) {
		return nil, app_errors.ErrNotAuthorized
	}
	if err := validateCourse(&course); err != nil {
		return nil, err
	}

	course.ID = uuid.New()
	course.InstructorID = actor.User.ID
	course.Status = models.StatusDraft
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	if err := s.courses.CreateCourse(ctx, &course); err != nil {
		return nil, err
	}
	if err := s.search.Index(ctx, course); err != nil {
		s.log.ErrorErr("course: search indexing failed", err, "course_id", course.ID.String())
	}
	return &course, nil
}

func (s *ManagementService) Update(ctx context.Context, actor *identity.ResolvedPrincipal, course models.Course) (*models.Course, error) {
	existing, err := s.authorizeEdit(ctx, actor, course.ID)
	if err != nil {
		return nil, err
	}
	if err := validateCourse(&course); err != nil {
		return nil, err
	}

	course.InstructorID = existing.InstructorID
	course.Status = existing.Status
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = time.Now().UTC()

	if err := s.courses.UpdateCourse(ctx, &course); err != nil {
		return nil, err
	}
	if err := s.search.Index(ctx, course); err != nil {
		s.log.ErrorErr("course: search indexing failed", err, "course_id", course.ID.String())
	}
	return &course, nil
}

func (s *ManagementService) Publish(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) error {
	return s.changeStatus(ctx, actor, courseID, models.StatusPublished)
}

func (s *ManagementService) Unpublish(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) error {
	return s.changeStatus(ctx, actor, courseID, models.StatusDraft)
}

func (s *ManagementService) changeStatus(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID, status string) error {
	if !actor.HasPermission(models.PermCoursesPublish) {
		return app_errors.ErrNotAuthorized
	}
	course, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !s.ownsOrAdmin(actor, course) {
		return app_errors.ErrNotCourseInstructor
	}
	return s.courses.SetStatus(ctx, courseID, status)
}

func (s *ManagementService) UploadCover(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	course, err := s.authorizeEdit(ctx, actor, courseID)
	if err != nil {
		return "", err
	}

	objectKey, err := s.media.Upload(ctx, courseID, "cover", filename, reader, size, contentType)
	if err != nil {
		return "", err
	}
	course.CoverObjectKey = objectKey
	course.UpdatedAt = time.Now().UTC()
	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		return "", err
	}
	return objectKey, nil
}

// UploadLessonMedia stores a media object and points the lesson's content
// at its object key. Only document and video lessons carry media.
func (s *ManagementService) UploadLessonMedia(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID, moduleIdx, lessonIdx int, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	course, err := s.authorizeEdit(ctx, actor, courseID)
	if err != nil {
		return "", err
	}
	lesson, ok := course.LessonAt(moduleIdx, lessonIdx)
	if !ok {
		return "", app_errors.ErrLessonNotFound
	}
	if lesson.Type != models.LessonTypeVideo && lesson.Type != models.LessonTypeDocument {
		return "", fmt.Errorf("%w: lesson type %q does not carry media", app_errors.ErrValidation, lesson.Type)
	}

	objectKey, err := s.media.Upload(ctx, courseID, lesson.Type, filename, reader, size, contentType)
	if err != nil {
		return "", err
	}
	lesson.Content = objectKey
	course.UpdatedAt = time.Now().UTC()
	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *ManagementService) MyCourses(ctx context.Context, actor *identity.ResolvedPrincipal) ([]models.Course, error) {
	if !actor.HasPermission(models.PermCoursesCreate) {
		return nil, app_errors.ErrNotAuthorized
	}
	return s.courses.ListByInstructor(ctx, actor.User.ID)
}

func (s *ManagementService) authorizeEdit(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) (*models.Course, error) {
	if !actor.HasPermission(models.PermCoursesEdit) {
		return nil, app_errors.ErrNotAuthorized
	}
	course, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !s.ownsOrAdmin(actor, course) {
		return nil, app_errors.ErrNotCourseInstructor
	}
	return course, nil
}

func (s *ManagementService) ownsOrAdmin(actor *identity.ResolvedPrincipal, course *models.Course) bool {
	if course.InstructorID == actor.User.ID {
		return true
	}
	return actor.HasAnyRole(models.RoleAdmin, models.RoleSuperAdmin)
}

func validateCourse(c *models.Course) error {
	if c.Title == "" {
		return fmt.Errorf("%w: course title is required", app_errors.ErrValidation)
	}
	if c.MaxStudents < 0 {
		return fmt.Errorf("%w: max_students cannot be negative", app_errors.ErrValidation)
	}
	for mi, m := range c.Modules {
		if m.Title == "" {
			return fmt.Errorf("%w: module %d has no title", app_errors.ErrValidation, mi)
		}
		for li, l := range m.Lessons {
			if l.Title == "" {
				return fmt.Errorf("%w: lesson %d-%d has no title", app_errors.ErrValidation, mi, li)
			}
			if !models.ValidLessonType(l.Type) {
				return fmt.Errorf("%w: lesson %d-%d has unknown type %q", app_errors.ErrValidation, mi, li, l.Type)
			}
			if l.Type == models.LessonTypeQuiz {
				if _, err := models.ParseQuiz(l.Content); err != nil {
					return fmt.Errorf("lesson %d-%d: %w", mi, li, err)
				}
			}
		}
	}
	return nil
}
