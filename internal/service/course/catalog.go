package course

import (
	"context"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

type catalogRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListPublished(ctx context.Context) ([]models.Course, error)
	CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error)
}

type searchQuerier interface {
	Search(ctx context.Context, query string) ([]uuid.UUID, error)
}

type rosterCounter interface {
	CountLive(ctx context.Context, courseID uuid.UUID) (int, error)
}

type CatalogService struct {
	log     logger.Log
	courses catalogRepo
	search  searchQuerier
	roster  rosterCounter
	media   mediaStorage
}

func NewCatalogService(log logger.Log, courses catalogRepo, search searchQuerier, roster rosterCounter, media mediaStorage) *CatalogService {
	return &CatalogService{
		log:     log,
		courses: courses,
		search:  search,
		roster:  roster,
		media:   media,
	}
}

func (s *CatalogService) ListPublished(ctx context.Context) ([]models.CoursePreview, error) {
	courses, err := s.courses.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return s.previews(ctx, courses), nil
}

// Search resolves a free-text query against the search index, then loads
// the matching published courses from the store.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.CoursePreview, error) {
	if query == "" {
		return s.ListPublished(ctx)
	}
	ids, err := s.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.CoursePreview{}, nil
	}
	courses, err := s.courses.CoursesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	published := courses[:0]
	for _, c := range courses {
		if c.Status == models.StatusPublished {
			published = append(published, c)
		}
	}
	return s.previews(ctx, published), nil
}

// Detail returns the full course for an enrolled or managing viewer.
// Unpublished courses are visible only to their instructor and admins.
func (s *CatalogService) Detail(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) (*models.Course, error) {
	course, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.StatusPublished {
		if course.InstructorID != actor.User.ID && !actor.HasAnyRole(models.RoleAdmin, models.RoleSuperAdmin) {
			return nil, app_errors.ErrCourseNotFound
		}
	}
	return course, nil
}

func (s *CatalogService) previews(ctx context.Context, courses []models.Course) []models.CoursePreview {
	previews := make([]models.CoursePreview, 0, len(courses))
	for _, c := range courses {
		p := models.CoursePreview{
			ID:           c.ID,
			Title:        c.Title,
			Description:  c.Description,
			Category:     c.Category,
			MaxStudents:  c.MaxStudents,
			TotalLessons: c.TotalLessons(),
			InstructorID: c.InstructorID,
		}
		if count, err := s.roster.CountLive(ctx, c.ID); err == nil {
			p.EnrolledCount = count
		} else {
			s.log.WarnErr("catalog: roster count failed", err, "course_id", c.ID.String())
		}
		if c.CoverObjectKey != "" {
			if url, err := s.media.PresignedURL(ctx, c.CoverObjectKey); err == nil {
				p.CoverURL = url
			} else {
				s.log.WarnErr("catalog: presign cover failed", err, "course_id", c.ID.String())
			}
		}
		previews = append(previews, p)
	}
	return previews
}
