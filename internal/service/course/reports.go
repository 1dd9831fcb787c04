package course

import (
	"context"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

type reportsRepo interface {
	CourseStats(ctx context.Context, courseID uuid.UUID) (*models.CourseStats, error)
	AllCourseStats(ctx context.Context) ([]models.CourseStats, error)
}

type ReportsService struct {
	log     logger.Log
	reports reportsRepo
}

func NewReportsService(log logger.Log, reports reportsRepo) *ReportsService {
	return &ReportsService{
		log:     log,
		reports: reports,
	}
}

// Overview aggregates enrollment and completion counts per course. Stats
// are derived by query at read time, never maintained as counters.
func (s *ReportsService) Overview(ctx context.Context, actor *identity.ResolvedPrincipal) ([]models.CourseStats, error) {
	if !actor.HasAnyPermission(models.PermReportsViewAll, models.PermReportsViewTeam) {
		return nil, app_errors.ErrNotAuthorized
	}
	return s.reports.AllCourseStats(ctx)
}

func (s *ReportsService) ForCourse(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) (*models.CourseStats, error) {
	if !actor.HasAnyPermission(models.PermReportsViewAll, models.PermReportsViewTeam, models.PermReportsViewOwn) {
		return nil, app_errors.ErrNotAuthorized
	}
	return s.reports.CourseStats(ctx, courseID)
}
