package service

import (
	"github.com/HeChing/Capacitapp/internal/service/assessment"
	"github.com/HeChing/Capacitapp/internal/service/auth"
	"github.com/HeChing/Capacitapp/internal/service/course"
	"github.com/HeChing/Capacitapp/internal/service/enrollment"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/internal/service/progress"
)

type Collection struct {
	AuthService       *auth.AuthService
	Resolver          *identity.Resolver
	EnrollmentService *enrollment.Service
	ProgressTracker   *progress.Tracker
	AssessmentEngine  *assessment.Engine
	CourseManagement  *course.ManagementService
	Catalog           *course.CatalogService
	Reports           *course.ReportsService
}
