package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type progressService interface {
	MarkLessonComplete(ctx context.Context, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*models.Enrollment, error)
	ModuleProgress(e *models.Enrollment, course *models.Course, moduleIdx int) int
}

type enrollmentReader interface {
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
}

type courseReader interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type ProgressHandler struct {
	log         logger.Log
	service     progressService
	enrollments enrollmentReader
	courses     courseReader
}

func NewProgressHandler(log logger.Log, s progressService, enrollments enrollmentReader, courses courseReader) *ProgressHandler {
	return &ProgressHandler{
		log:         log,
		service:     s,
		enrollments: enrollments,
		courses:     courses,
	}
}

type markCompleteRequest struct {
	ModuleIndex int `json:"module_index" binding:"min=0"`
	LessonIndex int `json:"lesson_index" binding:"min=0"`
}

func (h *ProgressHandler) MarkComplete(c *gin.Context) {
	principal, enrollmentID, ok := h.principalAndEnrollment(c)
	if !ok {
		return
	}

	var input markCompleteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.enrollments.EnrollmentByID(c.Request.Context(), enrollmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": app_errors.ErrEnrollmentNotFound.Error()})
		return
	}
	if e.UserID != principal.User.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": app_errors.ErrNotAuthorized.Error()})
		return
	}

	updated, err := h.service.MarkLessonComplete(c.Request.Context(), enrollmentID, input.ModuleIndex, input.LessonIndex)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrEnrollmentNotFound), errors.Is(err, app_errors.ErrCourseNotFound), errors.Is(err, app_errors.ErrLessonNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("mark lesson complete failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ProgressHandler) ModuleProgress(c *gin.Context) {
	principal, enrollmentID, ok := h.principalAndEnrollment(c)
	if !ok {
		return
	}

	moduleIdx, err := atoiParam(c, "module_index")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module_index"})
		return
	}

	e, err := h.enrollments.EnrollmentByID(c.Request.Context(), enrollmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": app_errors.ErrEnrollmentNotFound.Error()})
		return
	}
	if e.UserID != principal.User.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": app_errors.ErrNotAuthorized.Error()})
		return
	}
	course, err := h.courses.CourseByID(c.Request.Context(), e.CourseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": app_errors.ErrCourseNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"module_index": moduleIdx,
		"progress":     h.service.ModuleProgress(e, course, moduleIdx),
	})
}

func (h *ProgressHandler) principalAndEnrollment(c *gin.Context) (*identity.ResolvedPrincipal, uuid.UUID, bool) {
	principal, exists := PrincipalFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment_id"})
		return nil, uuid.Nil, false
	}
	return principal, id, true
}
