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

type enrollmentService interface {
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	Unenroll(ctx context.Context, userID, courseID uuid.UUID) error
	Get(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	Roster(ctx context.Context, courseID uuid.UUID) ([]models.Enrollment, error)
}

type EnrollmentHandler struct {
	log     logger.Log
	service enrollmentService
}

func NewEnrollmentHandler(log logger.Log, s enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:     log,
		service: s,
	}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}

	e, err := h.service.Enroll(c.Request.Context(), principal.User.ID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrAlreadyEnrolled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrCapacityExceeded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrCourseNotPublished):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("enroll failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), principal.User.ID, courseID); err != nil {
		if errors.Is(err, app_errors.ErrEnrollmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("unenroll failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unenrolled"})
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), principal.User.ID, courseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrEnrollmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("get enrollment failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EnrollmentHandler) List(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}

	enrollments, err := h.service.List(c.Request.Context(), principal.User.ID)
	if err != nil {
		h.log.ErrorErr("list enrollments failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) Roster(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	roster, err := h.service.Roster(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("roster failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, roster)
}

func (h *EnrollmentHandler) principalAndCourse(c *gin.Context) (principal *identity.ResolvedPrincipal, courseID uuid.UUID, ok bool) {
	p, exists := PrincipalFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return nil, uuid.Nil, false
	}
	return p, id, true
}
