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

type reportsService interface {
	Overview(ctx context.Context, actor *identity.ResolvedPrincipal) ([]models.CourseStats, error)
	ForCourse(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) (*models.CourseStats, error)
}

type ReportsHandler struct {
	log     logger.Log
	service reportsService
}

func NewReportsHandler(log logger.Log, s reportsService) *ReportsHandler {
	return &ReportsHandler{
		log:     log,
		service: s,
	}
}

func (h *ReportsHandler) Overview(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}
	stats, err := h.service.Overview(c.Request.Context(), principal)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportsHandler) ForCourse(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}
	stats, err := h.service.ForCourse(c.Request.Context(), principal, courseID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportsHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("reports operation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
