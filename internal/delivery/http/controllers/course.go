package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type courseManagement interface {
	Create(ctx context.Context, actor *identity.ResolvedPrincipal, course models.Course) (*models.Course, error)
	Update(ctx context.Context, actor *identity.ResolvedPrincipal, course models.Course) (*models.Course, error)
	Publish(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) error
	Unpublish(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) error
	UploadCover(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	UploadLessonMedia(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID, moduleIdx, lessonIdx int, filename string, reader io.Reader, size int64, contentType string) (string, error)
	MyCourses(ctx context.Context, actor *identity.ResolvedPrincipal) ([]models.Course, error)
}

type courseCatalog interface {
	ListPublished(ctx context.Context) ([]models.CoursePreview, error)
	Search(ctx context.Context, query string) ([]models.CoursePreview, error)
	Detail(ctx context.Context, actor *identity.ResolvedPrincipal, courseID uuid.UUID) (*models.Course, error)
}

type CourseHandler struct {
	log        logger.Log
	management courseManagement
	catalog    courseCatalog
}

func NewCourseHandler(log logger.Log, management courseManagement, catalog courseCatalog) *CourseHandler {
	return &CourseHandler{
		log:        log,
		management: management,
		catalog:    catalog,
	}
}

type courseRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	MaxStudents int             `json:"max_students"`
	Modules     []models.Module `json:"modules"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.management.Create(c.Request.Context(), principal, models.Course{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		MaxStudents: input.MaxStudents,
		Modules:     input.Modules,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CourseHandler) Update(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.management.Update(c.Request.Context(), principal, models.Course{
		ID:          courseID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		MaxStudents: input.MaxStudents,
		Modules:     input.Modules,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CourseHandler) Publish(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}
	if err := h.management.Publish(c.Request.Context(), principal, courseID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusPublished})
}

func (h *CourseHandler) Unpublish(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}
	if err := h.management.Unpublish(c.Request.Context(), principal, courseID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusDraft})
}

func (h *CourseHandler) UploadCover(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	objectKey, err := h.management.UploadCover(c.Request.Context(), principal, courseID,
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"object_key": objectKey})
}

func (h *CourseHandler) UploadLessonMedia(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}
	moduleIdx, err := atoiParam(c, "module_index")
	if err != nil || moduleIdx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module_index"})
		return
	}
	lessonIdx, err := atoiParam(c, "lesson_index")
	if err != nil || lessonIdx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson_index"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	objectKey, err := h.management.UploadLessonMedia(c.Request.Context(), principal, courseID, moduleIdx, lessonIdx,
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"object_key": objectKey})
}

func (h *CourseHandler) MyCourses(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}
	courses, err := h.management.MyCourses(c.Request.Context(), principal)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) List(c *gin.Context) {
	query := c.Query("q")

	var (
		previews []models.CoursePreview
		err      error
	)
	if query != "" {
		previews, err = h.catalog.Search(c.Request.Context(), query)
	} else {
		previews, err = h.catalog.ListPublished(c.Request.Context())
	}
	if err != nil {
		h.log.ErrorErr("course list failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, previews)
}

func (h *CourseHandler) Detail(c *gin.Context) {
	principal, courseID, ok := h.principalAndCourse(c)
	if !ok {
		return
	}
	course, err := h.catalog.Detail(c.Request.Context(), principal, courseID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) principalAndCourse(c *gin.Context) (*identity.ResolvedPrincipal, uuid.UUID, bool) {
	principal, exists := PrincipalFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return nil, uuid.Nil, false
	}
	return principal, id, true
}

func (h *CourseHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotAuthorized), errors.Is(err, app_errors.ErrNotCourseInstructor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrCourseNotFound), errors.Is(err, app_errors.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("course operation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
