package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/service/assessment"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type assessmentEngine interface {
	Start(ctx context.Context, userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*assessment.Attempt, error)
	SelectAnswer(userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx, questionIdx, optionIdx int) (*assessment.Attempt, error)
	Submit(ctx context.Context, userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*assessment.Result, error)
	Restart(ctx context.Context, userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*assessment.Attempt, error)
	Result(userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*assessment.Result, error)
	Abandon(userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int)
}

type QuizHandler struct {
	log    logger.Log
	engine assessmentEngine
}

func NewQuizHandler(log logger.Log, engine assessmentEngine) *QuizHandler {
	return &QuizHandler{
		log:    log,
		engine: engine,
	}
}

type quizRef struct {
	userID       uuid.UUID
	enrollmentID uuid.UUID
	moduleIdx    int
	lessonIdx    int
}

func (h *QuizHandler) ref(c *gin.Context) (*quizRef, bool) {
	principal, exists := PrincipalFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return nil, false
	}
	enrollmentID, err := uuid.Parse(c.Param("enrollment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment_id"})
		return nil, false
	}
	moduleIdx, err := atoiParam(c, "module_index")
	if err != nil || moduleIdx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module_index"})
		return nil, false
	}
	lessonIdx, err := atoiParam(c, "lesson_index")
	if err != nil || lessonIdx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson_index"})
		return nil, false
	}
	return &quizRef{
		userID:       principal.User.ID,
		enrollmentID: enrollmentID,
		moduleIdx:    moduleIdx,
		lessonIdx:    lessonIdx,
	}, true
}

func (h *QuizHandler) Start(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	attempt, err := h.engine.Start(c.Request.Context(), ref.userID, ref.enrollmentID, ref.moduleIdx, ref.lessonIdx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

type selectAnswerRequest struct {
	QuestionIndex int `json:"question_index" binding:"min=0"`
	OptionIndex   int `json:"option_index" binding:"min=0"`
}

func (h *QuizHandler) SelectAnswer(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	var input selectAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attempt, err := h.engine.SelectAnswer(ref.userID, ref.enrollmentID, ref.moduleIdx, ref.lessonIdx, input.QuestionIndex, input.OptionIndex)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *QuizHandler) Submit(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	result, err := h.engine.Submit(c.Request.Context(), ref.userID, ref.enrollmentID, ref.moduleIdx, ref.lessonIdx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) Restart(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	attempt, err := h.engine.Restart(c.Request.Context(), ref.userID, ref.enrollmentID, ref.moduleIdx, ref.lessonIdx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *QuizHandler) Result(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	result, err := h.engine.Result(ref.userID, ref.enrollmentID, ref.moduleIdx, ref.lessonIdx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) Abandon(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	h.engine.Abandon(ref.userID, ref.enrollmentID, ref.moduleIdx, ref.lessonIdx)
	c.JSON(http.StatusOK, gin.H{"status": "abandoned"})
}

func (h *QuizHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrEnrollmentNotFound),
		errors.Is(err, app_errors.ErrCourseNotFound),
		errors.Is(err, app_errors.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrQuizNotStarted),
		errors.Is(err, app_errors.ErrQuizNotInProgress),
		errors.Is(err, app_errors.ErrQuizIncomplete),
		errors.Is(err, app_errors.ErrQuizNotSubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("quiz operation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
