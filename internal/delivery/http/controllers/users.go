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

type userAdmin interface {
	ListUsers(ctx context.Context, actor *identity.ResolvedPrincipal) ([]models.User, error)
	ChangeRole(ctx context.Context, actor *identity.ResolvedPrincipal, targetID uuid.UUID, newRole models.Role) error
	SetActive(ctx context.Context, actor *identity.ResolvedPrincipal, targetID uuid.UUID, active bool) error
}

type UserHandler struct {
	log   logger.Log
	users userAdmin
}

func NewUserHandler(log logger.Log, users userAdmin) *UserHandler {
	return &UserHandler{
		log:   log,
		users: users,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}
	list, err := h.users.ListUsers(c.Request.Context(), principal)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type changeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	principal, targetID, ok := h.principalAndTarget(c)
	if !ok {
		return
	}
	var input changeRoleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.ChangeRole(c.Request.Context(), principal, targetID, input.Role); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": input.Role})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *UserHandler) SetActive(c *gin.Context) {
	principal, targetID, ok := h.principalAndTarget(c)
	if !ok {
		return
	}
	var input setActiveRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.SetActive(c.Request.Context(), principal, targetID, *input.Active); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": *input.Active})
}

func (h *UserHandler) principalAndTarget(c *gin.Context) (*identity.ResolvedPrincipal, uuid.UUID, bool) {
	principal, exists := PrincipalFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return nil, uuid.Nil, false
	}
	return principal, id, true
}

func (h *UserHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("user admin operation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
