package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/gin-gonic/gin"
)

type authService interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	LoginUser(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
}

type AuthHandler struct {
	log     logger.Log
	service authService
}

func NewAuthHandler(l logger.Log, s authService) *AuthHandler {
	return &AuthHandler{
		log:     l,
		service: s,
	}
}

type meResponse struct {
	UserID      string              `json:"user_id"`
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	Role        models.Role         `json:"role"`
	Permissions []models.Permission `json:"permissions"`
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}

	resp := meResponse{
		UserID:      principal.User.ID.String(),
		Email:       principal.User.Email,
		DisplayName: principal.User.DisplayName,
		Role:        principal.User.Role,
		Permissions: principal.Permissions,
	}
	c.JSON(http.StatusOK, resp)
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Department  string `json:"department"`
	Position    string `json:"position"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		Department:  input.Department,
		Position:    input.Position,
	}

	created, err := h.service.CreateUser(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserExists) || errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("register failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": created.ID.String()})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, err := h.service.LoginUser(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUserNotFound), errors.Is(err, app_errors.ErrIncorrectPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrIncorrectPassword.Error()})
		case errors.Is(err, app_errors.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("login failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input refreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.service.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrTokenExpired) || errors.Is(err, app_errors.ErrTokenNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("refresh failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken.Raw,
		"refresh_token": pair.RefreshToken.Raw,
	})
}
