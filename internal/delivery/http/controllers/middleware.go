package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/access"
	serviceauth "github.com/HeChing/Capacitapp/internal/service/auth"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const PrincipalCtx = "principal"

type tokenService interface {
	ParseToken(ctx context.Context, token string) (*jwt.Token, error)
	IsAccessToken(ctx context.Context, token *jwt.Token) bool
	AccessClaims(ctx context.Context, token string) (*serviceauth.AccessTokenClaims, error)
}

// AuthProvider authenticates a request and resolves the principal's role
// and permission set before any protected handler runs.
type AuthProvider struct {
	log      logger.Log
	tokens   tokenService
	resolver *identity.Resolver
}

func NewAuthProvider(log logger.Log, tokens tokenService, resolver *identity.Resolver) *AuthProvider {
	return &AuthProvider{
		log:      log,
		tokens:   tokens,
		resolver: resolver,
	}
}

func (p *AuthProvider) AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	var token string
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		token = parts[1]
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrNotAuthenticated.Error()})
		return
	}

	parsedToken, err := p.tokens.ParseToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
		return
	}
	if !p.tokens.IsAccessToken(c.Request.Context(), parsedToken) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not access token"})
		return
	}

	claims, err := p.tokens.AccessClaims(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	principal, err := p.resolver.Resolve(c.Request.Context(), claims.UserID, claims.Email, claims.DisplayName)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserInactive) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(PrincipalCtx, principal)
	c.Next()
}

func PrincipalFrom(c *gin.Context) (*identity.ResolvedPrincipal, bool) {
	raw, exists := c.Get(PrincipalCtx)
	if !exists {
		return nil, false
	}
	principal, ok := raw.(*identity.ResolvedPrincipal)
	return principal, ok
}

// RequireRoles renders the gate's role decision over HTTP. The role check
// runs before any permission requirement attached to the same route.
func RequireRoles(gate *access.Gate, roles ...models.Role) gin.HandlerFunc {
	return requireDecision(gate, access.Requirement{Roles: roles})
}

func RequireAnyPermission(gate *access.Gate, perms ...models.Permission) gin.HandlerFunc {
	return requireDecision(gate, access.Requirement{Permissions: perms})
}

func RequireAllPermissions(gate *access.Gate, perms ...models.Permission) gin.HandlerFunc {
	return requireDecision(gate, access.Requirement{Permissions: perms, RequireAll: true})
}

func requireDecision(gate *access.Gate, req access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := PrincipalFrom(c)
		decision := gate.Evaluate(principal, true, req)
		switch decision.Effect {
		case access.EffectAllow:
			c.Next()
		case access.EffectRedirect:
			if decision.Target == access.SignInTarget {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":    app_errors.ErrNotAuthenticated.Error(),
					"redirect": decision.Target,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    app_errors.ErrNotAuthorized.Error(),
				"redirect": decision.Target,
			})
		default:
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}

func LoggingMiddleware(logger logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery
		if rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		msg := fmt.Sprintf("%s %s", method, path)

		logger.Info(msg,
			"status", status,
			"latency", latency,
			"client_ip", clientIP,
		)

		for _, ginErr := range c.Errors {
			logger.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", method,
				"path", path,
			)
		}
	}
}
