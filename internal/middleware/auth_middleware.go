package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/selin/labmatch/internal/app/auth"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/pkg/auth"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) principalFromHeader(c *gin.Context) (*appauth.Principal, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, auth.ErrInvalidFormat
	}

	tokenString, err := auth.ExtractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		return nil, err
	}

	return &appauth.Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  models.Role(claims.Role),
	}, nil
}

// JWTAuth validates the bearer token and stores the principal in the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.principalFromHeader(c)
		if err != nil {
			errorCode := dto.ErrorCodeUnauthorized
			message := "Authentication required"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				message = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.NewErrorDetail(errorCode, message)))
			return
		}

		c.Set("principal", *principal)
		c.Next()
	}
}

// OptionalJWTAuth stores the principal when a valid token is present but
// lets anonymous requests through. Used on public browse endpoints where
// an authenticated teacher sees more than an anonymous visitor.
func (m *AuthMiddleware) OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, err := m.principalFromHeader(c); err == nil {
			c.Set("principal", *principal)
		}
		c.Next()
	}
}

// RoleRequired ensures the authenticated principal has one of the given roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeForbidden,
				"You don't have sufficient permissions for this operation")))
	}
}

// GetPrincipal reads the authenticated principal set by JWTAuth
func GetPrincipal(c *gin.Context) (appauth.Principal, bool) {
	value, exists := c.Get("principal")
	if !exists {
		return appauth.Principal{}, false
	}
	principal, ok := value.(appauth.Principal)
	return principal, ok
}
