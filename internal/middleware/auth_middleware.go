package middleware

import (
	"net/http"
	"strings"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/service"
	"github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/pkg/redis"
	"github.com/casarossa/casarossa-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
	TokenKey     = "auth_token"
)

type AuthMiddleware struct {
	jwtSecret   string
	authService service.AuthService
}

func NewAuthMiddleware(jwtSecret string, authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		authService: authService,
	}
}

// Authenticate validates the JWT token (required). The token is read
// from the Authorization header, or from the token query parameter for
// WebSocket upgrades which cannot set headers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header format")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "Sign in required")
				c.Abort()
				return
			}
			log.Debug("Using token from query parameter", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session expired, please sign in again")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		// A signed-out token is still signature-valid; the blacklist is
		// what actually ends the session.
		if redis.GetClient() != nil {
			revoked, err := redis.IsTokenRevoked(c.Request.Context(), token)
			if err != nil {
				log.Error("Failed to check token revocation", err, map[string]interface{}{
					"user_id": claims.UserID,
				})
			}
			if revoked {
				log.Warn("Rejected revoked token", map[string]interface{}{
					"user_id": claims.UserID,
					"path":    c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Session has been signed out")
				c.Abort()
				return
			}
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, model.UserRole(claims.Role))
		c.Set(TokenKey, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates the JWT token if present. A missing or
// invalid token continues the request as a guest.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Debug("Invalid authorization header format, continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		token := parts[1]
		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Debug("Token validation failed, continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, model.UserRole(claims.Role))
		c.Set(TokenKey, token)

		c.Next()
	}
}

// RequireAdmin gates admin routes. Admin status is resolved per request
// through the auth service, never trusted from the token; a resolution
// failure denies access.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userID, ok := GetUserID(c)
		if !ok {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "User information not found")
			c.Abort()
			return
		}
		email, _ := GetUserEmail(c)

		isAdmin, err := m.authService.IsAdmin(userID, email)
		if err != nil || !isAdmin {
			log.Warn("Admin access denied", map[string]interface{}{
				"user_id": userID,
				"path":    c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "Administrator access required")
			c.Abort()
			return
		}

		log.Debug("Admin check passed", map[string]interface{}{
			"user_id": userID,
		})
		c.Next()
	}
}

// GetUserID extracts the user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmail extracts the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetToken extracts the raw bearer token from context
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(TokenKey)
	if !exists {
		return "", false
	}
	return token.(string), true
}
