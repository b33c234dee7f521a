package controller

import (
	"errors"
	"net/http"

	"github.com/casarossa/casarossa-backend/internal/app/service"
	apperrors "github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/casarossa/casarossa-backend/internal/store"
	"github.com/casarossa/casarossa-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
	stores      *store.Manager
}

func NewAuthController(authService service.AuthService, stores *store.Manager) *AuthController {
	return &AuthController{
		authService: authService,
		stores:      stores,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// userPayload shapes the user object returned by auth endpoints. The
// admin flag is resolved fresh on every call, never read from a token.
func (ctrl *AuthController) userPayload(userID uint, email, name string, role interface{}) gin.H {
	isAdmin, _ := ctrl.authService.IsAdmin(userID, email)
	return gin.H{
		"id":       userID,
		"email":    email,
		"name":     name,
		"role":     role,
		"is_admin": isAdmin,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid registration details")
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			log.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	ctrl.stores.Acquire(store.Session{UserID: user.ID, Email: user.Email})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    ctrl.userPayload(user.ID, user.Email, user.Name, user.Role),
		"tokens":  tokens,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login details")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Unauthorized(c, "Incorrect email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	ctrl.stores.Acquire(store.Session{UserID: user.ID, Email: user.Email})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    ctrl.userPayload(user.ID, user.Email, user.Name, user.Role),
		"tokens":  tokens,
	})
}

// Logout revokes the current token and releases the session's cart store
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, exists := middleware.GetToken(c)
	if !exists {
		apperrors.Unauthorized(c, "Sign in required")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, util.ErrInvalidToken) {
			apperrors.Unauthorized(c, "Invalid authentication token")
			return
		}
		log.Error("Logout failed", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "logout")
		return
	}

	if userID, ok := middleware.GetUserID(c); ok {
		ctrl.stores.Release(userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetMe returns current user information
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Sign in required")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			log.Warn("User not found", map[string]interface{}{
				"user_id": userID,
			})
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": ctrl.userPayload(user.ID, user.Email, user.Name, user.Role),
	})
}
