package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/app/service"
	"github.com/casarossa/casarossa-backend/internal/db"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest(t *testing.T) (*gin.Engine, *AuthMiddleware, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	authService := service.NewAuthService(
		repository.NewUserRepository(testDB),
		repository.NewAdminRepository(testDB),
		feed.NewBus(),
		"admin@example.com",
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)

	return router, NewAuthMiddleware(testJWTSecret, authService), testDB
}

func generateTestToken(t *testing.T, userID uint, email, role string) string {
	tokens, err := util.GenerateTokenPair(
		userID,
		email,
		role,
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	token := generateTestToken(t, 1, "diner@example.com", "user")

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetUserEmail(c)

		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"email":   email,
		})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "diner@example.com")
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "NotBearer token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_INVALID")
}

func TestAuthMiddleware_Authenticate_ExpiredToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	tokens, err := util.GenerateTokenPair(1, "diner@example.com", "user", testJWTSecret, -time.Minute, -time.Minute)
	require.NoError(t, err)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestAuthMiddleware_Authenticate_QueryParameterToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	token := generateTestToken(t, 1, "diner@example.com", "user")

	router.GET("/ws", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_OptionalAuthenticate_Guest(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.OptionalAuthenticate(), func(c *gin.Context) {
		_, authenticated := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")
}

func TestAuthMiddleware_OptionalAuthenticate_InvalidTokenContinuesAsGuest(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.OptionalAuthenticate(), func(c *gin.Context) {
		_, authenticated := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)

	member := &model.User{Email: "member@example.com", PasswordHash: "hash", Name: "Member", Role: model.RoleUser}
	diner := &model.User{Email: "diner@example.com", PasswordHash: "hash", Name: "Diner", Role: model.RoleUser}
	require.NoError(t, testDB.Create(member).Error)
	require.NoError(t, testDB.Create(diner).Error)
	require.NoError(t, testDB.Create(&model.AdminUser{UserID: member.ID}).Error)

	router.GET("/admin", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "welcome"})
	})

	tests := []struct {
		name       string
		userID     uint
		email      string
		wantStatus int
	}{
		{"Configured admin email", 999, "admin@example.com", http.StatusOK},
		{"Membership row", member.ID, member.Email, http.StatusOK},
		{"Regular user", diner.ID, diner.Email, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := generateTestToken(t, tt.userID, tt.email, "user")

			req := httptest.NewRequest("GET", "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireAdmin_FailsClosedOnLookupError(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)

	diner := &model.User{Email: "diner@example.com", PasswordHash: "hash", Name: "Diner", Role: model.RoleUser}
	require.NoError(t, testDB.Create(diner).Error)
	require.NoError(t, testDB.Migrator().DropTable(&model.AdminUser{}))

	router.GET("/admin", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "welcome"})
	})

	token := generateTestToken(t, diner.ID, diner.Email, "user")
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
