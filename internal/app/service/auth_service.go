package service

import (
	"context"
	"errors"
	"time"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"github.com/casarossa/casarossa-backend/pkg/redis"
	"github.com/casarossa/casarossa-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// sessionsTable is the feed table name for sign-in/sign-out events.
// Cart stores subscribe to it so a revoked session clears its cart state.
const sessionsTable = "sessions"

type AuthService interface {
	Register(email, password, name string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(id uint) (*model.User, error)
	IsAdmin(userID uint, email string) (bool, error)
}

type authService struct {
	userRepo      repository.UserRepository
	adminRepo     repository.AdminRepository
	bus           *feed.Bus
	adminEmail    string
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	bus *feed.Bus,
	adminEmail string,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		adminRepo:     adminRepo,
		bus:           bus,
		adminEmail:    adminEmail,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(email, password, name string) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	s.bus.Publish(feed.Event{Table: sessionsTable, Kind: feed.ChangeInsert, RowID: user.ID})

	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	s.bus.Publish(feed.Event{Table: sessionsTable, Kind: feed.ChangeInsert, RowID: user.ID})

	return user, tokens, nil
}

// Logout blacklists the presented access token for the remainder of its
// lifetime and announces the sign-out on the feed bus. An already-expired
// token is treated as logged out.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			logger.Debug("Logout with expired token, nothing to revoke", nil)
			return nil
		}
		logger.Warn("Logout failed: invalid token", map[string]interface{}{
			"error": err.Error(),
		})
		return util.ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	// Revocation degrades when Redis is down; the session-delete event
	// below still clears the user's cart store either way.
	if redis.GetClient() == nil {
		logger.Warn("Redis unavailable, token not revoked on logout", map[string]interface{}{
			"user_id": claims.UserID,
		})
	} else if err := redis.RevokeToken(ctx, token, ttl); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out successfully", map[string]interface{}{
		"user_id": claims.UserID,
	})

	s.bus.Publish(feed.Event{Table: sessionsTable, Kind: feed.ChangeDelete, RowID: claims.UserID})

	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return user, nil
}

// IsAdmin resolves administrator status for a session. The configured
// administrator email short-circuits to true without touching the
// database; everyone else is checked against the membership table.
// A query failure resolves to non-admin and returns the error.
func (s *authService) IsAdmin(userID uint, email string) (bool, error) {
	if email == s.adminEmail {
		return true, nil
	}

	isMember, err := s.adminRepo.IsMember(userID)
	if err != nil {
		logger.Error("Failed to resolve admin status, treating as non-admin", err, map[string]interface{}{
			"user_id": userID,
		})
		return false, err
	}
	return isMember, nil
}
