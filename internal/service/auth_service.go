package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest admin password accepted
const MinPasswordLength = 8

// AuthService verifies admin credentials and manages their sessions
type AuthService struct {
	users      UserRepository
	sessions   session.Store
	bcryptCost int
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, sessions session.Store, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		logger:     util.GetLogger(),
	}
}

// dummy returns a hash compared against when the username is unknown, so
// both failure paths pay for one bcrypt comparison
func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), s.bcryptCost)
	})
	return s.dummyHash
}

// Login checks credentials and opens a session. Unknown usernames and wrong
// passwords fail with the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*session.Session, *models.Identity, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		util.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, apperr.Internal(err)
	}

	hash := s.dummy()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || user == nil {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		s.logger.Info("Login failed", zap.String("username", username))
		return nil, nil, apperr.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		util.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, apperr.Internal(err)
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Admin logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return sess, &models.Identity{ID: user.ID, Username: user.Username}, nil
}

// Logout destroys the session; unknown or empty ids are ignored
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// CurrentUser resolves a session id to the admin it belongs to. Sessions
// of deleted admins are treated as absent.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*models.Identity, error) {
	if sessionID == "" {
		return nil, apperr.ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if sess == nil {
		return nil, apperr.ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, apperr.ErrUnauthenticated
	}
	return &models.Identity{ID: user.ID, Username: user.Username}, nil
}

// CreateAdmin stores a new admin with a bcrypt hash of password
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Invalid("username", "username is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Invalid("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user, err := s.users.CreateUser(ctx, username, string(hash))
	if err != nil {
		return nil, storeError(err, "username", "username")
	}
	s.logger.Info("Admin created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// EnsureAdmin creates the admin unless the username already exists. It
// reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, username, password); err != nil {
		return false, err
	}
	return true, nil
}
