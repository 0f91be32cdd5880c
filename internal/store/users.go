package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// GetUserByUsername looks up an admin by exact username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := s.db.GetContext(ctx, &user, "SELECT * FROM admin_users WHERE username = $1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &user, nil
}

// GetUserByID looks up an admin by id
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	var user models.AdminUser
	err := s.db.GetContext(ctx, &user, "SELECT * FROM admin_users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// CreateUser stores an admin with an already hashed password. A taken
// username returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := s.db.GetContext(ctx, &user,
		"INSERT INTO admin_users (username, password_hash) VALUES ($1, $2) RETURNING *",
		username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", classify(err))
	}
	return &user, nil
}
