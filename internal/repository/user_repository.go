package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"petmatch/internal/models"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user and fills in the generated id and starting points.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, email) VALUES ($1, $2) RETURNING user_id, points`

	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email).Scan(&user.UserID, &user.Points)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("user with email %q: %w", user.Email, ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT user_id, username, email, notification_token, points FROM users WHERE user_id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// NotificationToken returns the user's push token, or "" when none is stored.
func (r *userRepository) NotificationToken(ctx context.Context, userID int64) (string, error) {
	var token sql.NullString

	err := r.db.GetContext(ctx, &token, `SELECT notification_token FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get notification token: %w", err)
	}

	return token.String, nil
}

func (r *userRepository) UpdateNotificationToken(ctx context.Context, userID int64, token string) error {
	query := `UPDATE users SET notification_token = $1 WHERE user_id = $2`

	result, err := r.db.ExecContext(ctx, query, sql.NullString{String: token, Valid: token != ""}, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	return nil
}
