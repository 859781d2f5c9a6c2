package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `
	SELECT id, username, email, password_hash, full_name, phone, role,
	       is_verified, verification_token, created_at
	  FROM users`

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new unverified user. Username and email collisions
// surface as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, full_name, phone, role, is_verified, verification_token, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Phone,
		u.Role, u.IsVerified, u.VerificationToken, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername returns a user by username, or ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, userColumns+` WHERE username = $1`, username)
}

// GetByID returns a user by ID, or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, userColumns+` WHERE id = $1`, id)
}

// Verify flips the verification flag for the user holding the token and
// clears the token. Unknown or already-consumed tokens read as ErrNotFound.
func (r *UserRepository) Verify(ctx context.Context, token string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_verified = TRUE, verification_token = NULL
		  WHERE verification_token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns aggregate user counts for the admin dashboard.
func (r *UserRepository) Stats(ctx context.Context) (*model.UserStats, error) {
	var s model.UserStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_verified) FROM users`,
	).Scan(&s.TotalUsers, &s.VerifiedUsers)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &s, nil
}

func (r *UserRepository) getOne(ctx context.Context, sql string, args ...any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.Role, &u.IsVerified, &u.VerificationToken, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
