package postgres

import (
	"context"
	"fmt"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO staff_users (id, email, name, password_hash, role, created_at) VALUES ($1, LOWER($2), $3, $4, $5, $6)`
	logger.DatabaseCall("insert", query, "userID", u.ID)
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt); err != nil {
		return fmt.Errorf("create user: %w", classify(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, name, password_hash, role, created_at FROM staff_users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, name, password_hash, role, created_at FROM staff_users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *userRepository) get(ctx context.Context, query, key string) (*domain.User, error) {
	logger.DatabaseCall("select", query)
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", classify(err))
	}
	return u, nil
}
