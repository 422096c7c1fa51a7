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

type clientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO clients (id, tax_id, full_name, phone, address, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	logger.DatabaseCall("insert", query, "clientID", c.ID)
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.TaxID, c.FullName, c.Phone, c.Address, c.CreatedAt); err != nil {
		return fmt.Errorf("create client: %w", classify(err))
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return r.get(ctx, `SELECT id, tax_id, full_name, phone, address, created_at FROM clients WHERE id = $1`, id)
}

func (r *clientRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	return r.get(ctx, `SELECT id, tax_id, full_name, phone, address, created_at FROM clients WHERE tax_id = $1`, taxID)
}

func (r *clientRepository) get(ctx context.Context, query, key string) (*domain.Client, error) {
	logger.DatabaseCall("select", query, "key", key)
	c := &domain.Client{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&c.ID, &c.TaxID, &c.FullName, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", classify(err))
	}
	return c, nil
}
