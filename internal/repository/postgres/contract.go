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

const contractColumns = `c.id, c.item_id, c.client_id, c.item_name, c.pickup_at, c.return_due_at,
	c.rental_amount, c.deposit_amount, c.amount_paid, c.status, c.damage_notes, c.payment_method, c.notes, c.created_at`

const joinedContractQuery = `SELECT ` + contractColumns + `,
	cl.id, cl.tax_id, cl.full_name, cl.phone, cl.address, cl.created_at
	FROM rental_contracts c JOIN clients cl ON cl.id = c.client_id`

type contractRepository struct {
	db DBTX
}

func NewContractRepository(db DBTX) repository.ContractRepository {
	return &contractRepository{db: db}
}

func contractFields(c *domain.Contract) []any {
	return []any{&c.ID, &c.ItemID, &c.ClientID, &c.ItemName, &c.PickupAt, &c.ReturnDueAt,
		&c.RentalAmount, &c.DepositAmount, &c.AmountPaid, &c.Status, &c.DamageNotes, &c.PaymentMethod, &c.Notes, &c.CreatedAt}
}

func scanJoinedContract(row rowScanner) (*domain.Contract, error) {
	c := &domain.Contract{Client: &domain.Client{}}
	cl := c.Client
	dest := append(contractFields(c), &cl.ID, &cl.TaxID, &cl.FullName, &cl.Phone, &cl.Address, &cl.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	logger.EnterMethod("contractRepository.Create", "itemID", c.ItemID, "clientID", c.ClientID)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO rental_contracts (id, item_id, client_id, item_name, pickup_at, return_due_at,
	          rental_amount, deposit_amount, amount_paid, status, damage_notes, payment_method, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	logger.DatabaseCall("insert", query, "contractID", c.ID)
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ItemID, c.ClientID, c.ItemName, c.PickupAt, c.ReturnDueAt,
		c.RentalAmount, c.DepositAmount, c.AmountPaid, c.Status, c.DamageNotes, c.PaymentMethod, c.Notes, c.CreatedAt)
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("contractRepository.Create", err, "itemID", c.ItemID)
		return fmt.Errorf("create contract: %w", err)
	}

	logger.ExitMethod("contractRepository.Create", "contractID", c.ID)
	return nil
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	query := joinedContractQuery + ` WHERE c.id = $1`
	logger.DatabaseCall("select", query, "contractID", id)
	c, err := scanJoinedContract(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get contract %s: %w", id, classify(err))
	}
	return c, nil
}

func (r *contractRepository) GetForUpdate(ctx context.Context, id string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM rental_contracts c WHERE c.id = $1 FOR UPDATE`
	logger.DatabaseCall("select", query, "contractID", id)
	c := &domain.Contract{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(contractFields(c)...); err != nil {
		return nil, fmt.Errorf("lock contract %s: %w", id, classify(err))
	}
	return c, nil
}

func (r *contractRepository) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	query := joinedContractQuery + ` WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND c.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (c.item_name ILIKE $%d OR cl.full_name ILIKE $%d OR cl.tax_id ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, containsPattern(filter.Search))
		argIdx++
	}
	query += " ORDER BY c.created_at DESC"
	return r.list(ctx, query, args...)
}

func (r *contractRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Contract, error) {
	return r.list(ctx, joinedContractQuery+` WHERE c.item_id = $1 ORDER BY c.created_at DESC`, itemID)
}

func (r *contractRepository) ListByClientTaxID(ctx context.Context, taxID string) ([]domain.Contract, error) {
	return r.list(ctx, joinedContractQuery+` WHERE cl.tax_id = $1 ORDER BY c.created_at DESC`, taxID)
}

func (r *contractRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	return r.list(ctx, joinedContractQuery+` WHERE c.status = 'active' AND c.return_due_at < $1 ORDER BY c.return_due_at ASC`, now)
}

func (r *contractRepository) list(ctx context.Context, query string, args ...any) ([]domain.Contract, error) {
	logger.DatabaseCall("select", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", classify(err))
	}
	defer rows.Close()

	contracts := []domain.Contract{}
	for rows.Next() {
		c, err := scanJoinedContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", classify(err))
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contracts: %w", classify(err))
	}
	return contracts, nil
}

// Update writes the coordinator-owned mutable fields of a contract.
func (r *contractRepository) Update(ctx context.Context, c *domain.Contract) error {
	logger.EnterMethod("contractRepository.Update", "contractID", c.ID, "status", c.Status)

	query := `UPDATE rental_contracts SET status = $1, damage_notes = $2, amount_paid = $3 WHERE id = $4`
	logger.DatabaseCall("update", query, "contractID", c.ID)
	res, err := r.db.ExecContext(ctx, query, c.Status, c.DamageNotes, c.AmountPaid, c.ID)
	if err == nil {
		err = notFoundIfNoRows(res, "contract", c.ID)
	}
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("contractRepository.Update", err, "contractID", c.ID)
		return fmt.Errorf("update contract: %w", err)
	}

	logger.ExitMethod("contractRepository.Update", "contractID", c.ID)
	return nil
}

func (r *contractRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM rental_contracts WHERE id = $1`
	logger.DatabaseCall("delete", query, "contractID", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", classify(err))
	}
	if err := notFoundIfNoRows(res, "contract", id); err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	return nil
}
