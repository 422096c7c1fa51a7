package postgres

import (
	"context"
	"fmt"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const itemColumns = `id, code, name, category, size, color, description, rental_price, availability, photo_references, created_at`

type itemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) repository.ItemRepository {
	return &itemRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.Code, &item.Name, &item.Category, &item.Size, &item.Color,
		&item.Description, &item.RentalPrice, &item.Availability, pq.Array(&item.PhotoReferences), &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if item.PhotoReferences == nil {
		item.PhotoReferences = []string{}
	}
	return item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	logger.EnterMethod("itemRepository.Create", "code", item.Code)

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.PhotoReferences == nil {
		item.PhotoReferences = []string{}
	}

	query := `INSERT INTO items (` + itemColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("insert", query, "itemID", item.ID)
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Code, item.Name, item.Category, item.Size, item.Color, item.Description,
		item.RentalPrice, item.Availability, pq.Array(item.PhotoReferences), item.CreatedAt)
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("itemRepository.Create", err, "code", item.Code)
		return fmt.Errorf("create item: %w", err)
	}

	logger.ExitMethod("itemRepository.Create", "itemID", item.ID)
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

func (r *itemRepository) GetForUpdate(ctx context.Context, id string) (*domain.Item, error) {
	return r.get(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *itemRepository) get(ctx context.Context, query, id string) (*domain.Item, error) {
	logger.DatabaseCall("select", query, "itemID", id)
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, classify(err))
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Size != "" {
		query += fmt.Sprintf(" AND size = $%d", argIdx)
		args = append(args, filter.Size)
		argIdx++
	}
	if filter.Availability != "" {
		query += fmt.Sprintf(" AND availability = $%d", argIdx)
		args = append(args, filter.Availability)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIdx, argIdx)
		args = append(args, containsPattern(filter.Search))
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	logger.DatabaseCall("select", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", classify(err))
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", classify(err))
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", classify(err))
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	logger.EnterMethod("itemRepository.Update", "itemID", item.ID)

	query := `UPDATE items SET code = $1, name = $2, category = $3, size = $4, color = $5, description = $6,
	          rental_price = $7, availability = $8, photo_references = $9 WHERE id = $10`
	logger.DatabaseCall("update", query, "itemID", item.ID)
	res, err := r.db.ExecContext(ctx, query,
		item.Code, item.Name, item.Category, item.Size, item.Color, item.Description,
		item.RentalPrice, item.Availability, pq.Array(item.PhotoReferences), item.ID)
	if err == nil {
		err = notFoundIfNoRows(res, "item", item.ID)
	}
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("itemRepository.Update", err, "itemID", item.ID)
		return fmt.Errorf("update item: %w", err)
	}

	logger.ExitMethod("itemRepository.Update", "itemID", item.ID)
	return nil
}

func (r *itemRepository) SetAvailability(ctx context.Context, id string, availability domain.Availability) error {
	query := `UPDATE items SET availability = $1 WHERE id = $2`
	logger.DatabaseCall("update", query, "itemID", id, "availability", availability)
	res, err := r.db.ExecContext(ctx, query, availability, id)
	if err != nil {
		return fmt.Errorf("set availability: %w", classify(err))
	}
	if err := notFoundIfNoRows(res, "item", id); err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`
	logger.DatabaseCall("delete", query, "itemID", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", classify(err))
	}
	if err := notFoundIfNoRows(res, "item", id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
