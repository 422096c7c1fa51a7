package repository

import (
	"context"
	"time"

	"garment-rental-backend/internal/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	// GetForUpdate row-locks the item until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	SetAvailability(ctx context.Context, id string, availability domain.Availability) error
	Delete(ctx context.Context, id string) error
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error)
}

type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	// GetByID returns the contract joined with its client.
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	// GetForUpdate row-locks the contract. The client is not joined.
	GetForUpdate(ctx context.Context, id string) (*domain.Contract, error)
	List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error)
	ListByItem(ctx context.Context, itemID string) ([]domain.Contract, error)
	ListByClientTaxID(ctx context.Context, taxID string) ([]domain.Contract, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error)
	Update(ctx context.Context, contract *domain.Contract) error
	Delete(ctx context.Context, id string) error
}

type StatsRepository interface {
	// Compute evaluates every aggregate inside one read-only snapshot.
	Compute(ctx context.Context, window domain.StatsWindow) (*domain.Stats, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Repos is the set of repositories bound to a single transaction.
type Repos struct {
	Items     ItemRepository
	Clients   ClientRepository
	Contracts ContractRepository
}

// TxManager runs fn as one atomic unit. fn's error rolls the transaction back;
// a nil return commits it. Errors come back classified into domain kinds.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
