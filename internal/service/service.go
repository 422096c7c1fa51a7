package service

import (
	"context"
	"time"

	"garment-rental-backend/internal/domain"
)

// Notifier receives one change signal after each committed mutation.
type Notifier interface {
	Notify(ctx context.Context)
}

// LifecycleCoordinator is the only writer of item availability, contract
// status and amount paid. Every operation runs as one transaction.
type LifecycleCoordinator interface {
	CreateItem(ctx context.Context, cmd domain.NewItem) (*domain.Item, error)
	UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	OpenContract(ctx context.Context, cmd domain.OpenContract) (*domain.Contract, error)
	UpdateContract(ctx context.Context, id string, patch domain.ContractPatch) (*domain.Contract, error)
	DeleteContract(ctx context.Context, id string) error
}

type InventoryService interface {
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ItemHistory(ctx context.Context, itemID string) ([]domain.Contract, error)
}

type ContractService interface {
	GetContract(ctx context.Context, id string) (*domain.Contract, error)
	ListContracts(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error)
	ClientHistory(ctx context.Context, taxID string) ([]domain.Contract, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error)
}

type StatsService interface {
	Stats(ctx context.Context, now time.Time) (*domain.Stats, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	// SeedAdmin creates the admin account unless the email is already taken.
	SeedAdmin(ctx context.Context, email, name, password string) (*domain.User, bool, error)
}

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}
