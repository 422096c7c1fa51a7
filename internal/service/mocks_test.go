package service

import (
	"context"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) GetForUpdate(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) SetAvailability(ctx context.Context, id string, availability domain.Availability) error {
	args := m.Called(ctx, id, availability)
	return args.Error(0)
}
func (m *MockItemRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockClientRepo
type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) Create(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}
func (m *MockClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientRepo) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

// MockContractRepo
type MockContractRepo struct {
	mock.Mock
}

func (m *MockContractRepo) Create(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}
func (m *MockContractRepo) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockContractRepo) GetForUpdate(ctx context.Context, id string) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockContractRepo) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) ListByItem(ctx context.Context, itemID string) ([]domain.Contract, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) ListByClientTaxID(ctx context.Context, taxID string) ([]domain.Contract, error) {
	args := m.Called(ctx, taxID)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) Update(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}
func (m *MockContractRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStatsRepo
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) Compute(ctx context.Context, window domain.StatsWindow) (*domain.Stats, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTxManager hands the mock repositories to fn. A non-nil Error(0) aborts
// before fn runs, which is how conflicts are injected.
type MockTxManager struct {
	mock.Mock
	Repos repository.Repos
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Repos)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context) {
	m.Called(ctx)
}
