package http

import (
	"context"
	"io"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockCoordinator
type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) CreateItem(ctx context.Context, cmd domain.NewItem) (*domain.Item, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockCoordinator) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockCoordinator) DeleteItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockCoordinator) OpenContract(ctx context.Context, cmd domain.OpenContract) (*domain.Contract, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockCoordinator) UpdateContract(ctx context.Context, id string, patch domain.ContractPatch) (*domain.Contract, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockCoordinator) DeleteContract(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockInventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockInventoryService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockInventoryService) ItemHistory(ctx context.Context, itemID string) ([]domain.Contract, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contract), args.Error(1)
}

// MockContractService
type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockContractService) ListContracts(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractService) ClientHistory(ctx context.Context, taxID string) ([]domain.Contract, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractService) ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contract), args.Error(1)
}

// MockStatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}
func (m *MockAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) SeedAdmin(ctx context.Context, email, name, password string) (*domain.User, bool, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Bool(1), args.Error(2)
}

// MockMediaStore
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Save(ctx context.Context, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, string(data))
	return args.String(0), args.Error(1)
}
func (m *MockMediaStore) Delete(ctx context.Context, reference string) error {
	return m.Called(ctx, reference).Error(0)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }
