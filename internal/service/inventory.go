package service

import (
	"context"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/repository"
)

type inventoryService struct {
	itemRepo     repository.ItemRepository
	contractRepo repository.ContractRepository
}

func NewInventoryService(itemRepo repository.ItemRepository, contractRepo repository.ContractRepository) InventoryService {
	return &inventoryService{itemRepo: itemRepo, contractRepo: contractRepo}
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

func (s *inventoryService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	if filter.Availability != "" && !filter.Availability.Valid() {
		return nil, domain.NewValidationError("availability", "must be one of available, rented, maintenance")
	}
	return s.itemRepo.List(ctx, filter)
}

// ItemHistory lists every contract ever opened on the item, newest first.
// Contracts of deleted items are still returned.
func (s *inventoryService) ItemHistory(ctx context.Context, itemID string) ([]domain.Contract, error) {
	return s.contractRepo.ListByItem(ctx, itemID)
}

type contractService struct {
	contractRepo repository.ContractRepository
}

func NewContractService(contractRepo repository.ContractRepository) ContractService {
	return &contractService{contractRepo: contractRepo}
}

func (s *contractService) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	return s.contractRepo.GetByID(ctx, id)
}

func (s *contractService) ListContracts(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of active, finalized")
	}
	return s.contractRepo.List(ctx, filter)
}

func (s *contractService) ClientHistory(ctx context.Context, taxID string) ([]domain.Contract, error) {
	normalized := domain.NormalizeTaxID(taxID)
	if normalized == "" {
		return nil, domain.NewValidationError("tax_id", "is required")
	}
	return s.contractRepo.ListByClientTaxID(ctx, normalized)
}

func (s *contractService) ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	return s.contractRepo.ListOverdue(ctx, now)
}
