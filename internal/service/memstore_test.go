package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// memStore is a transactional in-memory store. Transactions are serialized
// by one mutex and work on copies that replace the committed state only when
// fn succeeds, giving the same atomicity the postgres store provides.
type memStore struct {
	mu        sync.Mutex
	items     map[string]domain.Item
	clients   map[string]domain.Client
	contracts map[string]domain.Contract
	failures  []error
	commits   int
}

func newMemStore() *memStore {
	return &memStore{
		items:     map[string]domain.Item{},
		clients:   map[string]domain.Client{},
		contracts: map[string]domain.Contract{},
	}
}

// failNext makes the next len(errs) transactions fail with errs in order.
func (s *memStore) failNext(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, errs...)
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}

	tx := &memTx{
		items:     maps.Clone(s.items),
		clients:   maps.Clone(s.clients),
		contracts: maps.Clone(s.contracts),
	}
	repos := repository.Repos{Items: memItems{tx}, Clients: memClients{tx}, Contracts: memContracts{tx}}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.items, s.clients, s.contracts = tx.items, tx.clients, tx.contracts
	s.commits++
	return nil
}

func (s *memStore) item(id string) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

func (s *memStore) contract(id string) (domain.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	return c, ok
}

func (s *memStore) activeContractsFor(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.contracts {
		if c.ItemID == itemID && c.Status == domain.ContractStatusActive {
			n++
		}
	}
	return n
}

// Compute implements repository.StatsRepository over the committed state.
func (s *memStore) Compute(ctx context.Context, w domain.StatsWindow) (*domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.Stats{GeneratedAt: w.Now}
	for _, it := range s.items {
		stats.Items.Total++
		switch it.Availability {
		case domain.AvailabilityAvailable:
			stats.Items.Available++
		case domain.AvailabilityRented:
			stats.Items.Rented++
		case domain.AvailabilityMaintenance:
			stats.Items.Maintenance++
		}
	}
	for _, c := range s.contracts {
		if c.Status == domain.ContractStatusActive {
			stats.ActiveContracts++
			if !c.ReturnDueAt.Before(w.Now) && !c.ReturnDueAt.After(w.DueSoonUntil) {
				stats.DueSoon++
			}
			if c.ReturnDueAt.Before(w.Now) {
				stats.Overdue++
			}
		}
		if !c.CreatedAt.Before(w.DaySince) {
			stats.Revenue.Daily = stats.Revenue.Daily.Add(c.AmountPaid)
		}
		if !c.CreatedAt.Before(w.WeekSince) {
			stats.Revenue.Weekly = stats.Revenue.Weekly.Add(c.AmountPaid)
		}
		if !c.CreatedAt.Before(w.MonthSince) {
			stats.Revenue.Monthly = stats.Revenue.Monthly.Add(c.AmountPaid)
		}
	}
	return stats, nil
}

type memTx struct {
	items     map[string]domain.Item
	clients   map[string]domain.Client
	contracts map[string]domain.Contract
}

type memItems struct{ tx *memTx }

func (r memItems) Create(ctx context.Context, item *domain.Item) error {
	for _, it := range r.tx.items {
		if it.Code == item.Code {
			return fmt.Errorf("create item: %w", domain.ErrDuplicateKey)
		}
	}
	r.tx.items[item.ID] = *item
	return nil
}

func (r memItems) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	it, ok := r.tx.items[id]
	if !ok {
		return nil, fmt.Errorf("get item %s: %w", id, domain.ErrNotFound)
	}
	it.PhotoReferences = slices.Clone(it.PhotoReferences)
	return &it, nil
}

func (r memItems) GetForUpdate(ctx context.Context, id string) (*domain.Item, error) {
	return r.GetByID(ctx, id)
}

func (r memItems) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	out := []domain.Item{}
	for _, it := range r.tx.items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Size != "" && it.Size != f.Size {
			continue
		}
		if f.Availability != "" && it.Availability != f.Availability {
			continue
		}
		if f.Search != "" && !containsFold(it.Name, f.Search) && !containsFold(it.Code, f.Search) {
			continue
		}
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b domain.Item) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r memItems) Update(ctx context.Context, item *domain.Item) error {
	if _, ok := r.tx.items[item.ID]; !ok {
		return fmt.Errorf("update item: %w", domain.ErrNotFound)
	}
	for id, it := range r.tx.items {
		if id != item.ID && it.Code == item.Code {
			return fmt.Errorf("update item: %w", domain.ErrDuplicateKey)
		}
	}
	r.tx.items[item.ID] = *item
	return nil
}

func (r memItems) SetAvailability(ctx context.Context, id string, a domain.Availability) error {
	it, ok := r.tx.items[id]
	if !ok {
		return fmt.Errorf("set availability: %w", domain.ErrNotFound)
	}
	it.Availability = a
	r.tx.items[id] = it
	return nil
}

func (r memItems) Delete(ctx context.Context, id string) error {
	if _, ok := r.tx.items[id]; !ok {
		return fmt.Errorf("delete item: %w", domain.ErrNotFound)
	}
	delete(r.tx.items, id)
	return nil
}

type memClients struct{ tx *memTx }

func (r memClients) Create(ctx context.Context, c *domain.Client) error {
	for _, existing := range r.tx.clients {
		if existing.TaxID == c.TaxID {
			return fmt.Errorf("create client: %w", domain.ErrDuplicateKey)
		}
	}
	r.tx.clients[c.ID] = *c
	return nil
}

func (r memClients) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c, ok := r.tx.clients[id]
	if !ok {
		return nil, fmt.Errorf("get client: %w", domain.ErrNotFound)
	}
	return &c, nil
}

func (r memClients) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	for _, c := range r.tx.clients {
		if c.TaxID == taxID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get client: %w", domain.ErrNotFound)
}

type memContracts struct{ tx *memTx }

func (r memContracts) joined(c domain.Contract) domain.Contract {
	if cl, ok := r.tx.clients[c.ClientID]; ok {
		c.Client = &cl
	}
	return c
}

func (r memContracts) Create(ctx context.Context, c *domain.Contract) error {
	if c.Status == domain.ContractStatusActive {
		for _, existing := range r.tx.contracts {
			if existing.ItemID == c.ItemID && existing.Status == domain.ContractStatusActive {
				return fmt.Errorf("create contract: %w", domain.ErrItemUnavailable)
			}
		}
	}
	stored := *c
	stored.Client = nil
	r.tx.contracts[c.ID] = stored
	return nil
}

func (r memContracts) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	c, ok := r.tx.contracts[id]
	if !ok {
		return nil, fmt.Errorf("get contract %s: %w", id, domain.ErrNotFound)
	}
	c = r.joined(c)
	return &c, nil
}

func (r memContracts) GetForUpdate(ctx context.Context, id string) (*domain.Contract, error) {
	c, ok := r.tx.contracts[id]
	if !ok {
		return nil, fmt.Errorf("lock contract %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (r memContracts) filter(keep func(c domain.Contract) bool) []domain.Contract {
	out := []domain.Contract{}
	for _, c := range r.tx.contracts {
		c = r.joined(c)
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Contract) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (r memContracts) List(ctx context.Context, f domain.ContractFilter) ([]domain.Contract, error) {
	return r.filter(func(c domain.Contract) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.Search == "" {
			return true
		}
		return containsFold(c.ItemName, f.Search) ||
			(c.Client != nil && (containsFold(c.Client.FullName, f.Search) || containsFold(c.Client.TaxID, f.Search)))
	}), nil
}

func (r memContracts) ListByItem(ctx context.Context, itemID string) ([]domain.Contract, error) {
	return r.filter(func(c domain.Contract) bool { return c.ItemID == itemID }), nil
}

func (r memContracts) ListByClientTaxID(ctx context.Context, taxID string) ([]domain.Contract, error) {
	return r.filter(func(c domain.Contract) bool { return c.Client != nil && c.Client.TaxID == taxID }), nil
}

func (r memContracts) ListOverdue(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	return r.filter(func(c domain.Contract) bool {
		return c.Status == domain.ContractStatusActive && c.ReturnDueAt.Before(now)
	}), nil
}

func (r memContracts) Update(ctx context.Context, c *domain.Contract) error {
	existing, ok := r.tx.contracts[c.ID]
	if !ok {
		return fmt.Errorf("update contract: %w", domain.ErrNotFound)
	}
	existing.Status = c.Status
	existing.DamageNotes = c.DamageNotes
	existing.AmountPaid = c.AmountPaid
	r.tx.contracts[c.ID] = existing
	return nil
}

func (r memContracts) Delete(ctx context.Context, id string) error {
	if _, ok := r.tx.contracts[id]; !ok {
		return fmt.Errorf("delete contract: %w", domain.ErrNotFound)
	}
	delete(r.tx.contracts, id)
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// countingNotifier records how many change signals were emitted.
type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify(ctx context.Context) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
