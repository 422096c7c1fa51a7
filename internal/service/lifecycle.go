package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/repository"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultMaxRetries = 3

type coordinator struct {
	tx         repository.TxManager
	notifier   Notifier
	validate   *validator.Validate
	now        func() time.Time
	maxRetries uint
	newBackOff func() backoff.BackOff
	log        *slog.Logger
}

type CoordinatorOption func(*coordinator)

// WithClock overrides the time source used for createdAt stamps.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *coordinator) { c.now = now }
}

// WithRetryPolicy sets how many times a conflicting transaction is re-run and
// the backoff between attempts.
func WithRetryPolicy(maxRetries uint, newBackOff func() backoff.BackOff) CoordinatorOption {
	return func(c *coordinator) {
		c.maxRetries = maxRetries
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

func NewLifecycleCoordinator(tx repository.TxManager, notifier Notifier, opts ...CoordinatorOption) LifecycleCoordinator {
	c := &coordinator{
		tx:         tx,
		notifier:   notifier,
		validate:   NewValidator(),
		now:        func() time.Time { return time.Now().UTC() },
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 20 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			return b
		},
		log: logger.WithService("LifecycleCoordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// atomically runs fn in a transaction, re-running it while it fails with a
// retryable conflict. The change signal is emitted only after a commit.
func (c *coordinator) atomically(ctx context.Context, op string, fn func(ctx context.Context, repos repository.Repos) error) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := c.tx.WithinTx(ctx, fn)
		switch {
		case err == nil:
			return struct{}{}, nil
		case domain.IsRetryable(err):
			c.log.Warn("transaction conflict", "op", op, "attempt", attempt, "error", err)
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(c.maxRetries+1))
	if err != nil {
		return err
	}

	if c.notifier != nil {
		c.notifier.Notify(ctx)
	}
	return nil
}

func exit(method string, err error, args ...any) {
	switch domain.KindOf(err) {
	case "":
		logger.ExitMethod(method, args...)
	case domain.KindInternal, domain.KindUnavailable, domain.KindConflict:
		logger.ExitMethodWithError(method, err, args...)
	default:
		logger.ExitMethodWithOutcome(method, err, args...)
	}
}

func (c *coordinator) CreateItem(ctx context.Context, cmd domain.NewItem) (item *domain.Item, err error) {
	logger.EnterMethod("coordinator.CreateItem", "code", cmd.Code)
	defer func() { exit("coordinator.CreateItem", err, "code", cmd.Code) }()

	if err := validateStruct(c.validate, cmd); err != nil {
		return nil, err
	}
	verr := &domain.ValidationError{}
	checkNonNegative(verr, "rental_price", cmd.RentalPrice)
	if err := orNil(verr); err != nil {
		return nil, err
	}

	photos := append([]string{}, cmd.PhotoReferences...)
	newItem := func() *domain.Item {
		return &domain.Item{
			ID:              uuid.NewString(),
			Code:            cmd.Code,
			Name:            cmd.Name,
			Category:        cmd.Category,
			Size:            cmd.Size,
			Color:           cmd.Color,
			Description:     cmd.Description,
			RentalPrice:     cmd.RentalPrice,
			Availability:    domain.AvailabilityAvailable,
			PhotoReferences: photos,
			CreatedAt:       c.now(),
		}
	}

	err = c.atomically(ctx, "CreateItem", func(ctx context.Context, repos repository.Repos) error {
		item = newItem()
		return repos.Items.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (c *coordinator) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (item *domain.Item, err error) {
	logger.EnterMethod("coordinator.UpdateItem", "itemID", id)
	defer func() { exit("coordinator.UpdateItem", err, "itemID", id) }()

	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "at least one field is required")
	}
	if err := validateStruct(c.validate, patch); err != nil {
		return nil, err
	}
	verr := &domain.ValidationError{}
	if patch.RentalPrice != nil {
		checkNonNegative(verr, "rental_price", *patch.RentalPrice)
	}
	if patch.Availability != nil && !patch.Availability.Valid() {
		verr.Add("availability", "must be one of available, rented, maintenance")
	}
	if patch.PhotoReferences != nil {
		for _, ref := range *patch.PhotoReferences {
			if ref == "" {
				verr.Add("photo_references", "must not contain empty references")
				break
			}
		}
	}
	if err := orNil(verr); err != nil {
		return nil, err
	}

	err = c.atomically(ctx, "UpdateItem", func(ctx context.Context, repos repository.Repos) error {
		current, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if patch.Availability != nil && *patch.Availability != current.Availability {
			if *patch.Availability == domain.AvailabilityRented {
				return fmt.Errorf("%w: items become rented only through a contract", domain.ErrInvalidTransition)
			}
			if current.Availability == domain.AvailabilityRented {
				return fmt.Errorf("%w: item %s has an active contract", domain.ErrInvalidTransition, id)
			}
		}
		patch.Apply(current)
		if err := repos.Items.Update(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (c *coordinator) DeleteItem(ctx context.Context, id string) (err error) {
	logger.EnterMethod("coordinator.DeleteItem", "itemID", id)
	defer func() { exit("coordinator.DeleteItem", err, "itemID", id) }()

	return c.atomically(ctx, "DeleteItem", func(ctx context.Context, repos repository.Repos) error {
		return repos.Items.Delete(ctx, id)
	})
}

func (c *coordinator) validateOpenContract(cmd domain.OpenContract) (string, error) {
	if err := validateStruct(c.validate, cmd); err != nil {
		return "", err
	}
	verr := &domain.ValidationError{}
	checkNonNegative(verr, "rental_amount", cmd.RentalAmount)
	checkNonNegative(verr, "deposit_amount", cmd.DepositAmount)
	if cmd.DepositAmount.GreaterThan(cmd.RentalAmount) {
		verr.Add("deposit_amount", "must not exceed rental_amount")
	}
	if err := orNil(verr); err != nil {
		return "", err
	}
	return domain.ValidateTaxID(cmd.Client.TaxID)
}

func (c *coordinator) OpenContract(ctx context.Context, cmd domain.OpenContract) (contract *domain.Contract, err error) {
	logger.EnterMethod("coordinator.OpenContract", "itemID", cmd.ItemID)
	defer func() { exit("coordinator.OpenContract", err, "itemID", cmd.ItemID) }()

	taxID, err := c.validateOpenContract(cmd)
	if err != nil {
		return nil, err
	}

	err = c.atomically(ctx, "OpenContract", func(ctx context.Context, repos repository.Repos) error {
		item, err := repos.Items.GetForUpdate(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		if item.Availability != domain.AvailabilityAvailable {
			return fmt.Errorf("%w: item %s is %s", domain.ErrItemUnavailable, item.ID, item.Availability)
		}

		client, err := resolveClient(ctx, repos.Clients, taxID, cmd.Client, c.now())
		if err != nil {
			return err
		}

		created := &domain.Contract{
			ID:            uuid.NewString(),
			ItemID:        item.ID,
			ClientID:      client.ID,
			ItemName:      item.Name,
			PickupAt:      cmd.PickupAt,
			ReturnDueAt:   cmd.ReturnDueAt,
			RentalAmount:  cmd.RentalAmount,
			DepositAmount: cmd.DepositAmount,
			AmountPaid:    cmd.DepositAmount,
			Status:        domain.ContractStatusActive,
			PaymentMethod: cmd.PaymentMethod,
			Notes:         cmd.Notes,
			CreatedAt:     c.now(),
		}
		if err := repos.Contracts.Create(ctx, created); err != nil {
			return err
		}
		if err := repos.Items.SetAvailability(ctx, item.ID, domain.AvailabilityRented); err != nil {
			return err
		}
		created.Client = client
		contract = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// resolveClient returns the client registered under taxID, creating it from
// the draft on first use.
func resolveClient(ctx context.Context, clients repository.ClientRepository, taxID string, draft domain.ClientDraft, now time.Time) (*domain.Client, error) {
	client, err := clients.GetByTaxID(ctx, taxID)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	client = &domain.Client{
		ID:        uuid.NewString(),
		TaxID:     taxID,
		FullName:  draft.FullName,
		Phone:     draft.Phone,
		Address:   draft.Address,
		CreatedAt: now,
	}
	if err := clients.Create(ctx, client); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			// Another transaction registered the same tax id first; a retry will find it.
			return nil, fmt.Errorf("%w: client %s created concurrently", domain.ErrConflict, taxID)
		}
		return nil, err
	}
	return client, nil
}

func (c *coordinator) validateContractPatch(patch domain.ContractPatch) error {
	if patch.IsEmpty() {
		return domain.NewValidationError("patch", "at least one field is required")
	}
	verr := &domain.ValidationError{}
	if patch.Status != nil && !patch.Status.Valid() {
		verr.Add("status", "must be one of active, finalized")
	}
	if patch.AmountPaid != nil {
		checkNonNegative(verr, "amount_paid", *patch.AmountPaid)
	}
	return orNil(verr)
}

func (c *coordinator) UpdateContract(ctx context.Context, id string, patch domain.ContractPatch) (contract *domain.Contract, err error) {
	logger.EnterMethod("coordinator.UpdateContract", "contractID", id)
	defer func() { exit("coordinator.UpdateContract", err, "contractID", id) }()

	if err := c.validateContractPatch(patch); err != nil {
		return nil, err
	}

	err = c.atomically(ctx, "UpdateContract", func(ctx context.Context, repos repository.Repos) error {
		current, err := repos.Contracts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous := current.Status

		if previous == domain.ContractStatusFinalized {
			if patch.Status != nil {
				return fmt.Errorf("%w: contract %s is already finalized", domain.ErrInvalidTransition, id)
			}
			if patch.AmountPaid != nil {
				return fmt.Errorf("%w: contract %s is settled", domain.ErrInvalidTransition, id)
			}
		}

		if patch.DamageNotes != nil {
			current.DamageNotes = *patch.DamageNotes
		}

		if patch.Status != nil && *patch.Status == domain.ContractStatusFinalized {
			current.Status = domain.ContractStatusFinalized
			current.AmountPaid = current.RentalAmount
		} else if patch.AmountPaid != nil {
			paid := *patch.AmountPaid
			if paid.LessThan(current.AmountPaid) {
				return domain.NewValidationError("amount_paid", "must not decrease while the contract is active")
			}
			if paid.GreaterThan(current.RentalAmount) {
				return domain.NewValidationError("amount_paid", "must not exceed rental_amount")
			}
			current.AmountPaid = paid
		}

		if err := repos.Contracts.Update(ctx, current); err != nil {
			return err
		}

		if previous == domain.ContractStatusActive && current.Status == domain.ContractStatusFinalized {
			if err := releaseItem(ctx, repos.Items, current.ItemID); err != nil {
				return err
			}
		}

		refreshed, err := repos.Contracts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		contract = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// releaseItem makes the item available again. An item deleted while rented
// has nothing to release.
func releaseItem(ctx context.Context, items repository.ItemRepository, itemID string) error {
	err := items.SetAvailability(ctx, itemID, domain.AvailabilityAvailable)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (c *coordinator) DeleteContract(ctx context.Context, id string) (err error) {
	logger.EnterMethod("coordinator.DeleteContract", "contractID", id)
	defer func() { exit("coordinator.DeleteContract", err, "contractID", id) }()

	return c.atomically(ctx, "DeleteContract", func(ctx context.Context, repos repository.Repos) error {
		current, err := repos.Contracts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.ContractStatusActive {
			if err := releaseItem(ctx, repos.Items, current.ItemID); err != nil {
				return err
			}
		}
		return repos.Contracts.Delete(ctx, id)
	})
}
