package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusFinalized ContractStatus = "finalized"
)

func (s ContractStatus) Valid() bool {
	return s == ContractStatusActive || s == ContractStatusFinalized
}

type Contract struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	ClientID string `json:"client_id"`
	Client   *Client `json:"client,omitempty"` // Populated on reads
	// Captured from the item when the contract is opened. Never re-derived.
	ItemName      string          `json:"item_name"`
	PickupAt      time.Time       `json:"pickup_at"`
	ReturnDueAt   time.Time       `json:"return_due_at"`
	RentalAmount  decimal.Decimal `json:"rental_amount"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Status        ContractStatus  `json:"status"`
	DamageNotes   string          `json:"damage_notes"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Balance is what the client still owes on the contract.
func (c *Contract) Balance() decimal.Decimal {
	return c.RentalAmount.Sub(c.AmountPaid)
}

// ContractFilter narrows contract listings. Empty fields do not filter.
type ContractFilter struct {
	Status ContractStatus
	Search string
}

// OpenContract is the command accepted by the coordinator to rent an item.
type OpenContract struct {
	ItemID        string          `json:"item_id" validate:"required,uuid"`
	Client        ClientDraft     `json:"client"`
	PickupAt      time.Time       `json:"pickup_at" validate:"required"`
	ReturnDueAt   time.Time       `json:"return_due_at" validate:"required,gtfield=PickupAt"`
	RentalAmount  decimal.Decimal `json:"rental_amount"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=50"`
	Notes         string          `json:"notes"`
}

// ContractPatch holds optional contract changes. A nil field is left untouched.
type ContractPatch struct {
	Status      *ContractStatus  `json:"status,omitempty"`
	DamageNotes *string          `json:"damage_notes,omitempty"`
	AmountPaid  *decimal.Decimal `json:"amount_paid,omitempty"`
}

func (p ContractPatch) IsEmpty() bool {
	return p.Status == nil && p.DamageNotes == nil && p.AmountPaid == nil
}
