package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityRented      Availability = "rented"
	AvailabilityMaintenance Availability = "maintenance"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityRented, AvailabilityMaintenance:
		return true
	}
	return false
}

type Item struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	Description     string          `json:"description"`
	RentalPrice     decimal.Decimal `json:"rental_price"`
	Availability    Availability    `json:"availability"`
	PhotoReferences []string        `json:"photo_references"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ItemFilter narrows item listings. Empty fields do not filter.
type ItemFilter struct {
	Category     string
	Size         string
	Availability Availability
	Search       string
}

// NewItem is the command accepted by CreateItem.
type NewItem struct {
	Code            string          `json:"code" validate:"required,max=64"`
	Name            string          `json:"name" validate:"required,max=200"`
	Category        string          `json:"category" validate:"max=100"`
	Size            string          `json:"size" validate:"max=32"`
	Color           string          `json:"color" validate:"max=64"`
	Description     string          `json:"description"`
	RentalPrice     decimal.Decimal `json:"rental_price"`
	PhotoReferences []string        `json:"photo_references" validate:"dive,required"`
}

// ItemPatch holds optional item changes. A nil field is left untouched.
type ItemPatch struct {
	Code            *string          `json:"code,omitempty" validate:"omitempty,min=1,max=64"`
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category        *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Size            *string          `json:"size,omitempty" validate:"omitempty,max=32"`
	Color           *string          `json:"color,omitempty" validate:"omitempty,max=64"`
	Description     *string          `json:"description,omitempty"`
	RentalPrice     *decimal.Decimal `json:"rental_price,omitempty"`
	Availability    *Availability    `json:"availability,omitempty"`
	PhotoReferences *[]string        `json:"photo_references,omitempty"`
}

func (p ItemPatch) IsEmpty() bool {
	return p.Code == nil && p.Name == nil && p.Category == nil && p.Size == nil &&
		p.Color == nil && p.Description == nil && p.RentalPrice == nil &&
		p.Availability == nil && p.PhotoReferences == nil
}

// Apply copies every present field of the patch onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Code != nil {
		item.Code = *p.Code
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Size != nil {
		item.Size = *p.Size
	}
	if p.Color != nil {
		item.Color = *p.Color
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.RentalPrice != nil {
		item.RentalPrice = *p.RentalPrice
	}
	if p.Availability != nil {
		item.Availability = *p.Availability
	}
	if p.PhotoReferences != nil {
		item.PhotoReferences = append([]string(nil), (*p.PhotoReferences)...)
	}
}
