package domain

import "time"

type Client struct {
	ID        string    `json:"id"`
	TaxID     string    `json:"tax_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientDraft describes the renter on an OpenContract command. It is only
// persisted when no client with the same tax id exists yet.
type ClientDraft struct {
	TaxID    string `json:"tax_id" validate:"required"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"max=32"`
	Address  string `json:"address" validate:"max=300"`
}
