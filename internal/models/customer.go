package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a directory entry auto-created from document snapshots.
// Documents keep their own snapshot copy; nothing forces them to stay in
// sync with this record.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Address   *string   `json:"address" db:"address"`
	TaxID     *string   `json:"tax_id" db:"tax_id"`
	Branch    *string   `json:"branch" db:"branch"`
	Contact   *string   `json:"contact" db:"contact"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
