package models

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one row of a document. Items are owned by their parent
// document and replaced as a whole set on every save; ItemOrder is assigned
// sequentially at insert time.
type LineItem struct {
	ID               uuid.UUID `json:"id" db:"id"`
	CompanyID        uuid.UUID `json:"company_id" db:"company_id"`
	DocumentID       uuid.UUID `json:"document_id" db:"document_id"`
	ItemOrder        int       `json:"item_order" db:"item_order"`
	Description      string    `json:"description" db:"description"`
	Quantity         float64   `json:"quantity" db:"quantity"`
	Unit             string    `json:"unit" db:"unit"`
	UnitPrice        float64   `json:"unit_price" db:"unit_price"`
	DiscountPercent  float64   `json:"discount_percent" db:"discount_percent"`
	PriceIncludesVat bool      `json:"price_includes_vat" db:"price_includes_vat"`
	LineAmount       float64   `json:"line_amount" db:"line_amount"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
