package models

import (
	"time"

	"github.com/google/uuid"
)

// Company holds the per-company billing settings: document number prefixes,
// the default VAT rate applied to new documents, and object keys of branding
// assets consumed by the external PDF renderer.
type Company struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Address         *string   `json:"address" db:"address"`
	TaxID           *string   `json:"tax_id" db:"tax_id"`
	Branch          *string   `json:"branch" db:"branch"`
	Phone           *string   `json:"phone" db:"phone"`
	QuotationPrefix string    `json:"quotation_prefix" db:"quotation_prefix"`
	InvoicePrefix   string    `json:"invoice_prefix" db:"invoice_prefix"`
	DefaultVatRate  float64   `json:"default_vat_rate" db:"default_vat_rate"`
	LogoKey         *string   `json:"logo_key" db:"logo_key"`
	StampKey        *string   `json:"stamp_key" db:"stamp_key"`
	SignatureKey    *string   `json:"signature_key" db:"signature_key"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Prefix returns the configured document number prefix for a kind.
func (c *Company) Prefix(kind DocumentKind) string {
	if kind == KindInvoice {
		return c.InvoicePrefix
	}
	return c.QuotationPrefix
}
