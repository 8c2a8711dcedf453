package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind distinguishes the two billing document types.
type DocumentKind string

const (
	KindQuotation DocumentKind = "quotation"
	KindInvoice   DocumentKind = "invoice"
)

// Document statuses. Quotations move draft -> pending/sent -> cancelled
// (converted is set by the external conversion flow and only observed here);
// invoices move draft -> issued -> cancelled.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusIssued    = "issued"
	StatusCancelled = "cancelled"
	StatusConverted = "converted"
)

// Document discount types applied on top of per-line discounts.
const (
	DiscountFixed   = "fixed"
	DiscountPercent = "percent"
)

// Document is a quotation or tax invoice header. Customer fields are a
// snapshot taken at save time, not a live reference, so an issued document
// stays immutable even if the customer record is edited later. Totals are
// persisted as computed at last save and never recomputed on read.
type Document struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	CompanyID       uuid.UUID    `json:"company_id" db:"company_id"`
	Kind            DocumentKind `json:"kind" db:"kind"`
	DocumentNumber  string       `json:"document_number" db:"document_number"`
	CustomerName    string       `json:"customer_name" db:"customer_name"`
	CustomerAddress string       `json:"customer_address" db:"customer_address"`
	CustomerTaxID   *string      `json:"customer_tax_id" db:"customer_tax_id"`
	CustomerBranch  *string      `json:"customer_branch" db:"customer_branch"`
	CustomerContact *string      `json:"customer_contact" db:"customer_contact"`
	IssueDate       time.Time    `json:"issue_date" db:"issue_date"`
	DueDate         *time.Time   `json:"due_date" db:"due_date"`
	ValidUntil      *time.Time   `json:"valid_until" db:"valid_until"`
	VatRate         float64      `json:"vat_rate" db:"vat_rate"`
	DiscountType    string       `json:"discount_type" db:"discount_type"`
	DiscountValue   float64      `json:"discount_value" db:"discount_value"`
	Status          string       `json:"status" db:"status"`
	Subtotal        float64      `json:"subtotal" db:"subtotal"`
	DiscountAmount  float64      `json:"discount_amount" db:"discount_amount"`
	AmountBeforeVat float64      `json:"amount_before_vat" db:"amount_before_vat"`
	VatAmount       float64      `json:"vat_amount" db:"vat_amount"`
	TotalAmount     float64      `json:"total_amount" db:"total_amount"`
	Notes           *string      `json:"notes" db:"notes"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// IsDraft reports whether the document can still be edited, deleted and
// renumbered.
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft
}
