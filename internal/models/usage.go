package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageCounter tracks issued documents per company per billing period.
// MonthYear is formatted "2006-01". Counters only ever go up; cancelling a
// document does not free quota.
type UsageCounter struct {
	ID             uuid.UUID `json:"id" db:"id"`
	CompanyID      uuid.UUID `json:"company_id" db:"company_id"`
	MonthYear      string    `json:"month_year" db:"month_year"`
	InvoiceCount   int       `json:"invoice_count" db:"invoice_count"`
	QuotationCount int       `json:"quotation_count" db:"quotation_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UsageSummary is the read shape combining current-period counters with the
// plan limits. Nil limits mean unlimited.
type UsageSummary struct {
	MonthYear      string `json:"month_year"`
	InvoiceCount   int    `json:"invoice_count"`
	QuotationCount int    `json:"quotation_count"`
	InvoiceLimit   *int   `json:"invoice_limit"`
	QuotationLimit *int   `json:"quotation_limit"`
}
