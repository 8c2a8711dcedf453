package repositories

import (
	"context"
	"fmt"

	"sabaibill/internal/models"

	"github.com/google/uuid"
)

type UsageRepository interface {
	Get(ctx context.Context, companyID uuid.UUID, monthYear string) (*models.UsageCounter, error)
	Increment(ctx context.Context, companyID uuid.UUID, monthYear string, kind models.DocumentKind) error
}

type usageRepo struct {
	db DB
}

func NewUsageRepo(db DB) UsageRepository {
	return &usageRepo{db: db}
}

// Get returns the counter row for the period, or a zeroed counter when the
// company has not issued anything yet this period.
func (r *usageRepo) Get(ctx context.Context, companyID uuid.UUID, monthYear string) (*models.UsageCounter, error) {
	counter := &models.UsageCounter{}
	query := `
		SELECT id, company_id, month_year, invoice_count, quotation_count, created_at, updated_at
		FROM usage_counters
		WHERE company_id = $1 AND month_year = $2
	`
	err := r.db.QueryRow(ctx, query, companyID, monthYear).Scan(&counter.ID, &counter.CompanyID, &counter.MonthYear, &counter.InvoiceCount, &counter.QuotationCount, &counter.CreatedAt, &counter.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &models.UsageCounter{CompanyID: companyID, MonthYear: monthYear}, nil
		}
		return nil, err
	}
	return counter, nil
}

// Increment bumps the period counter for the kind with a single upsert, so
// concurrent issuance never loses an update.
func (r *usageRepo) Increment(ctx context.Context, companyID uuid.UUID, monthYear string, kind models.DocumentKind) error {
	invoiceInc, quotationInc := 0, 0
	if kind == models.KindInvoice {
		invoiceInc = 1
	} else {
		quotationInc = 1
	}

	query := `
		INSERT INTO usage_counters (id, company_id, month_year, invoice_count, quotation_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (company_id, month_year)
		DO UPDATE SET
			invoice_count = usage_counters.invoice_count + $4,
			quotation_count = usage_counters.quotation_count + $5,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), companyID, monthYear, invoiceInc, quotationInc)
	if err != nil {
		return fmt.Errorf("increment usage counter: %w", err)
	}
	return nil
}
