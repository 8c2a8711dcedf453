package repositories

import (
	"context"
	"testing"
	"time"

	"sabaibill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestUsageRepo_Increment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewUsageRepo(mock)
	companyID := uuid.New()

	mock.ExpectExec(`INSERT INTO usage_counters`).
		WithArgs(pgxmock.AnyArg(), companyID, "2026-02", 1, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Increment(context.Background(), companyID, "2026-02", models.KindInvoice)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepo_IncrementQuotation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewUsageRepo(mock)
	companyID := uuid.New()

	mock.ExpectExec(`INSERT INTO usage_counters`).
		WithArgs(pgxmock.AnyArg(), companyID, "2026-02", 0, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Increment(context.Background(), companyID, "2026-02", models.KindQuotation)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepo_GetMissingRowReturnsZeroCounter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewUsageRepo(mock)
	companyID := uuid.New()

	mock.ExpectQuery(`SELECT id, company_id, month_year`).
		WithArgs(companyID, "2026-02").
		WillReturnError(pgx.ErrNoRows)

	counter, err := repo.Get(context.Background(), companyID, "2026-02")

	assert.NoError(t, err)
	assert.Equal(t, 0, counter.InvoiceCount)
	assert.Equal(t, 0, counter.QuotationCount)
	assert.Equal(t, "2026-02", counter.MonthYear)
}

func TestUsageRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewUsageRepo(mock)
	companyID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, company_id, month_year`).
		WithArgs(companyID, "2026-02").
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_id", "month_year", "invoice_count", "quotation_count", "created_at", "updated_at"}).
			AddRow(uuid.New(), companyID, "2026-02", 12, 5, now, now))

	counter, err := repo.Get(context.Background(), companyID, "2026-02")

	assert.NoError(t, err)
	assert.Equal(t, 12, counter.InvoiceCount)
	assert.Equal(t, 5, counter.QuotationCount)
}
