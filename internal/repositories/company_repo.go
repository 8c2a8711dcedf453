package repositories

import (
	"context"

	"sabaibill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	UpdateBrandingKey(ctx context.Context, id uuid.UUID, kind, objectKey string) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type companyRepo struct {
	db DB
}

func NewCompanyRepo(db DB) CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, name, address, tax_id, branch, phone, quotation_prefix, invoice_prefix, default_vat_rate, logo_key, stamp_key, signature_key, created_at, updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	company := &models.Company{}
	err := row.Scan(&company.ID, &company.Name, &company.Address, &company.TaxID, &company.Branch, &company.Phone, &company.QuotationPrefix, &company.InvoicePrefix, &company.DefaultVatRate, &company.LogoKey, &company.StampKey, &company.SignatureKey, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return scanCompany(r.db.QueryRow(ctx, query, id))
}

func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $1, address = $2, tax_id = $3, branch = $4, phone = $5, quotation_prefix = $6, invoice_prefix = $7, default_vat_rate = $8, updated_at = NOW()
		WHERE id = $9
	`
	_, err := r.db.Exec(ctx, query, company.Name, company.Address, company.TaxID, company.Branch, company.Phone, company.QuotationPrefix, company.InvoicePrefix, company.DefaultVatRate, company.ID)
	return err
}

// ListIDs returns every company id. Used by the background usage-cache
// refresh, not by request paths.
func (r *companyRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM companies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateBrandingKey stores the object key of an uploaded branding asset.
// kind is one of logo, stamp, signature.
func (r *companyRepo) UpdateBrandingKey(ctx context.Context, id uuid.UUID, kind, objectKey string) error {
	var column string
	switch kind {
	case "stamp":
		column = "stamp_key"
	case "signature":
		column = "signature_key"
	default:
		column = "logo_key"
	}
	query := `UPDATE companies SET ` + column + ` = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, objectKey, id)
	return err
}
