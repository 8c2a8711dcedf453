package repositories

import (
	"context"
	"errors"
	"fmt"

	"sabaibill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, companyID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error)
	FindOrCreate(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

const customerColumns = `id, company_id, name, address, tax_id, branch, contact, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(&customer.ID, &customer.CompanyID, &customer.Name, &customer.Address, &customer.TaxID, &customer.Branch, &customer.Contact, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.CompanyID, customer.Name, customer.Address, customer.TaxID, customer.Branch, customer.Contact)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE company_id = $1 AND id = $2`
	return scanCustomer(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, address = $2, tax_id = $3, branch = $4, contact = $5, updated_at = NOW()
		WHERE company_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, customer.Name, customer.Address, customer.TaxID, customer.Branch, customer.Contact, customer.CompanyID, customer.ID)
	return err
}

func (r *customerRepo) List(ctx context.Context, companyID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE company_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, companyID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (r *customerRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `DELETE FROM customers WHERE company_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, companyID, id)
	return err
}

// FindOrCreate looks a directory entry up by name, and by tax id as well
// when the snapshot carries one, creating it when absent. Idempotent: a
// repeat call with the same snapshot returns the existing row.
func (r *customerRepo) FindOrCreate(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE company_id = $1 AND name = $2 AND ($3::text IS NULL OR tax_id = $3)
		LIMIT 1
	`
	existing, err := scanCustomer(r.db.QueryRow(ctx, query, customer.CompanyID, customer.Name, customer.TaxID))
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if err := r.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}
