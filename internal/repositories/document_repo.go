package repositories

import (
	"context"
	"fmt"

	"sabaibill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document, items []models.LineItem) error
	Update(ctx context.Context, doc *models.Document, items []models.LineItem) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error)
	GetItems(ctx context.Context, companyID, documentID uuid.UUID) ([]models.LineItem, error)
	List(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, status string, limit, offset int) ([]*models.Document, error)
	CountByNumberSegment(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, segment string, excludeID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type documentRepo struct {
	db DB
}

func NewDocumentRepo(db DB) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, company_id, kind, document_number, customer_name, customer_address, customer_tax_id, customer_branch, customer_contact, issue_date, due_date, valid_until, vat_rate, discount_type, discount_value, status, subtotal, discount_amount, amount_before_vat, vat_amount, total_amount, notes, created_at, updated_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(&doc.ID, &doc.CompanyID, &doc.Kind, &doc.DocumentNumber, &doc.CustomerName, &doc.CustomerAddress, &doc.CustomerTaxID, &doc.CustomerBranch, &doc.CustomerContact, &doc.IssueDate, &doc.DueDate, &doc.ValidUntil, &doc.VatRate, &doc.DiscountType, &doc.DiscountValue, &doc.Status, &doc.Subtotal, &doc.DiscountAmount, &doc.AmountBeforeVat, &doc.VatAmount, &doc.TotalAmount, &doc.Notes, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Create inserts the header and its item set as one transaction.
func (r *documentRepo) Create(ctx context.Context, doc *models.Document, items []models.LineItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin document create: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query, doc.ID, doc.CompanyID, doc.Kind, doc.DocumentNumber, doc.CustomerName, doc.CustomerAddress, doc.CustomerTaxID, doc.CustomerBranch, doc.CustomerContact, doc.IssueDate, doc.DueDate, doc.ValidUntil, doc.VatRate, doc.DiscountType, doc.DiscountValue, doc.Status, doc.Subtotal, doc.DiscountAmount, doc.AmountBeforeVat, doc.VatAmount, doc.TotalAmount, doc.Notes)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	if err := insertItems(ctx, tx, doc, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update rewrites the header and replaces the whole item set. Items are
// never diffed; the prior set is deleted and the current one reinserted with
// fresh sequential item_order.
func (r *documentRepo) Update(ctx context.Context, doc *models.Document, items []models.LineItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin document update: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE documents
		SET document_number = $1, customer_name = $2, customer_address = $3, customer_tax_id = $4, customer_branch = $5, customer_contact = $6, issue_date = $7, due_date = $8, valid_until = $9, vat_rate = $10, discount_type = $11, discount_value = $12, status = $13, subtotal = $14, discount_amount = $15, amount_before_vat = $16, vat_amount = $17, total_amount = $18, notes = $19, updated_at = NOW()
		WHERE company_id = $20 AND id = $21
	`
	_, err = tx.Exec(ctx, query, doc.DocumentNumber, doc.CustomerName, doc.CustomerAddress, doc.CustomerTaxID, doc.CustomerBranch, doc.CustomerContact, doc.IssueDate, doc.DueDate, doc.ValidUntil, doc.VatRate, doc.DiscountType, doc.DiscountValue, doc.Status, doc.Subtotal, doc.DiscountAmount, doc.AmountBeforeVat, doc.VatAmount, doc.TotalAmount, doc.Notes, doc.CompanyID, doc.ID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM line_items WHERE company_id = $1 AND document_id = $2`, doc.CompanyID, doc.ID)
	if err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}

	if err := insertItems(ctx, tx, doc, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, doc *models.Document, items []models.LineItem) error {
	query := `
		INSERT INTO line_items (id, company_id, document_id, item_order, description, quantity, unit, unit_price, discount_percent, price_includes_vat, line_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.CompanyID = doc.CompanyID
		item.DocumentID = doc.ID
		item.ItemOrder = i + 1

		_, err := tx.Exec(ctx, query, item.ID, item.CompanyID, item.DocumentID, item.ItemOrder, item.Description, item.Quantity, item.Unit, item.UnitPrice, item.DiscountPercent, item.PriceIncludesVat, item.LineAmount)
		if err != nil {
			return fmt.Errorf("insert line item %d: %w", item.ItemOrder, err)
		}
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1 AND id = $2`
	return scanDocument(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *documentRepo) GetItems(ctx context.Context, companyID, documentID uuid.UUID) ([]models.LineItem, error) {
	query := `
		SELECT id, company_id, document_id, item_order, description, quantity, unit, unit_price, discount_percent, price_includes_vat, line_amount, created_at, updated_at
		FROM line_items
		WHERE company_id = $1 AND document_id = $2
		ORDER BY item_order ASC
	`
	rows, err := r.db.Query(ctx, query, companyID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		item := models.LineItem{}
		if err := rows.Scan(&item.ID, &item.CompanyID, &item.DocumentID, &item.ItemOrder, &item.Description, &item.Quantity, &item.Unit, &item.UnitPrice, &item.DiscountPercent, &item.PriceIncludesVat, &item.LineAmount, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *documentRepo) List(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, status string, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND kind = $2 AND ($3 = '' OR status = $3)
		ORDER BY issue_date DESC, document_number DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, companyID, kind, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountByNumberSegment counts documents whose number carries the given
// "{prefix}-{YYYYMMDD}" segment, excluding the document being saved so it
// never bumps its own sequence on repeated draft saves.
func (r *documentRepo) CountByNumberSegment(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, segment string, excludeID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM documents
		WHERE company_id = $1 AND kind = $2 AND document_number LIKE $3 AND id <> $4
	`
	var count int
	err := r.db.QueryRow(ctx, query, companyID, kind, segment+"-%", excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents for segment %s: %w", segment, err)
	}
	return count, nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	query := `
		UPDATE documents
		SET status = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, status, companyID, id)
	return err
}

// Delete removes the header and its item set together.
func (r *documentRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin document delete: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM line_items WHERE company_id = $1 AND document_id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM documents WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	return tx.Commit(ctx)
}
