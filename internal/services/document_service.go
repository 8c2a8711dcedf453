package services

import (
	"context"
	"errors"
	"log"
	"time"

	"sabaibill/internal/billing"
	"sabaibill/internal/caching"
	"sabaibill/internal/models"
	"sabaibill/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyCacheTTL = 10 * time.Minute

// LineItemForm is one row of a submitted document.
type LineItemForm struct {
	Description      string  `json:"description"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	UnitPrice        float64 `json:"unit_price"`
	DiscountPercent  float64 `json:"discount_percent"`
	PriceIncludesVat bool    `json:"price_includes_vat"`
}

// DocumentForm carries everything a save submits. The customer block is
// snapshotted onto the document; VatRate nil falls back to the company
// default.
type DocumentForm struct {
	CustomerName    string           `json:"customer_name"`
	CustomerAddress string           `json:"customer_address"`
	CustomerTaxID   *string          `json:"customer_tax_id"`
	CustomerBranch  *string          `json:"customer_branch"`
	CustomerContact *string          `json:"customer_contact"`
	IssueDate       time.Time        `json:"issue_date"`
	DueDate         *time.Time       `json:"due_date"`
	ValidUntil      *time.Time       `json:"valid_until"`
	VatRate         *float64         `json:"vat_rate"`
	Discount        billing.Discount `json:"discount"`
	Notes           *string          `json:"notes"`
	Items           []LineItemForm   `json:"items"`
}

// DocumentService is the aggregate boundary for quotations and invoices.
// It owns totals computation, number allocation, lifecycle enforcement and
// usage metering; handlers never touch those pieces directly.
type DocumentService interface {
	Create(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, form *DocumentForm, intendedStatus string) (*models.Document, error)
	Update(ctx context.Context, companyID, id uuid.UUID, form *DocumentForm, intendedStatus string) (*models.Document, error)
	Cancel(ctx context.Context, companyID, id uuid.UUID) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	Get(ctx context.Context, companyID, id uuid.UUID) (*models.Document, []models.LineItem, error)
	List(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, status string, limit, offset int) ([]*models.Document, error)
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	customerRepo repositories.CustomerRepository
	companyRepo  repositories.CompanyRepository
	usageSvc     UsageService
	cacheSvc     caching.CacheService
}

func NewDocumentService(documentRepo repositories.DocumentRepository, customerRepo repositories.CustomerRepository, companyRepo repositories.CompanyRepository, usageSvc UsageService, cacheSvc caching.CacheService) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		usageSvc:     usageSvc,
		cacheSvc:     cacheSvc,
	}
}

// validateIssue runs the checks that gate leaving draft. Draft saves skip
// them entirely.
func validateIssue(form *DocumentForm) error {
	if form.CustomerName == "" {
		return billing.NewValidationError("customer_name", "required to issue a document")
	}
	if form.CustomerAddress == "" {
		return billing.NewValidationError("customer_address", "required to issue a document")
	}
	if len(form.Items) == 0 {
		return billing.NewValidationError("items", "at least one line item is required to issue a document")
	}
	return nil
}

func (s *documentService) company(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	if s.cacheSvc != nil {
		if company, err := s.cacheSvc.GetCompany(ctx, companyID); err == nil {
			return company, nil
		}
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetCompany(ctx, company, companyCacheTTL); err != nil {
			log.Printf("Failed to cache company %s: %v", companyID, err)
		}
	}
	return company, nil
}

func buildItems(forms []LineItemForm) []models.LineItem {
	items := make([]models.LineItem, 0, len(forms))
	for _, f := range forms {
		item := models.LineItem{
			Description:      f.Description,
			Quantity:         f.Quantity,
			Unit:             f.Unit,
			UnitPrice:        f.UnitPrice,
			DiscountPercent:  f.DiscountPercent,
			PriceIncludesVat: f.PriceIncludesVat,
		}
		item.LineAmount = billing.LineAmount(item)
		items = append(items, item)
	}
	return items
}

func applyForm(doc *models.Document, form *DocumentForm, company *models.Company) {
	doc.CustomerName = form.CustomerName
	doc.CustomerAddress = form.CustomerAddress
	doc.CustomerTaxID = form.CustomerTaxID
	doc.CustomerBranch = form.CustomerBranch
	doc.CustomerContact = form.CustomerContact
	doc.IssueDate = form.IssueDate
	doc.Notes = form.Notes

	doc.VatRate = company.DefaultVatRate
	if form.VatRate != nil {
		doc.VatRate = *form.VatRate
	}

	doc.DiscountType = form.Discount.Type
	if doc.DiscountType == "" {
		doc.DiscountType = models.DiscountFixed
	}
	doc.DiscountValue = form.Discount.Value

	// Kind-specific second date, defaulted 30 days out when unset.
	switch doc.Kind {
	case models.KindInvoice:
		doc.DueDate = form.DueDate
		if doc.DueDate == nil {
			due := form.IssueDate.AddDate(0, 0, 30)
			doc.DueDate = &due
		}
	case models.KindQuotation:
		doc.ValidUntil = form.ValidUntil
		if doc.ValidUntil == nil {
			until := form.IssueDate.AddDate(0, 0, 30)
			doc.ValidUntil = &until
		}
	}
}

func applyTotals(doc *models.Document, totals billing.Totals) {
	doc.Subtotal = totals.Subtotal
	doc.DiscountAmount = totals.DiscountAmount
	doc.AmountBeforeVat = totals.AmountBeforeVat
	doc.VatAmount = totals.VatAmount
	doc.TotalAmount = totals.TotalAmount
}

// allocateNumber counts persisted documents sharing the prefix+date segment,
// excluding the document itself, and formats the next sequence. The count
// is not transactionally isolated from concurrent allocations; per-company
// write concurrency is low and the relaxed guarantee is intentional.
func (s *documentService) allocateNumber(ctx context.Context, doc *models.Document, prefix string) error {
	segment := billing.NumberSegment(prefix, doc.IssueDate)
	count, err := s.documentRepo.CountByNumberSegment(ctx, doc.CompanyID, doc.Kind, segment, doc.ID)
	if err != nil {
		return err
	}
	doc.DocumentNumber = billing.FormatNumber(prefix, doc.IssueDate, count)
	return nil
}

func (s *documentService) Create(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, form *DocumentForm, intendedStatus string) (*models.Document, error) {
	if intendedStatus == "" {
		intendedStatus = models.StatusDraft
	}
	if err := billing.CheckSave(kind, models.StatusDraft, intendedStatus); err != nil {
		return nil, err
	}
	if intendedStatus != models.StatusDraft {
		if err := validateIssue(form); err != nil {
			return nil, err
		}
		if err := s.usageSvc.CanCreate(ctx, companyID, kind); err != nil {
			return nil, err
		}
	}

	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:        uuid.New(),
		CompanyID: companyID,
		Kind:      kind,
		Status:    intendedStatus,
	}
	applyForm(doc, form, company)

	items := buildItems(form.Items)
	applyTotals(doc, billing.ComputeTotals(items, billing.Discount{Type: doc.DiscountType, Value: doc.DiscountValue}, doc.VatRate))

	if err := s.allocateNumber(ctx, doc, company.Prefix(kind)); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Create(ctx, doc, items); err != nil {
		return nil, err
	}

	if intendedStatus != models.StatusDraft {
		s.meterIssued(ctx, doc)
	}
	s.upsertCustomerAsync(doc)

	return doc, nil
}

func (s *documentService) Update(ctx context.Context, companyID, id uuid.UUID, form *DocumentForm, intendedStatus string) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, err
	}

	if intendedStatus == "" {
		intendedStatus = models.StatusDraft
	}
	if err := billing.CheckSave(doc.Kind, doc.Status, intendedStatus); err != nil {
		return nil, err
	}

	issuing := intendedStatus != models.StatusDraft
	if issuing {
		if err := validateIssue(form); err != nil {
			return nil, err
		}
		if err := s.usageSvc.CanCreate(ctx, companyID, doc.Kind); err != nil {
			return nil, err
		}
	}

	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}

	applyForm(doc, form, company)
	doc.Status = intendedStatus

	items := buildItems(form.Items)
	applyTotals(doc, billing.ComputeTotals(items, billing.Discount{Type: doc.DiscountType, Value: doc.DiscountValue}, doc.VatRate))

	// Drafts are renumbered whenever the date segment no longer matches;
	// the draft->issued transition always runs one final allocation pass so
	// a provisional auto-save number stamped with the wrong date cannot
	// survive issuance. The count excludes this document, so re-running the
	// pass with an unchanged date reproduces the same number.
	prefix := company.Prefix(doc.Kind)
	if issuing || billing.NeedsRenumber(doc.DocumentNumber, prefix, doc.IssueDate) {
		if err := s.allocateNumber(ctx, doc, prefix); err != nil {
			return nil, err
		}
	}

	if err := s.documentRepo.Update(ctx, doc, items); err != nil {
		return nil, err
	}

	if issuing {
		s.meterIssued(ctx, doc)
	}
	s.upsertCustomerAsync(doc)

	return doc, nil
}

func (s *documentService) Cancel(ctx context.Context, companyID, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return billing.ErrNotFound
		}
		return err
	}

	if err := billing.CheckCancel(doc.Kind, doc.Status); err != nil {
		return err
	}

	// Status-only change; items and persisted totals stay untouched as the
	// historical record.
	return s.documentRepo.UpdateStatus(ctx, companyID, id, models.StatusCancelled)
}

func (s *documentService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return billing.ErrNotFound
		}
		return err
	}

	if err := billing.CheckDelete(doc.Status); err != nil {
		return err
	}

	return s.documentRepo.Delete(ctx, companyID, id)
}

func (s *documentService) Get(ctx context.Context, companyID, id uuid.UUID) (*models.Document, []models.LineItem, error) {
	doc, err := s.documentRepo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, billing.ErrNotFound
		}
		return nil, nil, err
	}

	items, err := s.documentRepo.GetItems(ctx, companyID, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, items, nil
}

func (s *documentService) List(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, status string, limit, offset int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.documentRepo.List(ctx, companyID, kind, status, limit, offset)
}

// meterIssued bumps the usage counter after a committed write. Metering is
// best effort: a failure here must not unwind the document, so it is logged
// and swallowed.
func (s *documentService) meterIssued(ctx context.Context, doc *models.Document) {
	if err := s.usageSvc.Increment(ctx, doc.CompanyID, doc.Kind); err != nil {
		log.Printf("Failed to increment usage for company %s after issuing %s: %v", doc.CompanyID, doc.DocumentNumber, err)
	}
}

// upsertCustomerAsync mirrors the document's customer snapshot into the
// directory after the write commits. Fire and forget; a failure never
// affects the document save.
func (s *documentService) upsertCustomerAsync(doc *models.Document) {
	if doc.CustomerName == "" {
		return
	}

	snapshot := &models.Customer{
		CompanyID: doc.CompanyID,
		Name:      doc.CustomerName,
		TaxID:     doc.CustomerTaxID,
		Branch:    doc.CustomerBranch,
		Contact:   doc.CustomerContact,
	}
	if doc.CustomerAddress != "" {
		address := doc.CustomerAddress
		snapshot.Address = &address
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in customer upsert: %v", r)
			}
		}()

		if _, err := s.customerRepo.FindOrCreate(context.Background(), snapshot); err != nil {
			log.Printf("Failed to upsert customer %q for company %s: %v", snapshot.Name, snapshot.CompanyID, err)
		}
	}()
}
