package handlers

import (
	"log"
	"net/http"
	"time"

	"sabaibill/internal/caching"
	"sabaibill/internal/common"
	"sabaibill/internal/repositories"
	"sabaibill/internal/services"

	"github.com/labstack/echo/v4"
)

const brandingURLExpiry = 15 * time.Minute

type CompanyHandlers struct {
	companyRepo repositories.CompanyRepository
	storage     services.BrandingStorage
	cacheSvc    caching.CacheService
}

func NewCompanyHandlers(companyRepo repositories.CompanyRepository, storage services.BrandingStorage, cacheSvc caching.CacheService) *CompanyHandlers {
	return &CompanyHandlers{
		companyRepo: companyRepo,
		storage:     storage,
		cacheSvc:    cacheSvc,
	}
}

// GetCompany returns the billing settings plus short-lived URLs for the
// branding assets, when storage is configured.
func (h *CompanyHandlers) GetCompany(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	company, err := h.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return common.SendNotFoundError(c, "Company")
	}

	resp := map[string]interface{}{"company": company}
	if h.storage != nil {
		urls := map[string]string{}
		for kind, key := range map[string]*string{
			services.BrandingLogo:      company.LogoKey,
			services.BrandingStamp:     company.StampKey,
			services.BrandingSignature: company.SignatureKey,
		} {
			if key == nil {
				continue
			}
			url, err := h.storage.PresignedURL(*key, brandingURLExpiry)
			if err != nil {
				log.Printf("presign %s for company %s: %v", kind, companyID, err)
				continue
			}
			urls[kind] = url
		}
		resp["branding_urls"] = urls
	}

	return c.JSON(http.StatusOK, resp)
}

type companySettingsRequest struct {
	Name            string   `json:"name"`
	Address         *string  `json:"address"`
	TaxID           *string  `json:"tax_id"`
	Branch          *string  `json:"branch"`
	Phone           *string  `json:"phone"`
	QuotationPrefix string   `json:"quotation_prefix"`
	InvoicePrefix   string   `json:"invoice_prefix"`
	DefaultVatRate  *float64 `json:"default_vat_rate"`
}

// UpdateCompany handles PUT /company. Prefix changes only affect numbers
// allocated after the change; existing documents keep theirs.
func (h *CompanyHandlers) UpdateCompany(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req companySettingsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}
	if req.TaxID != nil && common.SafeString(req.TaxID) != "" {
		if err := common.ValidateThaiTaxID(*req.TaxID, "tax_id"); err != nil {
			return common.SendValidationError(c, "tax_id", err.Error())
		}
	}
	if req.DefaultVatRate != nil && *req.DefaultVatRate < 0 {
		return common.SendValidationError(c, "default_vat_rate", "default_vat_rate must not be negative")
	}

	company, err := h.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return common.SendNotFoundError(c, "Company")
	}

	company.Name = req.Name
	company.Address = req.Address
	company.TaxID = req.TaxID
	company.Branch = req.Branch
	company.Phone = req.Phone
	if req.QuotationPrefix != "" {
		company.QuotationPrefix = req.QuotationPrefix
	}
	if req.InvoicePrefix != "" {
		company.InvoicePrefix = req.InvoicePrefix
	}
	if req.DefaultVatRate != nil {
		company.DefaultVatRate = *req.DefaultVatRate
	}

	if err := h.companyRepo.Update(ctx, company); err != nil {
		return common.SendServerError(c, "Failed to update company: "+err.Error())
	}

	if h.cacheSvc != nil {
		if err := h.cacheSvc.DeleteCompany(ctx, companyID); err != nil {
			log.Printf("invalidate company cache for %s: %v", companyID, err)
		}
	}

	return c.JSON(http.StatusOK, company)
}

var brandingKinds = map[string]bool{
	services.BrandingLogo:      true,
	services.BrandingStamp:     true,
	services.BrandingSignature: true,
}

// UploadBranding handles POST /company/branding/:kind with a multipart
// "file" field. The previous asset of that kind is removed from storage.
func (h *CompanyHandlers) UploadBranding(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if h.storage == nil {
		return common.SendServerError(c, "Branding storage is not configured")
	}

	kind := c.Param("kind")
	if !brandingKinds[kind] {
		return common.SendValidationError(c, "kind", "kind must be one of logo, stamp, signature")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "Missing file upload")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload: "+err.Error())
	}
	defer src.Close()

	company, err := h.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return common.SendNotFoundError(c, "Company")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	objectKey, err := h.storage.Upload(ctx, companyID, kind, src, fileHeader.Size, contentType)
	if err != nil {
		return common.SendServerError(c, "Failed to store file: "+err.Error())
	}

	if err := h.companyRepo.UpdateBrandingKey(ctx, companyID, kind, objectKey); err != nil {
		return common.SendServerError(c, "Failed to save branding key: "+err.Error())
	}

	var previous *string
	switch kind {
	case services.BrandingLogo:
		previous = company.LogoKey
	case services.BrandingStamp:
		previous = company.StampKey
	case services.BrandingSignature:
		previous = company.SignatureKey
	}
	if previous != nil {
		if err := h.storage.Delete(ctx, *previous); err != nil {
			log.Printf("delete stale branding object %s: %v", *previous, err)
		}
	}

	if h.cacheSvc != nil {
		if err := h.cacheSvc.DeleteCompany(ctx, companyID); err != nil {
			log.Printf("invalidate company cache for %s: %v", companyID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"kind": kind, "object_key": objectKey})
}
