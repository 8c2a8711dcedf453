package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"sabaibill/internal/common"
	"sabaibill/internal/models"
	"sabaibill/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DraftSessionHeader identifies the client's editing session. Debounced
// auto-save and an explicit submit from the same session both POST here, so
// first saves carrying the same token share one single-flight create.
const DraftSessionHeader = "X-Draft-Session"

// DocumentHandlers serves one document kind; quotations and invoices get
// separate instances over the same service.
type DocumentHandlers struct {
	documentSvc services.DocumentService
	kind        models.DocumentKind
	sessions    *services.DraftSessions
}

func NewDocumentHandlers(documentSvc services.DocumentService, kind models.DocumentKind, sessions *services.DraftSessions) *DocumentHandlers {
	return &DocumentHandlers{
		documentSvc: documentSvc,
		kind:        kind,
		sessions:    sessions,
	}
}

type documentRequest struct {
	services.DocumentForm
	Status string `json:"status"`
}

type documentResponse struct {
	*models.Document
	Items        []models.LineItem `json:"items,omitempty"`
	DisplayTotal string            `json:"display_total"`
}

func newDocumentResponse(doc *models.Document, items []models.LineItem) *documentResponse {
	return &documentResponse{
		Document:     doc,
		Items:        items,
		DisplayTotal: common.FormatMoney(doc.TotalAmount),
	}
}

// Create handles POST /{kind}s. A status other than draft issues the
// document immediately instead of saving a draft first.
func (h *DocumentHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.CustomerTaxID != nil && common.SafeString(req.CustomerTaxID) != "" {
		if err := common.ValidateThaiTaxID(*req.CustomerTaxID, "customer_tax_id"); err != nil {
			return common.SendValidationError(c, "customer_tax_id", err.Error())
		}
	}

	sessionToken := c.Request().Header.Get(DraftSessionHeader)
	if sessionToken == "" || h.sessions == nil {
		doc, err := h.documentSvc.Create(ctx, companyID, h.kind, &req.DocumentForm, req.Status)
		if err != nil {
			return common.SendBillingError(c, err)
		}
		return c.JSON(http.StatusCreated, newDocumentResponse(doc, nil))
	}

	// Same-session saves funnel through one guard: a concurrent second
	// first-save blocks in CreateOnce and resolves to the id the first one
	// produced instead of creating a duplicate document.
	sessionKey := fmt.Sprintf("%s:%s:%s", companyID, h.kind, sessionToken)
	saver := h.sessions.For(sessionKey)

	var created *models.Document
	id, err := saver.CreateOnce(ctx, func(ctx context.Context) (uuid.UUID, error) {
		doc, err := h.documentSvc.Create(ctx, companyID, h.kind, &req.DocumentForm, req.Status)
		if err != nil {
			return uuid.Nil, err
		}
		created = doc
		return doc.ID, nil
	})
	if err != nil {
		return common.SendBillingError(c, err)
	}

	if req.Status != "" && req.Status != models.StatusDraft {
		h.sessions.Release(sessionKey)
	}

	if created != nil {
		return c.JSON(http.StatusCreated, newDocumentResponse(created, nil))
	}

	doc, items, err := h.documentSvc.Get(ctx, companyID, id)
	if err != nil {
		return common.SendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, newDocumentResponse(doc, items))
}

func (h *DocumentHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	doc, items, err := h.documentSvc.Get(ctx, companyID, id)
	if err != nil {
		return common.SendBillingError(c, err)
	}

	return c.JSON(http.StatusOK, newDocumentResponse(doc, items))
}

func (h *DocumentHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	status := c.QueryParam("status")

	docs, err := h.documentSvc.List(ctx, companyID, h.kind, status, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list documents: "+err.Error())
	}

	return c.JSON(http.StatusOK, docs)
}

// Update handles PUT /{kind}s/:id. Only drafts accept updates; the service
// rejects everything else with DOCUMENT_IMMUTABLE.
func (h *DocumentHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.CustomerTaxID != nil && common.SafeString(req.CustomerTaxID) != "" {
		if err := common.ValidateThaiTaxID(*req.CustomerTaxID, "customer_tax_id"); err != nil {
			return common.SendValidationError(c, "customer_tax_id", err.Error())
		}
	}

	doc, err := h.documentSvc.Update(ctx, companyID, id, &req.DocumentForm, req.Status)
	if err != nil {
		return common.SendBillingError(c, err)
	}

	return c.JSON(http.StatusOK, newDocumentResponse(doc, nil))
}

func (h *DocumentHandlers) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.documentSvc.Cancel(ctx, companyID, id); err != nil {
		return common.SendBillingError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": models.StatusCancelled})
}

func (h *DocumentHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.documentSvc.Delete(ctx, companyID, id); err != nil {
		return common.SendBillingError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
