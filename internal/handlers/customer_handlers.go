package handlers

import (
	"net/http"
	"strconv"

	"sabaibill/internal/billing"
	"sabaibill/internal/common"
	"sabaibill/internal/models"
	"sabaibill/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CustomerHandlers struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerHandlers(customerRepo repositories.CustomerRepository) *CustomerHandlers {
	return &CustomerHandlers{customerRepo: customerRepo}
}

type customerRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id"`
	Branch  *string `json:"branch"`
	Contact *string `json:"contact"`
}

func (r *customerRequest) apply(customer *models.Customer) {
	customer.Name = r.Name
	customer.Address = r.Address
	customer.TaxID = r.TaxID
	customer.Branch = r.Branch
	customer.Contact = r.Contact
}

func (r *customerRequest) validate() error {
	if r.Name == "" {
		return billing.NewValidationError("name", "name is required")
	}
	if r.TaxID != nil && common.SafeString(r.TaxID) != "" {
		if err := common.ValidateThaiTaxID(*r.TaxID, "tax_id"); err != nil {
			return billing.NewValidationError("tax_id", err.Error())
		}
	}
	return nil
}

func (h *CustomerHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := req.validate(); err != nil {
		return common.SendBillingError(c, err)
	}

	customer := &models.Customer{ID: uuid.New(), CompanyID: companyID}
	req.apply(customer)

	if err := h.customerRepo.Create(ctx, customer); err != nil {
		return common.SendServerError(c, "Failed to create customer: "+err.Error())
	}

	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customerRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Customer")
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	customers, err := h.customerRepo.List(ctx, companyID, c.QueryParam("search"), limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list customers: "+err.Error())
	}

	return c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := req.validate(); err != nil {
		return common.SendBillingError(c, err)
	}

	customer, err := h.customerRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return common.SendNotFoundError(c, "Customer")
	}
	req.apply(customer)

	if err := h.customerRepo.Update(ctx, customer); err != nil {
		return common.SendServerError(c, "Failed to update customer: "+err.Error())
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.customerRepo.Delete(ctx, companyID, id); err != nil {
		return common.SendServerError(c, "Failed to delete customer: "+err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
