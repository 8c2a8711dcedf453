package handlers

import (
	"net/http"

	"sabaibill/internal/common"
	"sabaibill/internal/services"

	"github.com/labstack/echo/v4"
)

type UsageHandlers struct {
	usageSvc services.UsageService
}

func NewUsageHandlers(usageSvc services.UsageService) *UsageHandlers {
	return &UsageHandlers{usageSvc: usageSvc}
}

// GetUsage returns the current-period counters alongside the plan limits,
// so the client can render "7 of 10 invoices used" without a second call.
func (h *UsageHandlers) GetUsage(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.usageSvc.Summary(ctx, companyID)
	if err != nil {
		return common.SendBillingError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *UsageHandlers) GetPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, services.AvailablePlans())
}
