package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sabaibill/internal/billing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	CompanyIDKey contextKey = "company_id"
)

// GetCompanyIDFromContext extracts the authenticated company scope placed
// there by the JWT middleware.
func GetCompanyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(CompanyIDKey).(uuid.UUID)
	return id, ok
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// billingStatusCodes maps billing reason codes onto HTTP statuses. State
// conflicts are 409, quota and subscription gates are 403.
var billingStatusCodes = map[string]int{
	"VALIDATION":            http.StatusBadRequest,
	"NOT_FOUND":             http.StatusNotFound,
	"CANNOT_CANCEL_DRAFT":   http.StatusConflict,
	"ALREADY_CANCELLED":     http.StatusConflict,
	"CANNOT_DELETE_ISSUED":  http.StatusConflict,
	"DOCUMENT_IMMUTABLE":    http.StatusConflict,
	"INVALID_TRANSITION":    http.StatusConflict,
	"LIMIT_EXCEEDED":        http.StatusForbidden,
	"SUBSCRIPTION_INACTIVE": http.StatusForbidden,
}

// SendBillingError renders a billing.Error with its reason code so callers
// can branch on it; anything else becomes a generic server error.
func SendBillingError(c echo.Context, err error) error {
	var billErr *billing.Error
	if errors.As(err, &billErr) {
		status, known := billingStatusCodes[billErr.Reason]
		if !known {
			status = http.StatusBadRequest
		}
		return c.JSON(status, CreateErrorResponse(billErr.Reason, billErr.Message, nil))
	}
	return SendServerError(c, err.Error())
}

// ValidateUUID validates UUID path and body parameters.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidateThaiTaxID checks the 13-digit format used for Thai tax and
// citizen identifiers, including the mod-11 check digit.
func ValidateThaiTaxID(taxID string, fieldName string) error {
	taxID = strings.TrimSpace(taxID)
	if len(taxID) != 13 {
		return fmt.Errorf("%s must be exactly 13 digits", fieldName)
	}

	sum := 0
	for i := 0; i < 12; i++ {
		d := taxID[i]
		if d < '0' || d > '9' {
			return fmt.Errorf("%s must contain only digits", fieldName)
		}
		sum += int(d-'0') * (13 - i)
	}
	last := taxID[12]
	if last < '0' || last > '9' {
		return fmt.Errorf("%s must contain only digits", fieldName)
	}

	check := (11 - sum%11) % 10
	if int(last-'0') != check {
		return fmt.Errorf("%s has an invalid check digit", fieldName)
	}
	return nil
}

// SafeString dereferences an optional string.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
