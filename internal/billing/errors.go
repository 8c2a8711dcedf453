package billing

import "fmt"

// Error is a caller-facing billing failure. Reason is a stable machine
// checkable code; Message is for humans. Handlers map reasons onto HTTP
// responses without parsing message text.
type Error struct {
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match any Error with the same reason code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

// State conflict and quota failures. These are deterministic and never
// retried automatically.
var (
	ErrCannotCancelDraft    = &Error{Reason: "CANNOT_CANCEL_DRAFT", Message: "a draft cannot be cancelled, delete it instead"}
	ErrAlreadyCancelled     = &Error{Reason: "ALREADY_CANCELLED", Message: "document is already cancelled"}
	ErrCannotDeleteIssued   = &Error{Reason: "CANNOT_DELETE_ISSUED", Message: "an issued document cannot be deleted, cancel it instead"}
	ErrDocumentImmutable    = &Error{Reason: "DOCUMENT_IMMUTABLE", Message: "document has been issued and can no longer be edited"}
	ErrLimitExceeded        = &Error{Reason: "LIMIT_EXCEEDED", Message: "document limit for the current billing period has been reached"}
	ErrSubscriptionInactive = &Error{Reason: "SUBSCRIPTION_INACTIVE", Message: "subscription is not active"}
	ErrInvalidTransition    = &Error{Reason: "INVALID_TRANSITION", Message: "status transition is not allowed"}
	ErrNotFound             = &Error{Reason: "NOT_FOUND", Message: "document not found"}
)

// NewValidationError reports a field-level validation failure raised before
// any persistence attempt.
func NewValidationError(field, message string) *Error {
	return &Error{
		Reason:  "VALIDATION",
		Message: fmt.Sprintf("%s: %s", field, message),
	}
}
