package billing

import "sabaibill/internal/models"

// issuedStatuses are the legal non-draft states a draft may transition into,
// per kind. Converted is set by the external quotation conversion flow and
// is never a target here.
var issuedStatuses = map[models.DocumentKind]map[string]bool{
	models.KindQuotation: {
		models.StatusPending: true,
		models.StatusSent:    true,
	},
	models.KindInvoice: {
		models.StatusIssued: true,
	},
}

// ValidStatus reports whether status belongs to the kind's vocabulary at all.
func ValidStatus(kind models.DocumentKind, status string) bool {
	if status == models.StatusDraft || status == models.StatusCancelled {
		return true
	}
	if kind == models.KindQuotation && status == models.StatusConverted {
		return true
	}
	return issuedStatuses[kind][status]
}

// IsIssued reports whether status is a finalized, non-cancelled state.
func IsIssued(kind models.DocumentKind, status string) bool {
	return issuedStatuses[kind][status] || status == models.StatusConverted
}

// CheckSave validates the intended status of a create or update. The stored
// status is the state the document is in right now (StatusDraft for a brand
// new document).
func CheckSave(kind models.DocumentKind, storedStatus, intendedStatus string) error {
	if storedStatus != models.StatusDraft {
		return ErrDocumentImmutable
	}
	if intendedStatus != models.StatusDraft && !issuedStatuses[kind][intendedStatus] {
		return ErrInvalidTransition
	}
	return nil
}

// CheckCancel validates a cancel request against the stored status. Only a
// finalized document can be cancelled; drafts are deleted, and cancellation
// is terminal.
func CheckCancel(kind models.DocumentKind, storedStatus string) error {
	switch {
	case storedStatus == models.StatusDraft:
		return ErrCannotCancelDraft
	case storedStatus == models.StatusCancelled:
		return ErrAlreadyCancelled
	case IsIssued(kind, storedStatus):
		return nil
	default:
		return ErrInvalidTransition
	}
}

// CheckDelete validates a delete request. Anything past draft is audit
// history and can only be cancelled.
func CheckDelete(storedStatus string) error {
	if storedStatus != models.StatusDraft {
		return ErrCannotDeleteIssued
	}
	return nil
}
