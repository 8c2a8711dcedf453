package billing

import (
	"fmt"
	"strings"
	"time"
)

const numberDateLayout = "20060102"

// FormatNumber builds a document number from the kind prefix, the issue date
// (not the wall clock) and the count of documents already sharing that
// prefix and date. "IV", 2026-02-05, 3 -> "IV-20260205-0004".
func FormatNumber(prefix string, issueDate time.Time, existingCount int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, issueDate.Format(numberDateLayout), existingCount+1)
}

// NumberSegment is the "{prefix}-{YYYYMMDD}" portion shared by all documents
// of one kind issued on one date. Repositories count against this segment.
func NumberSegment(prefix string, issueDate time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, issueDate.Format(numberDateLayout))
}

// NeedsRenumber reports whether a draft's current number no longer matches
// the prefix and issue date it is being saved with. Only drafts are ever
// renumbered; once a document leaves draft its number is frozen.
func NeedsRenumber(currentNumber, prefix string, issueDate time.Time) bool {
	if currentNumber == "" {
		return true
	}
	return !strings.HasPrefix(currentNumber, NumberSegment(prefix, issueDate)+"-")
}
