package billing

import "sabaibill/internal/models"

// Discount is the document-level discount applied after per-line discounts.
// A fixed discount is not clamped to the subtotal; a value larger than the
// subtotal legally yields negative downstream totals.
type Discount struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Totals is the persisted monetary breakdown of a document. Values keep full
// floating precision; rounding to two decimals happens only when formatting
// for display.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	DiscountAmount  float64 `json:"discount_amount"`
	AmountBeforeVat float64 `json:"amount_before_vat"`
	VatAmount       float64 `json:"vat_amount"`
	TotalAmount     float64 `json:"total_amount"`
}

// LineAmount is a line's net amount after its own discount, before the
// document discount.
func LineAmount(item models.LineItem) float64 {
	gross := item.Quantity * item.UnitPrice
	return gross - gross*(item.DiscountPercent/100)
}

// ComputeTotals turns a line item set, a document discount and a VAT rate
// into the totals breakdown.
//
// The subtotal sums line nets in whatever mix of VAT-inclusive and
// VAT-exclusive unit prices the items carry, without normalization, and the
// document discount applies to that mixed figure. Historical documents were
// issued with these semantics, so they must not change.
//
// The document discount is spread proportionally over the lines via
// discountRatio, then each line's share lands in the inclusive or exclusive
// bucket by its price_includes_vat flag. The inclusive bucket already
// contains VAT and is backed out; the exclusive bucket has VAT added
// forward.
func ComputeTotals(items []models.LineItem, discount Discount, vatRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += LineAmount(item)
	}

	var discountAmount float64
	switch discount.Type {
	case models.DiscountPercent:
		discountAmount = subtotal * (discount.Value / 100)
	default:
		discountAmount = discount.Value
	}

	// Guards the empty and 100%-discounted item set.
	discountRatio := 1.0
	if subtotal != 0 {
		discountRatio = (subtotal - discountAmount) / subtotal
	}

	var totalIncVat, totalExcVat float64
	for _, item := range items {
		net := LineAmount(item) * discountRatio
		if item.PriceIncludesVat {
			totalIncVat += net
		} else {
			totalExcVat += net
		}
	}

	beforeVatFromInc := totalIncVat / (1 + vatRate/100)
	vatFromInc := totalIncVat - beforeVatFromInc
	vatFromExc := totalExcVat * (vatRate / 100)

	return Totals{
		Subtotal:        subtotal,
		DiscountAmount:  discountAmount,
		AmountBeforeVat: beforeVatFromInc + totalExcVat,
		VatAmount:       vatFromInc + vatFromExc,
		TotalAmount:     totalIncVat + totalExcVat + vatFromExc,
	}
}
