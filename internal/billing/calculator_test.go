package billing

import (
	"testing"

	"sabaibill/internal/models"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func excItem(qty, price float64) models.LineItem {
	return models.LineItem{Description: "item", Quantity: qty, Unit: "pcs", UnitPrice: price}
}

func incItem(qty, price float64) models.LineItem {
	item := excItem(qty, price)
	item.PriceIncludesVat = true
	return item
}

func TestComputeTotals_EmptyItems(t *testing.T) {
	totals := ComputeTotals(nil, Discount{Type: models.DiscountFixed, Value: 0}, 7)

	assert.Equal(t, Totals{}, totals)
}

func TestComputeTotals_PureVatExclusive(t *testing.T) {
	totals := ComputeTotals([]models.LineItem{excItem(1, 100)}, Discount{Type: models.DiscountFixed}, 7)

	assert.InDelta(t, 100, totals.Subtotal, tolerance)
	assert.InDelta(t, 100, totals.AmountBeforeVat, tolerance)
	assert.InDelta(t, 7, totals.VatAmount, tolerance)
	assert.InDelta(t, 107, totals.TotalAmount, tolerance)
}

func TestComputeTotals_PureVatInclusive(t *testing.T) {
	totals := ComputeTotals([]models.LineItem{incItem(1, 107)}, Discount{Type: models.DiscountFixed}, 7)

	assert.InDelta(t, 107, totals.Subtotal, tolerance)
	assert.InDelta(t, 100, totals.AmountBeforeVat, tolerance)
	assert.InDelta(t, 7, totals.VatAmount, tolerance)
	assert.InDelta(t, 107, totals.TotalAmount, tolerance)
}

// Regression fixture for the mixed inclusive/exclusive split under a fixed
// document discount. Expected values are derived step by step from the same
// proportional-allocation rule the calculator implements.
func TestComputeTotals_MixedSetWithFixedDiscount(t *testing.T) {
	items := []models.LineItem{incItem(1, 107), excItem(1, 100)}

	totals := ComputeTotals(items, Discount{Type: models.DiscountFixed, Value: 10}, 7)

	ratio := (207.0 - 10.0) / 207.0
	incShare := 107 * ratio
	excShare := 100 * ratio
	wantBeforeVat := incShare/1.07 + excShare
	wantVat := (incShare - incShare/1.07) + excShare*0.07

	assert.InDelta(t, 207, totals.Subtotal, tolerance)
	assert.InDelta(t, 10, totals.DiscountAmount, tolerance)
	assert.InDelta(t, wantBeforeVat, totals.AmountBeforeVat, tolerance)
	assert.InDelta(t, wantVat, totals.VatAmount, tolerance)
	assert.InDelta(t, incShare+excShare+excShare*0.07, totals.TotalAmount, tolerance)
}

func TestComputeTotals_PercentDiscount(t *testing.T) {
	totals := ComputeTotals([]models.LineItem{excItem(2, 50)}, Discount{Type: models.DiscountPercent, Value: 10}, 7)

	assert.InDelta(t, 100, totals.Subtotal, tolerance)
	assert.InDelta(t, 10, totals.DiscountAmount, tolerance)
	assert.InDelta(t, 90, totals.AmountBeforeVat, tolerance)
	assert.InDelta(t, 96.3, totals.TotalAmount, tolerance)
}

func TestComputeTotals_LineDiscountFeedsSubtotal(t *testing.T) {
	item := excItem(1, 200)
	item.DiscountPercent = 50

	totals := ComputeTotals([]models.LineItem{item}, Discount{Type: models.DiscountFixed}, 7)

	assert.InDelta(t, 100, totals.Subtotal, tolerance)
	assert.InDelta(t, 107, totals.TotalAmount, tolerance)
}

func TestComputeTotals_FullDiscountGuardsRatio(t *testing.T) {
	totals := ComputeTotals([]models.LineItem{excItem(1, 100)}, Discount{Type: models.DiscountPercent, Value: 100}, 7)

	assert.InDelta(t, 100, totals.Subtotal, tolerance)
	assert.InDelta(t, 100, totals.DiscountAmount, tolerance)
	assert.InDelta(t, 0, totals.TotalAmount, tolerance)
}

// A fixed discount may exceed the subtotal; negative results are accepted,
// not an error.
func TestComputeTotals_FixedDiscountExceedsSubtotal(t *testing.T) {
	totals := ComputeTotals([]models.LineItem{excItem(1, 100)}, Discount{Type: models.DiscountFixed, Value: 150}, 7)

	assert.InDelta(t, 150, totals.DiscountAmount, tolerance)
	assert.True(t, totals.TotalAmount < 0)
}

func TestComputeTotals_ZeroVatRate(t *testing.T) {
	totals := ComputeTotals([]models.LineItem{incItem(1, 100), excItem(1, 100)}, Discount{Type: models.DiscountFixed}, 0)

	assert.InDelta(t, 200, totals.AmountBeforeVat, tolerance)
	assert.InDelta(t, 0, totals.VatAmount, tolerance)
	assert.InDelta(t, 200, totals.TotalAmount, tolerance)
}

// Property: totalAmount == amountBeforeVat + vatAmount across shapes.
func TestComputeTotals_TotalsIdentity(t *testing.T) {
	cases := [][]models.LineItem{
		nil,
		{excItem(1, 100)},
		{incItem(3, 107.5), excItem(2, 99.99)},
		{incItem(0.5, 1234.56), excItem(7, 0), incItem(1, 49)},
	}

	for _, items := range cases {
		totals := ComputeTotals(items, Discount{Type: models.DiscountPercent, Value: 12.5}, 7)
		assert.InDelta(t, totals.AmountBeforeVat+totals.VatAmount, totals.TotalAmount, tolerance)
	}
}
