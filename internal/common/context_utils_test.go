package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateThaiTaxID(t *testing.T) {
	// 1234567890121: weighted sum of the first 12 digits is 13*1 + 12*2 +
	// ... + 2*2 = 352, check digit (11 - 352%11) % 10 = 1.
	assert.NoError(t, ValidateThaiTaxID("1234567890121", "tax_id"))

	assert.Error(t, ValidateThaiTaxID("1234567890120", "tax_id"))
	assert.Error(t, ValidateThaiTaxID("12345", "tax_id"))
	assert.Error(t, ValidateThaiTaxID("12345678901ab", "tax_id"))
	assert.Error(t, ValidateThaiTaxID("", "tax_id"))
}

func TestValidateUUID(t *testing.T) {
	_, err := ValidateUUID("not-a-uuid", "id")
	assert.Error(t, err)

	_, err = ValidateUUID("", "id")
	assert.Error(t, err)

	id, err := ValidateUUID(" 7c9e6679-7425-40de-944b-e07fc1f90ae7 ", "id")
	assert.NoError(t, err)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", id.String())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1,234.50", FormatMoney(1234.5))
	assert.Equal(t, "0.00", FormatMoney(0))
	assert.Equal(t, "107.00", FormatMoney(107.0000001))
}
