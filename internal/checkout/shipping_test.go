package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/nairamart/storefront/pkg/errors"
)

func completeDetails() ShippingDetails {
	return ShippingDetails{
		FullName: "Amina Bello",
		Email:    "amina@example.com",
		Phone:    "+234 801 234 5678",
		Address:  "12 Marina Road",
		City:     "Lagos",
		State:    "Lagos State",
	}
}

func TestValidateShippingComplete(t *testing.T) {
	assert.Empty(t, ValidateShipping(completeDetails()))
}

func TestValidateShippingPostalCodeOptional(t *testing.T) {
	details := completeDetails()
	details.PostalCode = ""
	assert.Empty(t, ValidateShipping(details))
}

func TestValidateShippingAllMissingInOrder(t *testing.T) {
	missing := ValidateShipping(ShippingDetails{})
	assert.Equal(t, []string{"full_name", "email", "phone", "address", "city", "state"}, missing)
}

func TestValidateShippingWhitespaceOnlyIsMissing(t *testing.T) {
	details := completeDetails()
	details.Phone = "   "
	details.City = "\t"

	missing := ValidateShipping(details)
	assert.Equal(t, []string{"phone", "city"}, missing)
}

func TestValidateShippingDoesNotCheckFormat(t *testing.T) {
	details := completeDetails()
	details.Email = "not-an-email"
	assert.Empty(t, ValidateShipping(details), "only non-emptiness is enforced")
}

func TestValidationErrorCarriesMissingFields(t *testing.T) {
	details := completeDetails()
	details.State = ""

	err := ValidationError(details)
	assert.Error(t, err)
	typed := pkgerrors.As(err)
	assert.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details2, ok := typed.Details().(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, []string{"state"}, details2["missing_fields"])
}

func TestValidationErrorNilWhenComplete(t *testing.T) {
	assert.NoError(t, ValidationError(completeDetails()))
}
