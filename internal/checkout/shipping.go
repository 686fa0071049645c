package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/nairamart/storefront/pkg/errors"
)

// ShippingDetails is the transient checkout form state. It lives only for
// the duration of the checkout flow and is never persisted.
type ShippingDetails struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateShipping returns the missing required field names in declaration
// order; an empty list means the form is complete. Whitespace-only values
// count as missing. Field formats are not checked beyond non-emptiness.
func ValidateShipping(details ShippingDetails) []string {
	trimmed := details.normalized()

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	missing := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		missing = append(missing, fieldErr.Field())
	}
	return missing
}

// ValidationError wraps the missing-field list as a typed error, or nil when
// the form is complete.
func ValidationError(details ShippingDetails) error {
	missing := ValidateShipping(details)
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("missing required field %s", missing[0])).
		WithDetails(map[string]any{"missing_fields": missing})
}

func (d ShippingDetails) normalized() ShippingDetails {
	return ShippingDetails{
		FullName:   strings.TrimSpace(d.FullName),
		Email:      strings.TrimSpace(d.Email),
		Phone:      strings.TrimSpace(d.Phone),
		Address:    strings.TrimSpace(d.Address),
		City:       strings.TrimSpace(d.City),
		State:      strings.TrimSpace(d.State),
		PostalCode: strings.TrimSpace(d.PostalCode),
	}
}
