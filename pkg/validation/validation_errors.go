package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldMessages maps checkout field names to the message shown next to the input.
// One message per field regardless of which rule failed.
var FieldMessages = map[string]string{
	"name":          "Name is required.",
	"email":         "Enter a valid email.",
	"card-number":   "Invalid card number.",
	"expiry-month":  "Check month.",
	"expiry-year":   "Check year.",
	"cvv":           "CVV must be 3 or 4 digits.",
	"address-line1": "Address line 1 is required.",
	"city":          "City is required.",
	"state":         "State/Province is required.",
	"zip":           "ZIP/Postal code is required.",
	"country":       "Country is required.",
	"amount":        "Enter an amount >= 0.50.",
}

// FormatValidationErrors converts validator.ValidationErrors to a field -> message map.
// A non-validation error is returned as-is.
func FormatValidationErrors(err error) (map[string]string, error) {
	messages := make(map[string]string)
	if err == nil {
		return messages, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	for _, e := range validationErrors {
		field := e.Field()
		if _, seen := messages[field]; seen {
			continue
		}
		messages[field] = formatSingleError(e)
	}
	return messages, nil
}

func formatSingleError(e validator.FieldError) string {
	if msg, ok := FieldMessages[e.Field()]; ok {
		return msg
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", e.Field())
	default:
		return fmt.Sprintf("%s is invalid.", e.Field())
	}
}
