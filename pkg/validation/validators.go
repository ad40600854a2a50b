package validation

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Shape check only: something@something.something, no whitespace, a single @
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Custom tags registered by RegisterValidators
const (
	TagCardNumber = "card_number"
	TagCVV        = "card_cvv"
	TagLooseEmail = "loose_email"
	TagMinAmount  = "min_amount"
	TagExpiry     = "card_expiry"
)

// RegisterValidators registers custom validators to the validator instance
// and makes field errors report the `form` tag name (e.g. "card-number").
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(formTagName)
	_ = v.RegisterValidation(TagCardNumber, CardNumber)
	_ = v.RegisterValidation(TagCVV, CVV)
	_ = v.RegisterValidation(TagLooseEmail, LooseEmail)
	_ = v.RegisterValidation(TagMinAmount, MinAmount)
}

func formTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ValidEmail is a permissive syntactic check, not a deliverability check
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ParseAmount parses a decimal amount, rejecting NaN and infinities
func ParseAmount(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CardNumber validates a card number with the Luhn checksum
func CardNumber(fl validator.FieldLevel) bool {
	return ValidCardNumber(fl.Field().String())
}

// CVV validates a 3 or 4 digit security code
func CVV(fl validator.FieldLevel) bool {
	return ValidCVV(fl.Field().String())
}

// LooseEmail validates the email shape
func LooseEmail(fl validator.FieldLevel) bool {
	return ValidEmail(fl.Field().String())
}

// MinAmount validates that a string field holds a finite number no lower
// than the tag parameter, e.g. `min_amount=0.50`
func MinAmount(fl validator.FieldLevel) bool {
	min, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		return false
	}
	amount, ok := ParseAmount(fl.Field().String())
	return ok && amount >= min
}
