package domain

import "context"

// Checkout form field names
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldCardNumber   = "card-number"
	FieldExpiryMonth  = "expiry-month"
	FieldExpiryYear   = "expiry-year"
	FieldCVV          = "cvv"
	FieldAddressLine1 = "address-line1"
	FieldAddressLine2 = "address-line2"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZip          = "zip"
	FieldCountry      = "country"
	FieldAmount       = "amount"
)

// MandatoryCheckoutFields lists every validated field in display order.
// address-line2 is optional and never validated.
var MandatoryCheckoutFields = []string{
	FieldName,
	FieldEmail,
	FieldCardNumber,
	FieldExpiryMonth,
	FieldExpiryYear,
	FieldCVV,
	FieldAddressLine1,
	FieldCity,
	FieldState,
	FieldZip,
	FieldCountry,
	FieldAmount,
}

// CheckoutForm is the host the validator reads from and reports into.
// FieldValue returns the trimmed value; SetFieldError with "" clears the error.
type CheckoutForm interface {
	FieldValue(name string) string
	SetFieldError(name, message string)
}

// ValidationResult holds one message per mandatory field ("" = valid).
// OK is true iff every message is empty.
type ValidationResult struct {
	OK     bool              `json:"ok"`
	Errors map[string]string `json:"errors"`
}

// BillingDetails is the billing block of a payment request
type BillingDetails struct {
	Name         string  `json:"name"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
}

// PaymentIntent is the payload a real gateway integration would receive.
// Token is a placeholder; raw card fields are never included.
type PaymentIntent struct {
	Token    string         `json:"token"`
	Amount   float64        `json:"amount"`
	Currency string         `json:"currency"`
	Email    string         `json:"email"`
	Billing  BillingDetails `json:"billing"`
}

// CheckoutUsecase validates checkout forms
type CheckoutUsecase interface {
	// Validate runs every field rule and reports each field to the form
	Validate(ctx context.Context, form CheckoutForm) ValidationResult
	// Checkout validates and, on success, builds a placeholder payment intent
	Checkout(ctx context.Context, form CheckoutForm) (ValidationResult, *PaymentIntent)
	// FormatCardNumber groups card digits for display
	FormatCardNumber(value string) string
}
