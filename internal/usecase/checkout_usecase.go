package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"checkout-relay-backend/internal/domain"
	"checkout-relay-backend/pkg/logger"
	"checkout-relay-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// checkoutFields mirrors the checkout form; tags name each field by its form key
type checkoutFields struct {
	Name         string `form:"name" validate:"required"`
	Email        string `form:"email" validate:"loose_email"`
	CardNumber   string `form:"card-number" validate:"card_number"`
	ExpiryMonth  string `form:"expiry-month"`
	ExpiryYear   string `form:"expiry-year"`
	CVV          string `form:"cvv" validate:"card_cvv"`
	AddressLine1 string `form:"address-line1" validate:"required"`
	AddressLine2 string `form:"address-line2"`
	City         string `form:"city" validate:"required"`
	State        string `form:"state" validate:"required"`
	Zip          string `form:"zip" validate:"required"`
	Country      string `form:"country" validate:"required"`
	Amount       string `form:"amount" validate:"min_amount=0.50"`
}

type checkoutUsecase struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewCheckoutUsecase registers the card rules on validate. now is the clock
// used for expiry checks and token stamps; nil means time.Now.
func NewCheckoutUsecase(validate *validator.Validate, now func() time.Time) domain.CheckoutUsecase {
	if now == nil {
		now = time.Now
	}
	uc := &checkoutUsecase{
		validate: validate,
		now:      now,
	}
	validation.RegisterValidators(validate)
	validate.RegisterStructValidation(uc.expiryRule, checkoutFields{})
	return uc
}

// expiryRule validates month and year as a pair; both fields fail together
func (uc *checkoutUsecase) expiryRule(sl validator.StructLevel) {
	f := sl.Current().Interface().(checkoutFields)
	if validation.ValidExpiry(f.ExpiryMonth, f.ExpiryYear, uc.now()) {
		return
	}
	sl.ReportError(f.ExpiryMonth, domain.FieldExpiryMonth, "ExpiryMonth", validation.TagExpiry, "")
	sl.ReportError(f.ExpiryYear, domain.FieldExpiryYear, "ExpiryYear", validation.TagExpiry, "")
}

func (uc *checkoutUsecase) Validate(ctx context.Context, form domain.CheckoutForm) domain.ValidationResult {
	fields := readCheckoutFields(form)

	messages, err := validation.FormatValidationErrors(uc.validate.StructCtx(ctx, fields))
	if err != nil {
		// not a field error; fail closed on every field
		logger.Log.Error("Checkout validation could not run", "error", err)
		messages = validation.FieldMessages
	}

	result := domain.ValidationResult{OK: true, Errors: make(map[string]string, len(domain.MandatoryCheckoutFields))}
	for _, name := range domain.MandatoryCheckoutFields {
		msg := messages[name]
		result.Errors[name] = msg
		form.SetFieldError(name, msg)
		if msg != "" {
			result.OK = false
		}
	}
	return result
}

func (uc *checkoutUsecase) Checkout(ctx context.Context, form domain.CheckoutForm) (domain.ValidationResult, *domain.PaymentIntent) {
	result := uc.Validate(ctx, form)
	if !result.OK {
		return result, nil
	}

	fields := readCheckoutFields(form)
	amount, _ := validation.ParseAmount(fields.Amount)

	var line2 *string
	if fields.AddressLine2 != "" {
		line2 = &fields.AddressLine2
	}

	intent := &domain.PaymentIntent{
		Token:    uc.placeholderToken(),
		Amount:   amount,
		Currency: "USD",
		Email:    fields.Email,
		Billing: domain.BillingDetails{
			Name:         fields.Name,
			AddressLine1: fields.AddressLine1,
			AddressLine2: line2,
			City:         fields.City,
			State:        fields.State,
			Zip:          fields.Zip,
			Country:      fields.Country,
		},
	}
	return result, intent
}

func (uc *checkoutUsecase) FormatCardNumber(value string) string {
	return validation.FormatCardNumber(value)
}

// placeholderToken stands in for gateway tokenization: tok_<unix-millis>_<random>
func (uc *checkoutUsecase) placeholderToken() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("tok_%d_%s", uc.now().UnixMilli(), random)
}

func readCheckoutFields(form domain.CheckoutForm) checkoutFields {
	get := func(name string) string { return strings.TrimSpace(form.FieldValue(name)) }
	return checkoutFields{
		Name:         get(domain.FieldName),
		Email:        get(domain.FieldEmail),
		CardNumber:   get(domain.FieldCardNumber),
		ExpiryMonth:  get(domain.FieldExpiryMonth),
		ExpiryYear:   get(domain.FieldExpiryYear),
		CVV:          get(domain.FieldCVV),
		AddressLine1: get(domain.FieldAddressLine1),
		AddressLine2: get(domain.FieldAddressLine2),
		City:         get(domain.FieldCity),
		State:        get(domain.FieldState),
		Zip:          get(domain.FieldZip),
		Country:      get(domain.FieldCountry),
		Amount:       get(domain.FieldAmount),
	}
}
