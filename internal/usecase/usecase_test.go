package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"checkout-relay-backend/internal/domain"
	"checkout-relay-backend/internal/usecase"
	"checkout-relay-backend/pkg/telegram"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// Mock Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockDispatcher) SendChunks(ctx context.Context, chunks []string) (int, error) {
	args := m.Called(ctx, chunks)
	return args.Int(0), args.Error(1)
}

// fakeForm is an in-memory checkout host
type fakeForm struct {
	values map[string]string
	errors map[string]string
}

func newFakeForm(values map[string]string) *fakeForm {
	return &fakeForm{values: values, errors: map[string]string{}}
}

func (f *fakeForm) FieldValue(name string) string { return f.values[name] }
func (f *fakeForm) SetFieldError(name, message string) {
	f.errors[name] = message
}

func validCheckout() map[string]string {
	return map[string]string{
		"name":          "Jane Doe",
		"email":         "jane@example.com",
		"card-number":   "4111 1111 1111 1111",
		"expiry-month":  "10",
		"expiry-year":   "26",
		"cvv":           "123",
		"address-line1": "1 Main St",
		"city":          "Springfield",
		"state":         "IL",
		"zip":           "62701",
		"country":       "US",
		"amount":        "10.00",
	}
}

func TestCheckoutValidate(t *testing.T) {
	uc := usecase.NewCheckoutUsecase(validator.New(), clock)

	t.Run("Should pass a complete form and clear every error", func(t *testing.T) {
		form := newFakeForm(validCheckout())
		result := uc.Validate(context.Background(), form)

		assert.True(t, result.OK)
		assert.Len(t, form.errors, len(domain.MandatoryCheckoutFields))
		for _, name := range domain.MandatoryCheckoutFields {
			assert.Empty(t, result.Errors[name], name)
			assert.Empty(t, form.errors[name], name)
		}
		_, touched := form.errors["address-line2"]
		assert.False(t, touched)
	})

	t.Run("Should cite only city when city is missing", func(t *testing.T) {
		values := validCheckout()
		values["city"] = "   "
		form := newFakeForm(values)

		result := uc.Validate(context.Background(), form)
		assert.False(t, result.OK)
		assert.Equal(t, "City is required.", result.Errors["city"])
		assert.Equal(t, "City is required.", form.errors["city"])
		for _, name := range domain.MandatoryCheckoutFields {
			if name != "city" {
				assert.Empty(t, result.Errors[name], name)
			}
		}
	})

	t.Run("Should report every invalid field at once", func(t *testing.T) {
		form := newFakeForm(map[string]string{"amount": "0.49", "card-number": "4111111111111112"})
		result := uc.Validate(context.Background(), form)

		assert.False(t, result.OK)
		assert.Equal(t, map[string]string{
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
		}, result.Errors)
	})

	t.Run("Should fail both expiry fields together", func(t *testing.T) {
		values := validCheckout()
		values["expiry-month"] = "09"
		form := newFakeForm(values)

		result := uc.Validate(context.Background(), form)
		assert.False(t, result.OK)
		assert.Equal(t, "Check month.", result.Errors["expiry-month"])
		assert.Equal(t, "Check year.", result.Errors["expiry-year"])
	})
}

func TestCheckout_PaymentIntent(t *testing.T) {
	uc := usecase.NewCheckoutUsecase(validator.New(), clock)

	t.Run("Should build a placeholder intent without card data", func(t *testing.T) {
		form := newFakeForm(validCheckout())
		result, intent := uc.Checkout(context.Background(), form)

		require.True(t, result.OK)
		require.NotNil(t, intent)
		assert.True(t, strings.HasPrefix(intent.Token, "tok_1791970200000_"), intent.Token)
		assert.Equal(t, 10.0, intent.Amount)
		assert.Equal(t, "USD", intent.Currency)
		assert.Equal(t, "jane@example.com", intent.Email)
		assert.Equal(t, "Jane Doe", intent.Billing.Name)
		assert.Nil(t, intent.Billing.AddressLine2)
	})

	t.Run("Should not build an intent for an invalid form", func(t *testing.T) {
		values := validCheckout()
		values["cvv"] = "12"
		result, intent := uc.Checkout(context.Background(), newFakeForm(values))
		assert.False(t, result.OK)
		assert.Nil(t, intent)
	})

	t.Run("Should keep the optional second address line", func(t *testing.T) {
		values := validCheckout()
		values["address-line2"] = "Apt 4"
		_, intent := uc.Checkout(context.Background(), newFakeForm(values))
		require.NotNil(t, intent)
		require.NotNil(t, intent.Billing.AddressLine2)
		assert.Equal(t, "Apt 4", *intent.Billing.AddressLine2)
	})

	assert.Equal(t, "4111 1111 1111 1111", uc.FormatCardNumber("4111111111111111"))
}

func newRelay(t *testing.T, d domain.Dispatcher, maxLen int) domain.SubmissionUsecase {
	t.Helper()
	uc, err := usecase.NewSubmissionUsecase(usecase.SubmissionConfig{
		TitlePrefix: "Shop",
		BlockFields: []string{"card-number", "cvv", "expiry-month", "expiry-year"},
		MaxChunkLen: maxLen,
	}, d, clock)
	require.NoError(t, err)
	return uc
}

func submissionOf(pairs ...string) *domain.Submission {
	sub := &domain.Submission{Meta: domain.RequestMeta{IP: "203.0.113.7", UserAgent: "curl/8 <x>", Referrer: "https://shop.example/pay?a=1&b=2"}}
	for i := 0; i+1 < len(pairs); i += 2 {
		sub.Fields.Add(pairs[i], pairs[i+1])
	}
	return sub
}

func TestNewSubmissionUsecase_RequiresBlockList(t *testing.T) {
	_, err := usecase.NewSubmissionUsecase(usecase.SubmissionConfig{BlockFields: []string{" "}}, new(MockDispatcher), clock)
	assert.Error(t, err)

	_, err = usecase.NewSubmissionUsecase(usecase.SubmissionConfig{BlockFields: []string{"cvv"}}, nil, clock)
	assert.Error(t, err)
}

func TestRelay(t *testing.T) {
	t.Run("Should refuse to dispatch when not configured", func(t *testing.T) {
		d := new(MockDispatcher)
		d.On("Configured").Return(false)

		outcome, err := newRelay(t, d, 0).Relay(context.Background(), submissionOf("name", "x"))
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
		d.AssertNotCalled(t, "SendChunks", mock.Anything, mock.Anything)
	})

	t.Run("Should send one chunk with sensitive fields dropped", func(t *testing.T) {
		d := new(MockDispatcher)
		d.On("Configured").Return(true)
		var sent []string
		d.On("SendChunks", mock.Anything, mock.Anything).Return(1, nil).Run(func(args mock.Arguments) {
			sent = args.Get(1).([]string)
		})

		sub := submissionOf(
			"name", "  Jane <script>alert(1)</script> ",
			"card-number", "4111111111111111",
			"CVV", "123",
			"amount", "10.00",
			"tags[]", "a&b",
			"tags[]", "c",
			"<weird>key!", "v",
		)
		outcome, err := newRelay(t, d, 0).Relay(context.Background(), sub)
		require.NoError(t, err)
		assert.True(t, outcome.OK)
		assert.Equal(t, 1, outcome.Chunks)
		assert.Equal(t, 1, outcome.Delivered)

		require.Len(t, sent, 1)
		want := strings.Join([]string{
			"<b>Shop - New Submission</b>",
			"",
			"<b>Meta</b>",
			"<b>Time:</b> 2026-10-14 09:30:00 UTC",
			"<b>IP:</b> 203.0.113.7",
			"<b>User-Agent:</b> curl/8 &lt;x&gt;",
			"<b>Referrer:</b> https://shop.example/pay?a=1&amp;b=2",
			"",
			"<b>Fields</b>",
			"(Note: Sensitive payment fields were omitted.)",
			"<b>name:</b> Jane",
			"<b>amount:</b> 10.00",
			"<b>tags:</b> a&amp;b, c",
			"<b>weirdkey:</b> v",
		}, "\n")
		assert.Equal(t, want, sent[0])
		assert.NotContains(t, sent[0], "4111")
		assert.NotContains(t, sent[0], "script")
	})

	t.Run("Should note an empty submission", func(t *testing.T) {
		d := new(MockDispatcher)
		d.On("Configured").Return(true)
		var sent []string
		d.On("SendChunks", mock.Anything, mock.Anything).Return(1, nil).Run(func(args mock.Arguments) {
			sent = args.Get(1).([]string)
		})

		_, err := newRelay(t, d, 0).Relay(context.Background(), submissionOf())
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.True(t, strings.HasSuffix(sent[0], "<b>Fields</b>\n(No fields submitted.)"))
		assert.NotContains(t, sent[0], "Sensitive")
	})

	t.Run("Should block keys that only match after filtering", func(t *testing.T) {
		d := new(MockDispatcher)
		d.On("Configured").Return(true)
		var sent []string
		d.On("SendChunks", mock.Anything, mock.Anything).Return(1, nil).Run(func(args mock.Arguments) {
			sent = args.Get(1).([]string)
		})

		_, err := newRelay(t, d, 0).Relay(context.Background(), submissionOf("card-number<>", "4111111111111111"))
		require.NoError(t, err)
		assert.NotContains(t, sent[0], "4111")
		assert.Contains(t, sent[0], "(No fields submitted.)")
		assert.Contains(t, sent[0], "(Note: Sensitive payment fields were omitted.)")
	})

	t.Run("Should block array-style sensitive keys", func(t *testing.T) {
		for _, key := range []string{"card-number[0]", "cvv[x]", "card-number[]", "expiry-month[a][b]"} {
			d := new(MockDispatcher)
			d.On("Configured").Return(true)
			var sent []string
			d.On("SendChunks", mock.Anything, mock.Anything).Return(1, nil).Run(func(args mock.Arguments) {
				sent = args.Get(1).([]string)
			})

			_, err := newRelay(t, d, 0).Relay(context.Background(), submissionOf(key, "4111111111111111", "name", "Jane"))
			require.NoError(t, err, key)
			require.Len(t, sent, 1, key)
			assert.NotContains(t, sent[0], "4111", key)
			assert.Contains(t, sent[0], "(Note: Sensitive payment fields were omitted.)", key)
			assert.True(t, strings.HasSuffix(sent[0], "<b>Fields</b>\n(Note: Sensitive payment fields were omitted.)\n<b>name:</b> Jane"), key)
		}
	})

	t.Run("Should replace invalid UTF-8 before chunking", func(t *testing.T) {
		d := new(MockDispatcher)
		d.On("Configured").Return(true)
		var sent []string
		d.On("SendChunks", mock.Anything, mock.Anything).Return(1, nil).Run(func(args mock.Arguments) {
			sent = args.Get(1).([]string)
		})

		sub := submissionOf("notes", "ok\xff\xfe")
		sub.Meta.UserAgent = strings.Repeat("\x80", 8001)
		outcome, err := newRelay(t, d, 0).Relay(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Chunks)
		require.Len(t, sent, 1)
		assert.True(t, utf8.ValidString(sent[0]))
		assert.Contains(t, sent[0], "<b>User-Agent:</b> \uFFFD")
	})

	t.Run("Should split long submissions and report the first failure", func(t *testing.T) {
		d := new(MockDispatcher)
		d.On("Configured").Return(true)
		var sent []string
		d.On("SendChunks", mock.Anything, mock.Anything).Return(1, &telegram.APIError{Description: "Bad Request: message is too long"}).Run(func(args mock.Arguments) {
			sent = args.Get(1).([]string)
		})

		sub := submissionOf("notes", strings.Repeat("line\n", 200))
		outcome, err := newRelay(t, d, 200).Relay(context.Background(), sub)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDispatchFailed))
		assert.False(t, outcome.OK)
		assert.Equal(t, 1, outcome.Delivered)
		assert.Equal(t, len(sent), outcome.Chunks)
		assert.Greater(t, outcome.Chunks, 1)
		assert.Equal(t, "Bad Request: message is too long", outcome.Error)
		for _, c := range sent {
			assert.LessOrEqual(t, len(c), 200)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Configured").Return(true)

	status := usecase.NewHealthUsecase(d, nil).Check(context.Background())
	assert.Equal(t, "configured", status["relay"])
	assert.Equal(t, "memory", status["store"])

	status = usecase.NewHealthUsecase(d, func(context.Context) error { return errors.New("down") }).Check(context.Background())
	assert.Equal(t, "redis_unavailable", status["store"])
}
