package v1

import (
	"net/http"

	"checkout-relay-backend/internal/delivery/http/response"
	"checkout-relay-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutUC domain.CheckoutUsecase
}

// NewCheckoutHandler registers the checkout routes (public, no auth required)
func NewCheckoutHandler(public *gin.RouterGroup, checkoutUC domain.CheckoutUsecase) {
	handler := &CheckoutHandler{
		checkoutUC: checkoutUC,
	}

	public.POST("/validate", handler.Validate)
	public.POST("/format-card", handler.FormatCard)
}

// Validate godoc
// @Summary      Validate Checkout Form
// @Description  Runs every checkout field rule. On success returns a placeholder payment token; no payment is made.
// @Tags         checkout
// @Accept       x-www-form-urlencoded,mpfd
// @Produce      json,html
// @Success      200  {object}  domain.PaymentIntent
// @Failure      422  {object}  domain.ValidationResult
// @Router       /checkout/validate [post]
func (h *CheckoutHandler) Validate(c *gin.Context) {
	fields, err := readFieldMap(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	form := newPostedCheckoutForm(fields)
	result, intent := h.checkoutUC.Checkout(c.Request.Context(), form)
	if !result.OK {
		response.Error(c, http.StatusUnprocessableEntity, "Please fix the errors and try again.", gin.H{"errors": form.errors})
		return
	}

	response.Success(c, http.StatusOK, "Validated. Ready to send a payment token.", gin.H{"payment": intent})
}

// FormatCard godoc
// @Summary      Format Card Number
// @Description  Groups the digits of card-number in blocks of four for display.
// @Tags         checkout
// @Router       /checkout/format-card [post]
func (h *CheckoutHandler) FormatCard(c *gin.Context) {
	fields, err := readFieldMap(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	formatted := h.checkoutUC.FormatCardNumber(fields.Get(domain.FieldCardNumber))
	response.Success(c, http.StatusOK, formatted, gin.H{"formatted": formatted})
}
