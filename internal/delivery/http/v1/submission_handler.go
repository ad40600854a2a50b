package v1

import (
	"errors"
	"net/http"

	"checkout-relay-backend/internal/delivery/http/response"
	"checkout-relay-backend/internal/domain"
	"checkout-relay-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionUC domain.SubmissionUsecase
}

// NewSubmissionHandler registers the relay route (public, no auth required)
func NewSubmissionHandler(public *gin.RouterGroup, submissionUC domain.SubmissionUsecase) {
	handler := &SubmissionHandler{
		submissionUC: submissionUC,
	}

	public.POST("", handler.Submit)
}

// Submit godoc
// @Summary      Relay Form Submission
// @Description  Forwards a sanitized copy of any form POST to the configured Telegram chat. Sensitive fields are dropped.
// @Tags         submissions
// @Accept       x-www-form-urlencoded,mpfd
// @Produce      json,html
// @Router       /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	fields, err := readFieldMap(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sub := &domain.Submission{
		Fields: fields,
		Meta: domain.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
		},
	}

	outcome, err := h.submissionUC.Relay(c.Request.Context(), sub)
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		_ = c.Error(apperror.ServiceUnavailable("Configure TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.", err))
		return
	case errors.Is(err, domain.ErrDispatchFailed):
		response.Error(c, http.StatusBadGateway, "Failed to send to Telegram.", gin.H{"error": outcome.Error})
		return
	case err != nil:
		_ = c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Sent to Telegram.", gin.H{"chunks": outcome.Chunks})
}
