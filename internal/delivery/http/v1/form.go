package v1

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"checkout-relay-backend/internal/domain"
	"checkout-relay-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxFormBytes caps a posted form, multipart included
const maxFormBytes = 1 << 20

// readFieldMap parses a urlencoded or multipart body keeping POST order,
// which gin's map-based binding loses. File parts are ignored.
func readFieldMap(c *gin.Context) (domain.FieldMap, error) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes)
	defer body.Close()

	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		return parseURLEncoded(body)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, apperror.BadRequest("Malformed Content-Type.")
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		return parseURLEncoded(body)
	case "multipart/form-data":
		return parseMultipart(body, params["boundary"])
	default:
		return nil, apperror.New(http.StatusUnsupportedMediaType, "Send the form as urlencoded or multipart data.", nil)
	}
}

func parseURLEncoded(body io.Reader) (domain.FieldMap, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, readError(err)
	}

	var fields domain.FieldMap
	for _, pair := range strings.Split(string(data), "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, apperror.BadRequest("Malformed form body.")
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, apperror.BadRequest("Malformed form body.")
		}
		fields.Add(key, value)
	}
	return fields, nil
}

func parseMultipart(body io.Reader, boundary string) (domain.FieldMap, error) {
	if boundary == "" {
		return nil, apperror.BadRequest("Malformed form body.")
	}

	var fields domain.FieldMap
	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return nil, readError(err)
		}

		name := part.FormName()
		if name == "" || part.FileName() != "" {
			part.Close()
			continue
		}
		value, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, readError(err)
		}
		fields.Add(name, string(value))
	}
}

func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.TooLarge("Form is too large.")
	}
	return apperror.BadRequest("Malformed form body.")
}

// postedCheckoutForm adapts a posted FieldMap to the checkout validator and
// collects the non-empty field errors it reports.
type postedCheckoutForm struct {
	fields domain.FieldMap
	errors map[string]string
}

func newPostedCheckoutForm(fields domain.FieldMap) *postedCheckoutForm {
	return &postedCheckoutForm{fields: fields, errors: map[string]string{}}
}

func (f *postedCheckoutForm) FieldValue(name string) string {
	return strings.TrimSpace(f.fields.Get(name))
}

func (f *postedCheckoutForm) SetFieldError(name, message string) {
	if message == "" {
		delete(f.errors, name)
		return
	}
	f.errors[name] = message
}
