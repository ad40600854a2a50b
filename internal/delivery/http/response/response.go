package response

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const htmlPage = "<!doctype html><meta charset='utf-8'><title>Telegram Submission</title><p>%s</p>"

// WantsJSON reports a caller that asked for JSON, either through Accept or
// by marking the request as scripted (X-Requested-With: XMLHttpRequest).
func WantsJSON(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get("Accept"))
	xhr := r.Header.Get("X-Requested-With")
	return strings.Contains(accept, "application/json") || strings.EqualFold(xhr, "XMLHttpRequest")
}

// Respond writes {"ok", "message", ...extra} as JSON or a minimal escaped
// HTML page, then aborts the handler chain. extra cannot override ok or message.
func Respond(c *gin.Context, code int, ok bool, message string, extra gin.H) {
	if WantsJSON(c.Request) {
		body := make(gin.H, len(extra)+2)
		for k, v := range extra {
			body[k] = v
		}
		body["ok"] = ok
		body["message"] = message
		c.JSON(code, body)
	} else {
		c.Data(code, "text/html; charset=utf-8", []byte(fmt.Sprintf(htmlPage, html.EscapeString(message))))
	}
	c.Abort()
}

// Success sends an ok=true response
func Success(c *gin.Context, code int, message string, extra gin.H) {
	Respond(c, code, true, message, extra)
}

// Error sends an ok=false response
func Error(c *gin.Context, code int, message string, extra gin.H) {
	Respond(c, code, false, message, extra)
}
