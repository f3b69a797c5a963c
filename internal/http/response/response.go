package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Success writes the portal envelope {"success": true, ...fields}.
func Success(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// Failure writes {"success": false, "message": message}.
func Failure(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// Status maps err to an HTTP status and a caller-safe message. Errors that
// carry no apierr mapping become 500 with fallback.
func Status(err error, fallback string) (int, string) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		if ae.Err != nil {
			return ae.Status, ae.Err.Error()
		}
		return ae.Status, fallback
	}
	return http.StatusInternalServerError, fallback
}

// FailWith writes the portal failure envelope for err.
func FailWith(c *gin.Context, err error, fallback string) {
	status, msg := Status(err, fallback)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Failure(c, status, msg)
}
