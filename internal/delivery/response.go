package delivery

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Status: "error", Message: message})
}

// OKResponse writes {"status":"ok"} plus any extra fields.
func OKResponse(c *gin.Context, fields gin.H) {
	body := gin.H{"status": "ok"}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// detail returns what follows the sentinel's own text, e.g.
// "validation error: All fields are required." -> "All fields are required."
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

func clientMessage(err error, statusCode int, resource string) string {
	switch statusCode {
	case http.StatusBadRequest:
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			return "Invalid status"
		case errors.Is(err, domain.ErrProductNotFound):
			return "Product not found: " + detail(err, domain.ErrProductNotFound)
		default:
			return detail(err, domain.ErrValidation)
		}
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusNotFound:
		return resource + " not found"
	case http.StatusTooManyRequests:
		return "Slow down, too many requests."
	default:
		return "Internal server error"
	}
}

// respondError logs the full error and sends the client a message that never
// carries storage details.
func respondError(c *gin.Context, log *logrus.Logger, err error, action, resource string) {
	statusCode := mapErrorToStatus(err)
	if statusCode >= http.StatusInternalServerError {
		log.Errorf("Handler: %s failed: %v", action, err)
	} else {
		log.Warnf("Handler: %s rejected (%d): %v", action, statusCode, err)
	}
	ErrorResponse(c, statusCode, clientMessage(err, statusCode, resource))
}

// bindingMessage turns a binding failure into a short client message.
func bindingMessage(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		switch vErr.Tag() {
		case "required":
			return vErr.Field() + " value missing"
		case "min", "gte":
			return vErr.Field() + " value is less than " + vErr.Param()
		case "max", "lte":
			return vErr.Field() + " value is more than " + vErr.Param()
		case "url":
			return vErr.Field() + " must be a URL"
		default:
			return vErr.Field() + " is invalid"
		}
	}
	return "Invalid request body"
}
