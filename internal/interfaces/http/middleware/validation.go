package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RequestIDKey is the context key and header for the request ID
const RequestIDKey = "X-Request-ID"

// SetupValidator makes validation errors report json or form field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors formats a binding error into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, bindingMessage(err), requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: getValidationMessage(e),
		})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 response for a binding error
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestIDFromContext(c)))
}

func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

func bindingMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return "Request body is not valid JSON"
	case errors.As(err, &typeErr):
		return "Field " + typeErr.Field + " has the wrong type"
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	default:
		return "Invalid request: " + err.Error()
	}
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " items"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "url", "http_url":
		return "Invalid URL format"
	case "gt":
		return "Must be greater than " + e.Param()
	default:
		return "Invalid value"
	}
}
