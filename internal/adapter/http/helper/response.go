package helper

import (
	"errors"
	"net/http"

	. "tasklist/internal/adapter/http/validation"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendTooManyRequests(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "rate_limit",
			Message: message,
		},
	}

	SendError(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", errors, details...)
}

// SendServiceError maps task service failures onto the error envelope.
// Validation failures keep the user facing message, store failures do not
// leak their cause.
func SendServiceError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError

	if errors.As(err, &validationErr) {
		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", []response.ValidationError{
			{
				Field:   validationErr.Field,
				Message: validationErr.Message,
			},
		})
		return
	}

	var persistenceErr *domain.PersistenceError

	if errors.As(err, &persistenceErr) {
		SendError(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", []response.ValidationError{
			{
				Field:   "store",
				Message: "The task list could not be saved or loaded. Please try again.",
			},
		}, map[string]string{"operation": persistenceErr.Op})
		return
	}

	SendInternalError(c, "Unexpected error")
}
