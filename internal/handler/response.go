package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocrsvc/internal/domain"
)

// APIResponse is the envelope for non-OCR responses (engine info, request-level errors).
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var (
		decodeErr    *domain.DecodeError
		inferenceErr *domain.InferenceError
		initErr      *domain.InitializationError
		maxBytesErr  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return http.StatusBadRequest, "MISSING_INPUT", err.Error()
	case errors.Is(err, domain.ErrAmbiguousInput):
		return http.StatusBadRequest, "AMBIGUOUS_INPUT", err.Error()
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, "DECODE_FAILED", err.Error()
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body exceeds maximum allowed size"
	case errors.As(err, &inferenceErr):
		return http.StatusBadGateway, "INFERENCE_FAILED", err.Error()
	case errors.As(err, &initErr):
		return http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", requestID(c), err)
	}
	RespondError(c, status, code, msg)
}

// StatusFor returns the HTTP status for an OCR response. Success and degraded
// responses are 200; error responses follow MapDomainError.
func StatusFor(resp domain.OCRResponse) int {
	if resp.Status != domain.StatusError {
		return http.StatusOK
	}
	if resp.Err == nil {
		return http.StatusInternalServerError
	}
	status, _, _ := MapDomainError(resp.Err)
	return status
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
