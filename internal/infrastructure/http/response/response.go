package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
)

// JSend statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Error codes carried in fail and error envelopes.
const (
	CodeInvalidProductData = 4001
	CodeProductOperation   = 4002
	CodeInvalidPrice       = 4003
	CodeInvalidQuantity    = 4004
	CodeInvalidCurrency    = 4005
	CodeNotFound           = 4041
	CodeMethodNotAllowed   = 4051
	CodeConflict           = 4091
	CodeInternal           = 5001
)

const internalErrorMessage = "Internal server error occurred."

// SuccessResponse wraps successful payloads.
type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// FailResponse is returned for client errors (4xx).
type FailResponse struct {
	Status string   `json:"status"`
	Data   FailData `json:"data"`
}

type FailData struct {
	Message    string       `json:"message"`
	Code       int          `json:"code"`
	StatusCode int          `json:"statusCode"`
	Path       string       `json:"path"`
	Timestamp  time.Time    `json:"timestamp"`
	Errors     []FieldError `json:"errors,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is returned for server errors (5xx).
type ErrorResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Data    ErrorData `json:"data"`
}

type ErrorData struct {
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success wraps data in a success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Status: StatusSuccess, Data: data})
}

// Fail sends a client error envelope.
func Fail(w http.ResponseWriter, r *http.Request, status, code int, message string, fields ...FieldError) {
	JSON(w, status, FailResponse{
		Status: StatusFail,
		Data: FailData{
			Message:    message,
			Code:       code,
			StatusCode: status,
			Path:       r.URL.Path,
			Timestamp:  time.Now().UTC(),
			Errors:     fields,
		},
	})
}

// Error maps err onto a fail envelope when it is a known business error and
// onto an opaque error envelope otherwise.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Classify(err)
	if status < http.StatusInternalServerError {
		Fail(w, r, status, code, err.Error())
		return
	}

	JSON(w, status, ErrorResponse{
		Status:  StatusError,
		Message: internalErrorMessage,
		Code:    code,
		Data: ErrorData{
			Path:      r.URL.Path,
			Method:    r.Method,
			Timestamp: time.Now().UTC(),
		},
	})
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (status int, code int) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrProductAlreadyExists):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrInvalidProductData):
		return http.StatusBadRequest, CodeInvalidProductData
	case errors.Is(err, domain.ErrProductOperationFailed):
		return http.StatusBadRequest, CodeProductOperation
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidPriceFormat):
		return http.StatusBadRequest, CodeInvalidPrice
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, CodeInvalidQuantity
	case errors.Is(err, domain.ErrUnsupportedCurrency), errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest, CodeInvalidCurrency
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
