package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   int
	}{
		{domain.ErrProductNotFound, http.StatusNotFound, CodeNotFound},
		{fmt.Errorf("%w: sku X", domain.ErrProductAlreadyExists), http.StatusConflict, CodeConflict},
		{domain.ErrInvalidProductData, http.StatusBadRequest, CodeInvalidProductData},
		{domain.ErrProductOperationFailed, http.StatusBadRequest, CodeProductOperation},
		{domain.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidPrice},
		{domain.ErrInvalidPriceFormat, http.StatusBadRequest, CodeInvalidPrice},
		{domain.ErrInvalidQuantity, http.StatusBadRequest, CodeInvalidQuantity},
		{domain.ErrInsufficientStock, http.StatusBadRequest, CodeInvalidQuantity},
		{domain.ErrUnsupportedCurrency, http.StatusBadRequest, CodeInvalidCurrency},
		{domain.ErrCurrencyMismatch, http.StatusBadRequest, CodeInvalidCurrency},
		{errors.New("connection reset"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := Classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestError_ClientErrorIsFail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil)

	Error(rec, req, fmt.Errorf("%w: no product 42", domain.ErrProductNotFound))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body FailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusFail, body.Status)
	assert.Equal(t, CodeNotFound, body.Data.Code)
	assert.Equal(t, http.StatusNotFound, body.Data.StatusCode)
	assert.Equal(t, "/api/v1/products/42", body.Data.Path)
	assert.Contains(t, body.Data.Message, "no product 42")
	assert.False(t, body.Data.Timestamp.IsZero())
}

func TestError_ServerErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)

	Error(rec, req, errors.New("mongodb: socket closed"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "socket closed")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusError, body.Status)
	assert.Equal(t, "Internal server error occurred.", body.Message)
	assert.Equal(t, CodeInternal, body.Code)
	assert.Equal(t, http.MethodPost, body.Data.Method)
	assert.Equal(t, "/api/v1/products", body.Data.Path)
}

func TestFail_OmitsEmptyErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusBadRequest, CodeInvalidProductData, "bad")
	assert.NotContains(t, rec.Body.String(), `"errors"`)

	rec = httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusBadRequest, CodeInvalidProductData, "bad",
		FieldError{Field: "name", Message: "This field is required"})
	assert.Contains(t, rec.Body.String(), `"errors":[{"field":"name","message":"This field is required"}]`)
}
