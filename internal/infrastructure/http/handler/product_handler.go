package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/request"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/response"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// Routes mounts the product endpoints on r.
func (h *ProductHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateProduct)
	r.Get("/", h.ListProducts)
	r.Get("/{id}", h.GetProduct)
	r.Patch("/{id}", h.UpdateProduct)
	r.Delete("/{id}", h.DeleteProduct)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		h.error(w, r, err)
		return
	}

	response.Success(w, http.StatusCreated, dto.ToProductResponse(product))
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.FindProductByID(r.Context(), id)
	if err != nil {
		h.error(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, dto.ToProductResponse(product))
}

// ListProducts handles GET /products with optional filters:
// search, name, category, minPrice, maxPrice, active, inStock.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, fields := parseListQuery(r)
	if len(fields) > 0 {
		response.Fail(w, r, http.StatusBadRequest, response.CodeInvalidProductData, "Invalid query parameters", fields...)
		return
	}

	products, err := h.service.ListProducts(r.Context(), query)
	if err != nil {
		h.error(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, dto.ToProductResponseList(products))
}

// UpdateProduct handles PATCH /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		h.error(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, dto.ToProductResponse(product))
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := request.DecodeAndValidate(w, r, v)
	if err == nil {
		return true
	}

	h.logger.WarnContext(r.Context(), "Rejected request body",
		slog.String("error", err.Error()),
	)

	if errors.Is(err, request.ErrMalformedBody) {
		response.Fail(w, r, http.StatusBadRequest, response.CodeInvalidProductData, err.Error())
		return false
	}
	response.Fail(w, r, http.StatusBadRequest, response.CodeInvalidProductData, "Validation failed",
		request.FormatValidationErrors(err)...)
	return false
}

func (h *ProductHandler) error(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := response.Classify(err); status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Internal server error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	response.Error(w, r, err)
}

func parseListQuery(r *http.Request) (dto.ListProductsQuery, []response.FieldError) {
	values := r.URL.Query()
	q := dto.ListProductsQuery{
		Search:   values.Get("search"),
		Name:     values.Get("name"),
		Category: values.Get("category"),
	}

	var fields []response.FieldError
	parseFloat := func(key string) *float64 {
		raw := values.Get(key)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields = append(fields, response.FieldError{Field: key, Message: "Must be a number"})
			return nil
		}
		return &v
	}
	parseBool := func(key string) bool {
		raw := values.Get(key)
		if raw == "" {
			return false
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, response.FieldError{Field: key, Message: "Must be a boolean"})
		}
		return v
	}

	q.MinPrice = parseFloat("minPrice")
	q.MaxPrice = parseFloat("maxPrice")
	q.Active = parseBool("active")
	q.InStock = parseBool("inStock")

	return q, fields
}
