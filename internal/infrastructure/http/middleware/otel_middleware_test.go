package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPRouteContext_ResolvesAfterRouting(t *testing.T) {
	var before, inside string

	r := chi.NewRouter()
	r.Use(HTTPRouteContext())
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			before = telemetry.HTTPRouteFromContext(req.Context())
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			inside = telemetry.HTTPRouteFromContext(req.Context())
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/3f1c1a52-8d7e-4e1f-9a55-0c1f0f6b2a10", nil))

	assert.Empty(t, before)
	assert.Equal(t, "/products/{id}", inside)
}

func TestRouteLabeler_AddsTemplateAfterRouting(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RouteLabeler())
	r.Get("/products/{id}", func(w http.ResponseWriter, req *http.Request) {})

	tests := []struct {
		target string
		want   string
	}{
		{"/products/3f1c1a52-8d7e-4e1f-9a55-0c1f0f6b2a10", "/products/{id}"},
		{"/elsewhere/42", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			labeler := &otelhttp.Labeler{}
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req = req.WithContext(otelhttp.ContextWithLabeler(req.Context(), labeler))

			r.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, []attribute.KeyValue{attribute.String("http.route", tt.want)}, labeler.Get())
		})
	}
}

func TestRoutePattern_WithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	assert.Equal(t, unmatchedRoute, RoutePattern(req))
}
