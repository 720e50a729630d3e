package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/bazar-universal-api/internal/health"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/handler"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/middleware"
	"github.com/sandeepkv93/bazar-universal-api/internal/http/response"
)

const (
	defaultAPIPrefix      = "/api/v1"
	defaultBodyLimitBytes = 1 << 20
)

type Dependencies struct {
	ProductHandler *handler.ProductHandler
	SaleHandler    *handler.SaleHandler
	CORSOrigins    []string
	BodyLimitBytes int64
	APIPrefix      string
	ProjectName    string
	Version        string
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimitBytes
	}
	r.Use(middleware.BodyLimit(bodyLimit))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Not Found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed", nil)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{
			"name":    dep.ProjectName,
			"version": dep.Version,
			"api":     apiPrefix(dep.APIPrefix),
		})
	})
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		detail := "dependencies are not ready"
		if failing := health.UnreadySummary(results); failing != "" {
			detail += ": " + failing
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", detail, map[string]any{"checks": results})
	})

	r.Route(apiPrefix(dep.APIPrefix), func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", dep.ProductHandler.List)
			r.Post("/", dep.ProductHandler.Create)
			// static segments are matched before the {id} parameter
			r.Get("/search", dep.ProductHandler.Search)
			r.Get("/category/{category}", dep.ProductHandler.ListByCategory)
			r.Get("/{id}", dep.ProductHandler.GetByID)
			r.Put("/{id}", dep.ProductHandler.Update)
			r.Delete("/{id}", dep.ProductHandler.Delete)
			r.Get("/{id}/sales", dep.SaleHandler.ListByProduct)
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", dep.SaleHandler.List)
			r.Post("/", dep.SaleHandler.Create)
			r.Get("/stats", dep.SaleHandler.Stats)
			r.Get("/{id}", dep.SaleHandler.GetByID)
			r.Delete("/{id}", dep.SaleHandler.Delete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

func apiPrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return defaultAPIPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
