package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/popeskul/wa-inbox/internal/api"
	"github.com/popeskul/wa-inbox/internal/handler"
)

const apiBaseURL = "/api/v1"

func setupRouter(h api.ServerInterface, middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.Handle("/metrics", promhttp.Handler())

	// Serve OpenAPI spec
	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "api/openapi.yaml")
	})

	// Mount API routes
	api.HandlerWithOptions(h, api.ChiServerOptions{
		BaseURL:          apiBaseURL,
		BaseRouter:       r,
		ErrorHandlerFunc: handler.ParamErrorHandler,
	})

	return r
}
