package http

import (
	"net/http"
	"time"

	"github.com/fjod/order-widget/internal/widget"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	MaxBodySize    int64
	Cookie         CookieConfig
}

// NewRouter wires the widget API.
func NewRouter(cfg RouterConfig, registry *widget.Registry, logger *zap.Logger) http.Handler {
	widgetHandler := NewWidgetHandler(cfg.RequestTimeout, logger)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Compress(5))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	startSession := SessionMiddleware(registry, cfg.Cookie, true)
	requireSession := SessionMiddleware(registry, cfg.Cookie, false)

	r.Route("/api/v1", func(r chi.Router) {
		// only loading the widget may start a session
		r.Route("/widget", func(r chi.Router) {
			r.With(startSession).Get("/", widgetHandler.GetWidget)
			r.With(requireSession).Post("/actions", widgetHandler.Act)
			r.With(requireSession).Post("/language", widgetHandler.Language)
			r.With(requireSession).Post("/theme", widgetHandler.Theme)
		})
		r.With(requireSession).Post("/orders", widgetHandler.SubmitOrder)
	})

	return otelhttp.NewHandler(r, "order-widget")
}
