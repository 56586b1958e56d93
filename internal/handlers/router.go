package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/satonic/payperview-api/internal/metrics"
	"github.com/satonic/payperview-api/internal/services"
)

// RouterConfig holds everything the HTTP surface depends on
type RouterConfig struct {
	PayPerView     *services.PayPerViewService
	Catalog        *services.CatalogService
	Auth           *services.AuthService
	Hub            *Hub
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds the API router
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())
	if cfg.Hub != nil {
		r.Get("/ws", ServeWs(cfg.Hub))
	}

	requireAuth := AuthMiddleware(cfg.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/challenge", Challenge(cfg.Auth))
			r.Post("/wallet", WalletLogin(cfg.Auth))
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Get("/", ListTokens(cfg.Catalog))
			r.Get("/count", TokenCount(cfg.Catalog))
			r.With(requireAuth).Post("/", MintToken(cfg.PayPerView))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", GetToken(cfg.Catalog))
				r.Get("/uri", GetTokenURI(cfg.Catalog))
				r.Get("/viewing-details", GetViewingDetails(cfg.Catalog))
				r.Get("/quote", GetQuote(cfg.Catalog))
				r.Get("/viewers/{address}", GetViewerAccess(cfg.Catalog))
				r.With(requireAuth).Put("/royalties", SetRoyalties(cfg.PayPerView))
				r.With(requireAuth).Post("/viewers", AddViewer(cfg.PayPerView))
			})
		})

		r.Route("/recipients/{address}", func(r chi.Router) {
			r.Get("/tokens", GetRedeemableTokens(cfg.Catalog))
			r.Get("/balance", GetBalance(cfg.Catalog))
		})

		r.Get("/oracle/price", GetOraclePrice(cfg.Catalog))
	})

	return r
}

// RequestLogger logs every request and records its latency
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Dur("latency", elapsed).
				Msg("request completed")
		})
	}
}
