package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/presentation/middleware"
)

// RouterConfig carries everything the HTTP API is built from.
type RouterConfig struct {
	Version           string
	Quoter            Quoter
	Pricer            TokenPricer
	Chain             BlockSource
	Registry          *entities.TokenRegistry
	Logger            zerolog.Logger
	RateLimiter       *middleware.RateLimiter
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that sets those headers.
	TrustProxyHeaders bool
}

// NewRouter wires handlers and middleware into a chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	healthHandler := NewHealthHandler(cfg.Version, cfg.Chain)
	quoteHandler := NewQuoteHandler(cfg.Quoter, cfg.Registry, cfg.Logger)
	priceHandler := NewPriceHandler(cfg.Pricer, cfg.Registry, cfg.Logger)
	routesHandler := NewRoutesHandler(cfg.Registry, cfg.Logger)
	tokensHandler := NewTokensHandler(cfg.Registry)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		r.Get("/quote", quoteHandler.GetQuote)
		r.Post("/routes/evaluate", routesHandler.Evaluate)
		r.Get("/price/{tokenAddress}", priceHandler.GetPrice)
		r.Get("/tokens", tokensHandler.List)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}
