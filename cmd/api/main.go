package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bimakw/swap-quoter/internal/config"
	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
	"github.com/bimakw/swap-quoter/internal/infrastructure/cache"
	"github.com/bimakw/swap-quoter/internal/infrastructure/dex"
	"github.com/bimakw/swap-quoter/internal/infrastructure/ethereum"
	"github.com/bimakw/swap-quoter/internal/logging"
	"github.com/bimakw/swap-quoter/internal/presentation/handlers"
	"github.com/bimakw/swap-quoter/internal/presentation/middleware"
)

const (
	version = "0.3.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	// Initialize Ethereum client
	ethClient, err := ethereum.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Ethereum")
	}
	defer ethClient.Close()
	logger.Info().Str("chain_id", ethClient.ChainID().String()).Msg("connected to Ethereum")

	cacheClient := newCache(ctx, cfg, logger)

	registry := loadTokens(cfg.TokensFile, logger)

	dexClients := []dex.DEXClient{
		dex.NewUniswapV2Client(ethClient),
		dex.NewSushiswapClient(ethClient),
		dex.NewBalancerClient(ethClient, dex.DefaultBalancerPools),
	}

	snapshotService := services.NewSnapshotService(dexClients, cacheClient, cfg.SnapshotTTL, logger)
	routerService := services.NewRouterService(snapshotService, registry.Intermediates(), cfg.DefaultSlippage, logger)

	handler := handlers.NewRouter(handlers.RouterConfig{
		Version:           version,
		Quoter:            routerService,
		Pricer:            snapshotService,
		Chain:             ethClient,
		Registry:          registry,
		Logger:            logger,
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info().Str("version", version).Str("port", cfg.Port).Msg("starting swap quoter API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		return
	}
	logger.Info().Msg("server stopped")
}

func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("using in-memory cache")
		return cache.NewInMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to Redis, using in-memory cache")
		return cache.NewInMemoryCache()
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	return redisCache
}

func loadTokens(path string, logger zerolog.Logger) *entities.TokenRegistry {
	registry := entities.NewTokenRegistry()
	if err := registry.LoadFromFile(path); err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("using default token list")
		return entities.DefaultRegistry()
	}
	logger.Info().Int("tokens", registry.Count()).Str("file", path).Msg("loaded token list")
	return registry
}
