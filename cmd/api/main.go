package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oracle/internal/adapter/repo"
	"oracle/internal/domain"
	"oracle/internal/http/handlers"
	"oracle/internal/http/httpapi"
	"oracle/internal/infra"
	"oracle/internal/infra/geoip"
	"oracle/internal/middleware"
	"oracle/internal/oracle"
	"oracle/internal/providers/answer"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	catalog := domain.NewTierCatalog()
	store := repo.NewEntitlementRepository(dbpool)
	qlog := repo.NewQuestionLogRepository(dbpool)

	filter, err := oracle.NewSafetyFilter(oracle.SafetyConfig{
		MaxChars:    cfg.SafetyMaxChars,
		MinRegister: cfg.SafetyMinRegister,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build safety filter")
	}
	fallbacks, err := oracle.NewFallbackCatalog(cfg.FallbackSeed)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build fallback catalog")
	}

	var generator answer.Generator
	if cfg.OpenAIAPIKey != "" {
		gen, err := answer.NewOpenAIGenerator(answer.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.GeneratorTimeout,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build generator")
		}
		generator = gen
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, answering from fallback pools only")
	}

	engine := oracle.NewEngine(catalog, store, logger)
	responder := oracle.NewResponder(generator, filter, fallbacks, cfg.MaxResponseWords, logger)
	dispatcher := oracle.NewDispatcher(engine, responder, store, qlog, cfg.GeneratorTimeout, logger)

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}

	app := handlers.NewApp(dispatcher, geo, logger)
	rl := middleware.NewRateLimiter(cfg.RateLimitPerMin)
	defer rl.Stop()
	router := httpapi.NewRouter(app, rl)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
