package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pixgen/internal/adapter/repo"
	"pixgen/internal/dispatch"
	"pixgen/internal/http/handlers"
	httpapi "pixgen/internal/http/httpapi"
	"pixgen/internal/infra"
	"pixgen/internal/infra/geoip"
	"pixgen/internal/metrics"
	"pixgen/internal/middleware"
	"pixgen/internal/modal"
	"pixgen/internal/service"
	"pixgen/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	authKey, err := middleware.ParseAuthKey(cfg.AuthJWTPublicKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid auth public key")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, request logs will omit country")
	}

	reg := metrics.Default()

	modalClient := modal.NewClient(modal.Options{
		BaseURL:        cfg.ModalBaseURL,
		WebhookBaseURL: cfg.WebhookBaseURL,
		Dev:            cfg.ModalDev,
		Timeout:        cfg.DispatchTimeout,
	})

	queue := dispatch.NewQueue(cfg.DispatchWorkers, cfg.DispatchBuffer, cfg.DispatchTimeout, logger, reg)

	models := repo.NewModelRepository(dbpool)
	images := repo.NewImageRepository(dbpool)
	packs := repo.NewPackRepository(dbpool)
	users := repo.NewUserRepository(dbpool)

	var presigner *storage.Presigner
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		presigner = storage.NewPresigner(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	} else {
		logger.Warn().Msg("supabase storage not configured, pre-signed uploads disabled")
	}

	app := &handlers.App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    reg,
		Users:      users,
		Models:     models,
		Images:     images,
		Training:   service.NewTrainingService(models, modalClient, queue, logger),
		Generation: service.NewGenerationService(models, images, modalClient, queue, logger),
		Packs:      service.NewPackService(packs, models, images, modalClient, queue, logger),
		Callbacks:  service.NewCallbackService(models, images, logger, reg),
		Presigner:  presigner,
	}

	router := httpapi.NewRouter(app, authKey, resolver)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := queue.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("dispatch queue did not drain")
	}
	logger.Info().Msg("server stopped")
}
