package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ytvault/archive-server-go/internal/archive"
	"github.com/ytvault/archive-server-go/internal/config"
	"github.com/ytvault/archive-server-go/internal/database"
	"github.com/ytvault/archive-server-go/internal/handler"
	"github.com/ytvault/archive-server-go/internal/jobs"
	"github.com/ytvault/archive-server-go/internal/middleware"
	"github.com/ytvault/archive-server-go/internal/recovery"
	"github.com/ytvault/archive-server-go/internal/redis"
	"github.com/ytvault/archive-server-go/internal/repository"
	"github.com/ytvault/archive-server-go/internal/service"
	"github.com/ytvault/archive-server-go/internal/sse"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	videoRepo := repository.NewVideoRepository(db.DB)
	channelRepo := repository.NewChannelRepository(db.DB)
	playlistRepo := repository.NewPlaylistRepository(db.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	sessionStorage := recovery.NewRedisStorage(redisClient)
	store := recovery.NewStore(sessionStorage)

	archiveClient := archive.NewClient(cfg.ArchiveAPIURL, cfg.RecoveryTimeout())

	recoveryService := service.NewRecoveryService(
		store, archiveClient, videoRepo, channelRepo, broker, cfg.RecoveryTimeout(),
	)
	libraryService := service.NewLibraryService(videoRepo, channelRepo, playlistRepo)

	authMiddleware := middleware.NewAuthMiddleware(cfg.APIToken)

	recoveryHandler := handler.NewRecoveryHandler(recoveryService)
	libraryHandler := handler.NewLibraryHandler(libraryService)
	eventsHandler := handler.NewEventsHandler(broker, recoveryService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Get("/events", eventsHandler.ServeHTTP)
		r.Mount("/", recoveryHandler.Routes())
		r.Mount("/library", libraryHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(store, cfg.SessionRetention(), config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: config.ServerReadTimeout,
		// Recovery calls and SSE streams outlive any sane write timeout.
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
