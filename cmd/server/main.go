package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"giveaway-engine/internal/common/config"
	"giveaway-engine/internal/common/logger"
	giveawayhttp "giveaway-engine/internal/features/giveaway/delivery/http"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/service"
	"giveaway-engine/internal/features/giveaway/timers"
	"giveaway-engine/internal/platform/chat"
	"giveaway-engine/internal/platform/chat/rest"
	"giveaway-engine/internal/platform/redis"
	redisstorage "giveaway-engine/internal/platform/storage/redis"
)

func main() {
	cfg := config.Load()
	logger.Init("giveaway-engine", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	store := redisstorage.NewStore(rdb.Client, cfg.Storage.Namespace)
	registry := timers.NewRegistry()
	records := repository.NewStore(store, registry)

	chatClient := rest.NewClient(cfg.Chat.GatewayURL, cfg.Chat.Token)
	observers := chat.NewReactionObservers()

	ending := service.NewEndingProcessor(records, chatClient, observers)
	entries := service.NewEntryService(records, ending)
	scheduler := service.NewScheduler(records, registry, ending, entries, observers)
	pending := service.NewPendingService(records, chatClient, observers, scheduler, entries)
	lifecycle := service.NewLifecycleService(records, chatClient, registry, observers, ending)

	// Restore timers before taking traffic so overdue events settle first.
	if err := scheduler.ScheduleExisting(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to recover giveaway schedule")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "X-User-ID"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	giveawayhttp.NewGiveawayHandler(lifecycle, pending, entries).RegisterRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "giveaway-engine",
		})
	})
	router.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Armed timers are process-local; durable state lets the next start
	// recover them.
	registry.StopAll()
	logger.Info().Msg("Server exited")
}
