package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/revara-health/platform/pkg/catalog"
	"github.com/revara-health/platform/pkg/claims"
	"github.com/revara-health/platform/pkg/common/config"
	"github.com/revara-health/platform/pkg/common/database"
	"github.com/revara-health/platform/pkg/common/kafka"
	"github.com/revara-health/platform/pkg/common/logger"
	"github.com/revara-health/platform/pkg/common/middleware"
	"github.com/revara-health/platform/pkg/observability/metrics"
)

func main() {
	logger.Init()
	metrics.Init()
	cfg := config.Load()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.CatalogPath).Warn("falling back to built-in catalog")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := claims.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate claims tables")
	}

	genCfg := claims.DefaultGenerationConfig()
	genCfg.ServiceWindowDays = cfg.ServiceWindowDays
	genCfg.MinChargeAmount = cfg.MinChargeAmount
	genCfg.MaxChargeAmount = cfg.MaxChargeAmount

	assembler, err := claims.NewAssembler(cat, genCfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid generation configuration")
	}

	producer := kafka.NewProducer(cfg.ClaimsEventsTopic)
	defer producer.Close()

	cache := database.GetRedis()

	svc := claims.NewService(assembler, repo, producer, cache, cfg.SummaryCacheTTL, cfg.MaxClaimsPerRequest)
	handler := claims.NewHTTPHandler(svc)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(
		middleware.BodyLimit(cfg.MaxRequestBody),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Claims Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	// payer responses drive live claim transitions
	eventHandler := kafka.EventHandler(svc.HandlePayerResponse)
	if cfg.ClaimsDLQTopic != "" {
		dlq := kafka.NewProducer(cfg.ClaimsDLQTopic)
		defer dlq.Close()
		eventHandler = kafka.WithDeadLetter(eventHandler, dlq)
	}

	consumers := cfg.StatusEventConsumers
	if consumers < 1 {
		consumers = 1
	}
	for i := 0; i < consumers; i++ {
		consumer := kafka.NewConsumer(cfg.PayerResponsesTopic, cfg.KafkaGroupID)
		defer consumer.Close()

		go func() {
			if err := consumer.Consume(ctx, eventHandler); err != nil && err != context.Canceled {
				logger.Log.WithError(err).Error("payer response consumer stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Claims Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("failed to close redis")
	}

	logger.Log.Info("Claims Service stopped")
}
