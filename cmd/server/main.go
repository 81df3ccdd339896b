package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apppayment "github.com/visaflow/backend/internal/application/payment"
	"github.com/visaflow/backend/internal/infrastructure/cache"
	"github.com/visaflow/backend/internal/infrastructure/config"
	"github.com/visaflow/backend/internal/infrastructure/logger"
	"github.com/visaflow/backend/internal/infrastructure/persistence"
	"github.com/visaflow/backend/internal/infrastructure/realtime"
	"github.com/visaflow/backend/internal/interfaces/http/handler"
	"github.com/visaflow/backend/internal/interfaces/http/middleware"
	"github.com/visaflow/backend/internal/interfaces/http/router"
)

//	@title			VisaFlow Backend API
//	@version		1.0
//	@description	Visa consultancy CRM backend with a polymorphic payment ledger

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting VisaFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithZap(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Cache and fan-out both ride on Redis; when Redis is down or
	// disabled the null objects keep the core serving from Postgres.
	store := cache.Store(cache.NewNoopStore())
	publisher := realtime.Publisher(realtime.NewNoopPublisher())
	if cfg.Redis.Enabled {
		if cfg.Cache.Enabled {
			redisStore, err := cache.NewRedisStore(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				log.Warn("Redis cache unavailable, serving without cache", zap.Error(err))
			} else {
				store = redisStore
				log.Info("Redis cache connected")
			}
		}

		redisPublisher, err := realtime.NewRedisPublisher(realtime.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis publisher unavailable, fan-out disabled", zap.Error(err))
		} else {
			publisher = redisPublisher
			log.Info("Redis fan-out publisher connected")
		}
	}

	// Repositories and services
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	detailRepo := persistence.NewGormDetailRepository(db.DB)
	actorDirectory := persistence.NewGormActorDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	ledgerService := apppayment.NewLedgerService(
		txScope, ledgerRepo, detailRepo, actorDirectory, log,
		apppayment.WithCacheStore(store),
		apppayment.WithCacheTTL(cfg.Cache.TTL),
		apppayment.WithPostCommitHooks(
			cache.NewInvalidationHook(store, log),
			realtime.NewFanoutHook(publisher, log),
		),
	)
	approvalService := apppayment.NewApprovalService(ledgerService, log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins))

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	})

	router.NewRouter(engine).
		Register(handler.NewPaymentHandler(ledgerService)).
		Register(handler.NewApprovalHandler(approvalService)).
		Register(handler.NewSystemHandler()).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
