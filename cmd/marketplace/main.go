package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/handlers"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/config"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/infrastructure/leader"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/infrastructure/mysql"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/infrastructure/payment"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/infrastructure/redis"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/infrastructure/websocket"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Marketplace Service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Repositories
	auctionRepo := mysql.NewMySQLAuctionRepository(db)
	bidRepo := mysql.NewMySQLBidRepository(db)
	offerRepo := mysql.NewMySQLOfferRepository(db)
	paymentRepo := mysql.NewMySQLPaymentRepository(db)
	userRepo := mysql.NewMySQLUserRepository(db)
	categoryRepo := mysql.NewMySQLCategoryRepository(db)
	watchlistRepo := mysql.NewMySQLWatchlistRepository(db)
	statsRepo := mysql.NewMySQLStatsRepository(db)
	schedulerRepo := mysql.NewMySQLSchedulerRepository(db)

	// Redis based components
	bidCache := redis.NewBidCache(rdb)
	stateCache := redis.NewStateCache(rdb)
	eventPublisher := redis.NewEventPublisher(rdb)
	eventSubscriber := redis.NewEventSubscriber(rdb, log)

	incrementPolicy := services.NewIncrementPolicy(rdb)
	if err := incrementPolicy.LoadRules(ctx); err != nil {
		log.Error("Failed to load increment rules", "error", err)
		os.Exit(1)
	}

	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Payments
	provider := payment.NewHTTPProvider(
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
		cfg.Payment.Currency,
		cfg.Payment.RequestTimeout,
		log,
	)
	commissionCalc := services.NewCommissionCalculator(categoryRepo, cfg.Payment.DefaultCommissionRate)
	orchestrator := services.NewPaymentOrchestrator(
		paymentRepo, userRepo, provider, commissionCalc, cfg.Payment.HoldAmount, log)

	// WebSocket fan-out
	connManager := websocket.NewConnectionManager(log)
	broadcaster := websocket.NewNotifier(connManager)

	// Core services; the scheduler is injected after construction to break
	// the manager/scheduler cycle.
	auctionManager := services.NewAuctionManager(
		auctionRepo,
		stateCache,
		bidCache,
		eventPublisher,
		nil,
		orchestrator,
		incrementPolicy,
		connManager,
		log,
	)
	scheduler := services.NewCronAuctionScheduler(
		schedulerRepo, auctionManager, leaderElection, cfg.Instance.ID, log)
	auctionManager.SetScheduler(scheduler)

	bidService := services.NewBidService(
		auctionRepo,
		bidRepo,
		userRepo,
		bidCache,
		stateCache,
		eventPublisher,
		orchestrator,
		auctionManager,
		incrementPolicy,
		log,
	)
	offerService := services.NewOfferService(offerRepo, auctionRepo, userRepo, auctionManager, log)
	userService := services.NewUserService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	catalogService := services.NewCatalogService(categoryRepo, log)
	statsService := services.NewStatsService(statsRepo)
	watchlistService := services.NewWatchlistService(watchlistRepo, auctionRepo)

	eventListener := services.NewEventListener(bidService, connManager, broadcaster, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			echo.HeaderXRequestedWith,
		},
		MaxAge: 86400,
	}))

	api.RegisterRoutes(e, api.Handlers{
		Auth:      handlers.NewAuthHandler(userService, log),
		User:      handlers.NewUserHandler(userService, orchestrator, statsService, log),
		Auction:   handlers.NewAuctionHandler(auctionManager, auctionRepo, log),
		Bid:       handlers.NewBidHandler(bidService, log),
		Offer:     handlers.NewOfferHandler(offerService, log),
		Watchlist: handlers.NewWatchlistHandler(watchlistService, log),
		Stats:     handlers.NewStatsHandler(statsService, log),
		Category:  handlers.NewCategoryHandler(catalogService, log),
		WebSocket: websocket.NewHandler(bidService, auctionRepo, stateCache, connManager, log),
	}, cfg.Auth.JWTSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "marketplace",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	// Background services
	go func() {
		if err := scheduler.Start(context.Background()); err != nil {
			log.Error("Failed to start scheduler", "error", err)
		}
	}()

	go func() {
		if err := eventListener.Start(context.Background(), eventSubscriber); err != nil {
			log.Error("Event listener stopped", "error", err)
		}
	}()

	go func() {
		for {
			became, err := leaderElection.BecomeLeader(context.Background(), cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became closer leader", "instance_id", cfg.Instance.ID)
			}
			time.Sleep(10 * time.Second)
		}
	}()

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting marketplace server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down marketplace service...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	if err := leaderElection.ReleaseLeadership(ctx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Marketplace service stopped")
}
