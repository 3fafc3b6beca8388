package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmdirect-backend/internal/config"
	"farmdirect-backend/internal/database"
	"farmdirect-backend/internal/handler"
	"farmdirect-backend/internal/middleware"
	"farmdirect-backend/internal/repository"
	"farmdirect-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	listingRepo := repository.NewListingRepository(db)
	auctionRepo := repository.NewAuctionRepository(db)
	bidRepo := repository.NewBidRepository(db)
	escrowRepo := repository.NewEscrowRepository(db)
	eventRepo := repository.NewAuctionEventRepository(db)

	// Realtime fan-out: websocket hub always, Redis and NATS when configured.
	wsHub := service.NewWSHub()
	broadcasters := service.MultiBroadcaster{wsHub}

	if cfg.RedisURL != "" {
		rb, err := service.NewRedisBroadcaster(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rb.Close()
		broadcasters = append(broadcasters, rb)
		log.Println("Redis event mirror enabled")
	}

	if cfg.NATSURL != "" {
		archiver, err := service.NewNATSArchiver(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Failed to connect to nats: %v", err)
		}
		defer archiver.Close()
		broadcasters = append(broadcasters, archiver)
		log.Println("NATS event stream enabled")
	}

	// Services
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret)
	listingSvc := service.NewListingService(listingRepo, userRepo)
	escrowSvc := service.NewEscrowService(escrowRepo, listingRepo, userRepo)
	auctionSvc := service.NewAuctionService(
		auctionRepo, bidRepo, escrowRepo, listingRepo, userRepo, eventRepo,
		broadcasters, cfg.MaxSnipeExtensions,
	)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/logout", authH.Logout)

	// Admin — registered BEFORE protected group
	admin := v1.Group("/admin", middleware.AdminKey(cfg.AdminKey))
	adminH := handler.NewAdminHandler(userRepo, escrowSvc, auctionSvc, wsHub)
	admin.Get("/stats", adminH.Stats)
	admin.Post("/users/:id/verify-kyc", adminH.VerifyKYC)
	admin.Post("/escrow/:id/release", adminH.ReleaseEscrow)
	admin.Post("/escrow/:id/refund", adminH.RefundEscrow)
	admin.Post("/auctions/:id/end", adminH.EndAuction)

	// JWT-protected routes (catch-all — must be LAST)
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))

	// Listings
	listingH := handler.NewListingHandler(listingSvc)
	listings := protected.Group("/listings")
	listings.Get("/", listingH.Search)
	listings.Post("/", middleware.RequireFarmer(), listingH.Create)
	listings.Get("/mine", listingH.Mine)
	listings.Get("/:id", listingH.GetByID)

	// Auctions — static paths BEFORE the :id wildcards
	auctionH := handler.NewAuctionHandler(auctionSvc)
	auctions := protected.Group("/auctions")
	auctions.Get("/", auctionH.List)
	auctions.Post("/", middleware.RequireFarmer(), auctionH.Create)
	auctions.Get("/user/bids", auctionH.MyBids)
	auctions.Get("/user/auctions", auctionH.MyAuctions)
	auctions.Get("/:id", auctionH.Get)
	auctions.Get("/:id/bids", auctionH.GetBids)
	auctions.Post("/:id/bid", middleware.RateLimit(30, time.Minute), auctionH.PlaceBid)
	auctions.Get("/:id/events", auctionH.GetEvents)
	auctions.Put("/:id/start", middleware.RequireFarmer(), auctionH.Start)
	auctions.Put("/:id/end", middleware.RequireFarmer(), auctionH.End)
	auctions.Put("/:id/pause", middleware.RequireFarmer(), auctionH.Pause)
	auctions.Put("/:id/resume", middleware.RequireFarmer(), auctionH.Resume)
	auctions.Put("/:id/cancel", middleware.RequireFarmer(), auctionH.Cancel)

	// Payments / escrow
	paymentH := handler.NewPaymentHandler(escrowSvc)
	payments := protected.Group("/payments")
	payments.Post("/escrow", paymentH.Deposit)
	payments.Get("/escrow", paymentH.MyHolds)
	payments.Get("/escrow/:id", paymentH.Get)

	// WebSocket
	wsH := handler.NewWSHandler(wsHub, authSvc)
	app.Get("/ws", wsH.Upgrade)

	// Start hub and auction scheduler
	go wsHub.Run()

	schedCtx, stopSched := context.WithCancel(context.Background())
	sched := service.NewScheduler(auctionSvc,
		time.Duration(cfg.PromoteTickSeconds)*time.Second,
		time.Duration(cfg.LiveTickSeconds)*time.Second,
	)
	go sched.Run(schedCtx)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("FarmDirect backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	stopSched()
	_ = app.ShutdownWithTimeout(5 * time.Second)
	wsHub.Shutdown()
	log.Println("Server stopped")
}
