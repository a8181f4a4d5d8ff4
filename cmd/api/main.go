package main

import (
	"context"
	"fmt"
	"log"
	"mediastore-checkout/internal/client"
	"mediastore-checkout/internal/config"
	"mediastore-checkout/internal/limiter"
	"mediastore-checkout/internal/repository"
	"mediastore-checkout/internal/server"
	"mediastore-checkout/internal/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Log.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	db := client.InitDatabaseClient(&cfg.Database)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)

	if cfg.SeedCatalog {
		if err := productRepo.Seed(context.Background()); err != nil {
			log.Fatal("seed catalog: ", err)
		}
	}

	otpIssuer, err := service.NewOTPIssuer(cfg.Payment.OTPMode, cfg.Payment.SharedCode)
	if err != nil {
		log.Fatal(err)
	}

	var attemptLimiter limiter.AttemptLimiter = limiter.Noop{}
	if rdb := client.InitRedisClient(&cfg.Redis); rdb != nil {
		attemptLimiter = limiter.NewRedisLimiter(rdb, cfg.Redis.ConfirmLimit, cfg.Redis.ConfirmWindow)
	}

	entitlementService := service.NewEntitlementService(entitlementRepo)
	cartService := service.NewCartService(db, productRepo, orderRepo, paymentRepo)
	checkoutService := service.NewCheckoutService(
		db,
		orderRepo,
		paymentRepo,
		entitlementService,
		otpIssuer,
		attemptLimiter,
		service.CheckoutOptions{
			Currency:        cfg.Payment.Currency,
			DefaultProvider: cfg.Payment.Provider,
			BaseURL:         cfg.BaseURL,
			OTPTTL:          cfg.Payment.OTPTTL,
			MaxAttempts:     cfg.Payment.MaxAttempts,
			ExposeCode:      !cfg.Environment.IsProduction(),
		},
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cartService, checkoutService, entitlementService, []byte(cfg.Auth.JWTSecret))

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: ", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error: ", err)
	}
}
