package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv" // Loads .env files into the environment
	"github.com/labstack/echo/v4"

	"github.com/goviettour/booking-backend/internal/config"
	"github.com/goviettour/booking-backend/internal/database"
	"github.com/goviettour/booking-backend/internal/gateway"
	"github.com/goviettour/booking-backend/internal/handler"
	appmw "github.com/goviettour/booking-backend/internal/middleware"
	"github.com/goviettour/booking-backend/internal/queue"
	"github.com/goviettour/booking-backend/internal/reconcile"
	"github.com/goviettour/booking-backend/internal/repository"
	"github.com/goviettour/booking-backend/internal/router"
	queuepub "github.com/goviettour/booking-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config, fatals on missing required vars

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; a nil client turns the cache and rate limiter
	// middleware into pass-throughs.
	rdb := config.NewRedisClient()

	// Repositories.
	bookings := repository.NewBookingRepo(db)
	tours := repository.NewTourRepo(db)
	ledger := repository.NewLedgerRepo(db)
	admins := repository.NewAdminRepo(db)

	// Payment gateway adapters.  The office adapter always exists; the
	// online gateways join the registry only when their credentials are
	// configured, so checkout against a disabled channel fails fast.
	adapters := []gateway.Adapter{gateway.NewOffice(cfg.OfficeAddress)}
	vnpayCfg := gateway.VNPayConfig{
		TmnCode:    cfg.VNPayTmnCode,
		HashSecret: cfg.VNPayHashSecret,
		PayURL:     cfg.VNPayPayURL,
		ReturnURL:  cfg.VNPayReturnURL,
	}
	var vnpay gateway.Adapter
	if vnpayCfg.Configured() {
		vnpay = gateway.NewVNPay(vnpayCfg)
		adapters = append(adapters, vnpay)
	}
	sepayCfg := gateway.SepayConfig{
		APIKey:    cfg.SepayAPIKey,
		AccountNo: cfg.SepayAccountNo,
		BankCode:  cfg.SepayBankCode,
	}
	var sepay gateway.Adapter
	if sepayCfg.Configured() {
		sepay = gateway.NewSepay(sepayCfg)
		adapters = append(adapters, sepay)
	}
	registry := gateway.NewRegistry(adapters...)

	// Reconciler: all ledger writes and status transitions go through it.
	rec := reconcile.NewReconciler(db, bookings, ledger, reconcile.Policy{
		ConfirmOnFullPayment: cfg.ConfirmOnFullPayment,
	}, queuepub.Publisher{})

	// Handlers.
	authH := handler.NewAuthHandler(cfg, admins)
	bookingH := handler.NewBookingHandler(bookings, tours, ledger)
	checkoutH := handler.NewCheckoutHandler(bookings, registry, cfg.GatewayTimeout)
	paymentH := handler.NewPaymentHandler(rec)
	webhookH := handler.NewWebhookHandler(vnpay, sepay, rec)
	statsH := handler.NewStatsHandler(bookings, ledger)
	receiptH := handler.NewReceiptHandler(bookings, ledger)

	// Redis-backed middleware, pass-through when Redis is absent.
	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterBooking(e, bookingH, checkoutH, limiter, cache)
	router.RegisterWebhooks(e, webhookH, limiter)
	router.RegisterAdmin(e, bookingH, paymentH, statsH, receiptH, cache, cfg.JWTSecret)

	// Background audit trail: consumes payment events from RabbitMQ and
	// appends them to logs/payments.log.  Runs until the process exits.
	go func() {
		if err := queue.StartPaymentAuditConsumer(); err != nil {
			log.Printf("payment audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
