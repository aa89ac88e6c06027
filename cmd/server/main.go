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

	"checkout-be/internal/checkout"
	"checkout-be/internal/config"
	"checkout-be/internal/currency"
	"checkout-be/internal/db"
	"checkout-be/internal/logger"
	"checkout-be/internal/middleware"
	"checkout-be/internal/order"
	"checkout-be/internal/payment"
	"checkout-be/internal/payment/webhook"
	"checkout-be/internal/receipt"
	"checkout-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if missing := cfg.Validate(); len(missing) > 0 {
		logger.L().Warn("missing configuration, affected features are disabled", zap.Strings("keys", missing))
	}

	database := initDBFunc(cfg)
	defer database.Close()

	handler, err := newServer(cfg, database)
	if err != nil {
		return err
	}

	return startServerFunc(":"+cfg.AppPort, handler)
}

func newServer(cfg *config.Config, database *sql.DB) (http.Handler, error) {
	rates, err := currency.ParseRates(cfg.ExchangeRates)
	if err != nil {
		return nil, fmt.Errorf("EXCHANGE_RATES: %w", err)
	}
	if _, ok := rates[cfg.StoreCurrency]; !ok {
		logger.L().Warn("store currency has no exchange rate, regional checkout will fail",
			zap.String("store_currency", cfg.StoreCurrency),
			zap.Strings("rates", rates.Codes()),
		)
	}

	var receipts order.ReceiptSender
	if cfg.SMTPEnabled() {
		receipts = receipt.NewSMTPSender(receipt.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.ReceiptFrom,
		})
	} else {
		logger.L().Info("SMTP not configured, receipts are logged only")
		receipts = receipt.NewLogSender()
	}

	orderSvc := order.NewService(order.NewRepository(database), receipts)
	cardGateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePublishableKey)
	regionalGateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayCurrency)

	checkoutSvc := checkout.NewService(orderSvc, cardGateway, regionalGateway, currency.NewStaticProvider(rates), cfg.OrderConfirmationURL)
	checkoutHandler := checkout.NewHandler(checkoutSvc)
	webhookHandler := webhook.NewWebhookHandler(orderSvc, cardGateway, payment.NewRepository(database))

	return setupRouter(cfg, database, checkoutHandler, webhookHandler), nil
}

func setupRouter(cfg *config.Config, database *sql.DB, ch *checkout.Handler, wh *webhook.Handler) http.Handler {
	limiter := middleware.NewLimiter()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})

	// Signed by the provider; no session.
	r.With(limiter.Middleware(middleware.TierWebhook)).
		Post("/webhooks/card-gateway", wh.CardGatewayWebhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.With(limiter.Middleware(middleware.TierStrict)).
			Post("/checkout/regional-gateway/verify", ch.VerifyRegionalPayment)
		r.With(limiter.Middleware(middleware.TierStrict)).
			Post("/payment/regional-gateway/create", ch.CreateRegionalPayment)

		r.With(middleware.RequireUser, limiter.Middleware(middleware.TierGeneral)).
			Get("/checkout/{orderID}", ch.PaymentPage)
	})

	return otelhttp.NewHandler(r, "checkout-be")
}

// startServer blocks until SIGINT/SIGTERM, then drains in-flight requests.
func startServer(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("checkout server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.L().Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.L().Info("server exited")
	return nil
}
