package main

import (
	"context"
	"errors"
	"homeservice-booking/internal/gateway"
	"homeservice-booking/internal/handler"
	"homeservice-booking/internal/notifier"
	"homeservice-booking/internal/repository"
	"homeservice-booking/internal/service"
	"homeservice-booking/internal/worker"
	"homeservice-booking/pkg/auth"
	"homeservice-booking/pkg/config"
	"homeservice-booking/pkg/database"
	"homeservice-booking/pkg/logger"
	"homeservice-booking/pkg/metrics"
	"homeservice-booking/pkg/mq"
	"homeservice-booking/pkg/obs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	rootCtx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := obs.InitTracer(rootCtx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.AppEnv)
		if err != nil {
			log.WithError(err).Warn("tracing disabled")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoDB, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoDB.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("error disconnecting from MongoDB")
		}
	}()
	if err := mongoDB.CreateIndexes(ctx); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}
	log.Info("connected to MongoDB")

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(mongoDB.Database)
	couponRepo := repository.NewCouponRepository(mongoDB.Database)
	reservationRepo := repository.NewReservationRepository(mongoDB.Database)
	paymentRepo := repository.NewPaymentRepository(mongoDB.Database)
	notificationRepo := repository.NewNotificationRepository(mongoDB.Database)
	catalogRepo := repository.NewCatalogRepository(mongoDB.Database)

	bus := service.NewEventBus()
	dispatcher := newDispatcher(ctx, cfg, notificationRepo, catalogRepo, log)
	bus.Subscribe(dispatcher)

	var forwarder *notifier.AMQPForwarder
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			log.WithError(err).Warn("booking event forwarding disabled")
		} else {
			defer pub.Close()
			forwarder = notifier.NewAMQPForwarder(pub, cfg.NotificationTimeout, log)
			bus.Subscribe(forwarder)
		}
	}

	payGateway, webhook := newGateway(cfg, log)

	// Initialize services
	pricing := service.NewPricingCalculator(cfg.ServiceFeeRate)
	couponSvc := service.NewCouponService(couponRepo, reservationRepo, catalogRepo, pricing, log)
	linkage := service.NewPaymentLinkage(paymentRepo, bookingRepo, payGateway, bus, cfg.PaymentCurrency, log)
	bookingSvc := service.NewBookingService(bookingRepo, catalogRepo, couponSvc, linkage, pricing, bus, log)
	notificationSvc := service.NewNotificationService(notificationRepo)

	scheduler := worker.NewScheduler(time.Minute, log)
	sweeper := worker.NewReservationSweeper(reservationRepo, bookingRepo, couponSvc, cfg.CouponReservationTTL, log)
	holds := worker.NewSlotHoldSweeper(bookingRepo, cfg.CouponReservationTTL, log)
	refunds := worker.NewRefundProcessor(linkage, log)
	if err := scheduler.Add("reservation-sweeper", cfg.ReservationSweepSchedule, sweeper.Run); err != nil {
		log.WithError(err).Fatal("invalid schedule")
	}
	if err := scheduler.Add("slot-hold-sweeper", cfg.ReservationSweepSchedule, holds.Run); err != nil {
		log.WithError(err).Fatal("invalid schedule")
	}
	if err := scheduler.Add("refund-processor", cfg.RefundSchedule, refunds.Run); err != nil {
		log.WithError(err).Fatal("invalid schedule")
	}
	scheduler.Start()

	metrics.Register()

	router := handler.NewRouter(handler.Deps{
		Bookings:      bookingSvc,
		Coupons:       couponSvc,
		Payments:      linkage,
		Notifications: notificationSvc,
		Webhook:       webhook,
		Tokens:        auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpireTTL),
		Logger:        log,
		Debug:         cfg.IsDevelopment(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	scheduler.Stop()
	dispatcher.Wait()
	if forwarder != nil {
		forwarder.Wait()
	}
	log.Info("server exited")
}

func newDispatcher(ctx context.Context, cfg *config.Config, store notifier.NotificationStore, users notifier.UserLookup, log *logrus.Logger) *notifier.Dispatcher {
	templates, err := notifier.DefaultTemplates()
	if err != nil {
		log.WithError(err).Fatal("failed to load notification templates")
	}

	var pusher notifier.Pusher = notifier.NewLogPusher(log)
	if cfg.RedisAddr != "" {
		client, err := notifier.NewRedisClient(ctx, notifier.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.WithError(err).Warn("real-time push disabled")
		} else {
			pusher = notifier.NewRedisPusher(client, cfg.RealtimeChannel)
		}
	}

	var sms notifier.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		sms = notifier.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}

	return notifier.NewDispatcher(store, users, templates, pusher, sms, cfg.NotificationTimeout, log)
}

// newGateway selects the payment provider. The webhook resolver is nil for
// providers that report outcomes through the admin callback.
func newGateway(cfg *config.Config, log *logrus.Logger) (service.Gateway, handler.WebhookResolver) {
	if cfg.PaymentProvider == "omise" {
		g, err := gateway.NewOmiseGateway(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			log.WithError(err).Fatal("failed to create omise client")
		}
		return g, g
	}
	return gateway.NewManualGateway(log), nil
}
