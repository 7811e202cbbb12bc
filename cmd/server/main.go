package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"parkeasy/internal/api"
	"parkeasy/internal/auth"
	"parkeasy/internal/cache"
	"parkeasy/internal/config"
	"parkeasy/internal/db"
	"parkeasy/internal/repository"
	"parkeasy/internal/service"
	ws "parkeasy/internal/websocket"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := cfg.NewLogger()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.Migrate(); err != nil {
		return err
	}
	log.Info("database ready")

	var spotCache service.SpotCache = cache.Noop{}
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, spot cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rdb.Close()
			spotCache = cache.NewSpotCache(rdb, cfg.Redis.SpotTTL, log)
			log.Info("spot cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.SpotTTL)
		}
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub(log)
	go hub.Run(hubCtx)
	broadcaster := ws.NewBroadcaster(hub, log)

	loc := cfg.Location()
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	accountRepo := repository.NewAccountRepository(conn)
	spotRepo := repository.NewSpotRepository(conn)
	bookingRepo := repository.NewBookingRepository(conn)
	adminRepo := repository.NewAdminRepository(conn)
	jobRepo := repository.NewJobRepository(conn)
	stripeRepo := repository.NewStripeRepository(conn)

	var mailer service.EmailSender
	if cfg.SendGrid.Enabled() {
		mailer = service.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, log)
	}
	var sms service.SMSSender
	if cfg.Twilio.Enabled() {
		sms = service.NewTwilioSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, log)
	}
	sender := service.NewSenderService(accountRepo, mailer, sms, loc, log)

	var (
		checkout service.CheckoutProvider
		parser   api.WebhookParser
	)
	if cfg.Stripe.Enabled() {
		stripeSvc := service.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
		checkout, parser = stripeSvc, stripeSvc
	}
	payments := service.NewPaymentService(checkout, stripeRepo, accountRepo, cfg.Stripe.Currency, log)

	authSvc := service.NewAuthService(accountRepo, tokens, log)
	adminSvc := service.NewAdminService(accountRepo, adminRepo)
	spotSvc := service.NewSpotService(spotRepo, spotCache, broadcaster, log)
	reservations := service.NewReservationService(bookingRepo, spotCache, broadcaster, sender, payments, loc, log)
	tickets := service.NewTicketService(accountRepo, cfg.JWT.Secret, loc)
	jobs := service.NewJobService(jobRepo, reservations, log)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	scheduler := cron.New()
	if cfg.Jobs.SweepSchedule != "" {
		if err := jobs.Schedule(scheduler, cfg.Jobs.SweepSchedule); err != nil {
			return err
		}
		scheduler.Start()
		log.Info("overdue booking sweep scheduled", "schedule", cfg.Jobs.SweepSchedule)
	}

	router := api.NewRouter(api.Handlers{
		Auth:      api.NewAuthHandler(authSvc),
		Admin:     api.NewAdminHandler(adminSvc),
		Spots:     api.NewSpotHandler(spotSvc),
		Bookings:  api.NewUserReservationHandler(reservations, tickets, payments),
		Stripe:    api.NewStripeWebhookHandler(parser, payments, log),
		WebSocket: api.WebSocketUpgrade(hub, cfg.CORSOrigins, log),
	}, tokens, cfg.CORSOrigins, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	stopHub()
	reservations.Wait()
	return nil
}
