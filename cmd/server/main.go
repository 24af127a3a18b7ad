package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/ekosolar/lead-pipeline/internal/api"
	"github.com/ekosolar/lead-pipeline/internal/config"
	"github.com/ekosolar/lead-pipeline/internal/email"
	"github.com/ekosolar/lead-pipeline/internal/notify"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
	"github.com/ekosolar/lead-pipeline/internal/push"
	"github.com/ekosolar/lead-pipeline/internal/ratelimit"
	"github.com/ekosolar/lead-pipeline/internal/repository/postgres"
	"github.com/ekosolar/lead-pipeline/internal/scoring"
	"github.com/ekosolar/lead-pipeline/internal/service/dispatch"
	"github.com/ekosolar/lead-pipeline/internal/sms"
	"github.com/ekosolar/lead-pipeline/internal/tracking"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	leadRepo := postgres.NewLeadRepo(db)
	outcomeRepo := postgres.NewOutcomeRepo(db)
	trackingRepo := postgres.NewTrackingRepo(db)
	tokenRepo := postgres.NewDeviceTokenRepo(db)

	limiter := buildLimiter(cfg)
	registry := tracking.NewRegistry(trackingRepo)
	transport := buildEmailTransport(cfg)
	renderer := notify.NewRenderer()

	var senders []notify.ChannelSender
	if transport != nil {
		if cfg.Notifications.AdminEmail == "" {
			log.Fatal("notifications.admin_email is required when an email transport is configured")
		}
		senders = append(senders,
			notify.NewAdminEmailSender(transport, renderer, registry, cfg.Notifications.AdminEmail, cfg.Tracking.BaseURL),
			notify.NewCustomerEmailSender(transport, renderer, cfg.Notifications.CompanyName, cfg.Notifications.CompanyPhone),
		)
	}
	if chain := buildSMSChain(cfg, transport); chain != nil {
		senders = append(senders, notify.NewSMSSender(chain, cfg.SMS.OperatorNumber))
	}
	if pushClient := buildPushClient(cfg); pushClient != nil {
		senders = append(senders, notify.NewPushSender(pushClient, tokenRepo))
	}
	if len(senders) == 0 {
		log.Fatal("no notification channels configured")
	}

	service := dispatch.NewService(leadRepo, outcomeRepo, limiter, scoring.NewScorer(), registry, senders...)
	logger.Info("dispatch channels configured", "channels", service.Channels())

	mux := api.SetupRoutes(api.NewHandlers(service, tokenRepo), nil)
	if cfg.Tracking.Enabled && cfg.Tracking.Port == 0 {
		// Mount the callback routes on the main server when no
		// standalone tracking port is configured.
		mux.Mount("/", tracking.NewHandler(registry, cfg.Tracking.DefaultRedirect).Routes())
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

// buildLimiter prefers the Redis window limiter so limits hold across
// instances; without Redis each instance keeps its own windows.
func buildLimiter(cfg *config.Config) ratelimit.Limiter {
	window, max := cfg.RateLimit.Window(), cfg.RateLimit.MaxSubmissions
	if cfg.Redis.Enabled {
		limiter, err := ratelimit.NewRedisLimiterFromURL(cfg.Redis.URL, window, max)
		if err != nil {
			log.Fatalf("redis limiter: %v", err)
		}
		return limiter
	}
	return ratelimit.NewWindowLimiter(ratelimit.NewMemoryStore(), window, max)
}

func buildEmailTransport(cfg *config.Config) email.Transport {
	if cfg.SES.Enabled {
		transport, err := email.NewSESTransport(cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.Region, cfg.SES.FromName, cfg.SES.FromEmail)
		if err != nil {
			log.Fatalf("ses transport: %v", err)
		}
		return transport
	}
	if cfg.SMTP.Enabled {
		return email.NewSMTPTransport(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}
	return nil
}

// buildSMSChain assembles the provider chain in priority order:
// Telnyx, then Twilio, then the carrier gateway broadcast over the
// email transport.
func buildSMSChain(cfg *config.Config, transport email.Transport) *sms.FallbackChain {
	if cfg.SMS.OperatorNumber == "" {
		return nil
	}

	var entries []sms.ChainEntry
	if cfg.Telnyx.Enabled {
		entries = append(entries, sms.ChainEntry{
			Provider: sms.NewTelnyxProvider(cfg.Telnyx.APIKey, cfg.Telnyx.FromNumber, cfg.Telnyx.MessagingProfileID, cfg.Telnyx.Timeout()),
			Priority: 1,
		})
	}
	if cfg.Twilio.Enabled {
		entries = append(entries, sms.ChainEntry{
			Provider: sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.Timeout()),
			Priority: 2,
		})
	}
	if cfg.SMS.GatewayEnabled && transport != nil {
		entries = append(entries, sms.ChainEntry{
			Provider: sms.NewGatewayProvider(transport, cfg.SMS.Gateways),
			Priority: 3,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return sms.NewFallbackChain(entries...)
}

func buildPushClient(cfg *config.Config) *push.FCMClient {
	if !cfg.Push.Enabled || cfg.Push.ProjectID == "" || cfg.Push.CredentialsFile == "" {
		return nil
	}
	creds, err := os.ReadFile(cfg.Push.CredentialsFile)
	if err != nil {
		log.Fatalf("read FCM credentials: %v", err)
	}
	client, err := push.NewFCMClient(cfg.Push.ProjectID, creds, cfg.Push.Timeout())
	if err != nil {
		log.Fatalf("fcm client: %v", err)
	}
	return client
}
