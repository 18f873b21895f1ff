package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payrelay/internal/config"
	httpx "payrelay/internal/http"
	"payrelay/internal/metrics"
	"payrelay/internal/provider/ecwid"
	"payrelay/internal/provider/payu"
	"payrelay/internal/services/payment"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.App)

	m := metrics.New()

	// Upstreams
	pu := payu.New(cfg, m)
	ec := ecwid.New(cfg, m)
	if !pu.WebhookVerificationEnabled() {
		log.Warn().Msg("PAYU_SECOND_KEY not set; /notify accepts unsigned callbacks")
	}

	svc := payment.NewService(cfg, pu, ec, m)

	// Router
	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:           cfg,
		PaymentService:   svc,
		Metrics:          m,
		WebhookValidator: pu,
		WebhookHeader:    payu.SignatureHeader,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      otelhttp.NewHandler(r, "payrelay"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("payment relay listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info().Msg("server stopped")
}

func setupLogging(app config.AppCfg) {
	level, err := zerolog.ParseLevel(app.LogLevel)
	if err != nil || app.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if app.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	// log.Ctx falls back to the global logger outside a request
	zerolog.DefaultContextLogger = &log.Logger
}
