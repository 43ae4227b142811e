package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dwagner/softphone/internal/alerts"
	"github.com/dwagner/softphone/internal/api"
	"github.com/dwagner/softphone/internal/auth"
	"github.com/dwagner/softphone/internal/config"
	"github.com/dwagner/softphone/internal/metrics"
	"github.com/dwagner/softphone/internal/notify"
	"github.com/dwagner/softphone/internal/simulate"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/ticker"
	"github.com/dwagner/softphone/internal/types"
	"github.com/dwagner/softphone/internal/websocket"
	"github.com/dwagner/softphone/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// meteredNotices counts published notices before handing them to the broker
type meteredNotices struct {
	broker  *notify.Broker
	metrics *metrics.Metrics
}

func (p meteredNotices) Publish(n types.Notice) {
	p.metrics.RecordNotice(string(n.Severity))
	p.broker.Publish(n)
}

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Bool("skip_auth", cfg.SkipAuth).
		Msg("starting softphone server")

	// Create metrics
	m := metrics.NewMetrics()

	// Create notice broker
	broker := notify.NewBroker(log.Logger)

	// Create the softphone state store
	timings := store.Timings{
		AutoConnectDelay: cfg.AutoConnectDelay,
		TransferDelay:    cfg.TransferDelay,
		ConferenceDelay:  cfg.ConferenceDelay,
	}
	softphone := store.New(nil, meteredNotices{broker: broker, metrics: m}, log.Logger, timings)

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run the duration tick loop
	go softphone.Run(ctx)

	// Start the demo feeds
	inbound := simulate.NewInboundFeed(softphone, nil, nil, cfg.IncomingCallDelay, m, log.Logger)
	go inbound.Run(ctx)

	transcriber := simulate.NewTranscriber(softphone, nil, nil, cfg.TranscriptMinInterval, cfg.TranscriptMaxInterval, m, log.Logger)
	go transcriber.Run(ctx)

	// Watch for long holds and long wrap-ups
	checker := alerts.NewChecker(softphone, nil, meteredNotices{broker: broker, metrics: m}, log.Logger)
	go checker.Run(ctx)

	// Broadcast snapshots and notices to connected clients
	tickerService := ticker.NewTicker(softphone, broker, hub, m, 1*time.Second, log.Logger)
	go tickerService.Start(ctx)

	// Create auth service
	authService := auth.NewService(cfg.JWTSecret, cfg.SkipAuth, log.Logger)

	// Create WebSocket handler seeded with the current snapshot
	wsHandler := websocket.NewHandler(hub, cfg, func() ([]byte, error) {
		return json.Marshal(softphone.Snapshot())
	}, log.Logger)

	// Create REST handler
	apiHandler := api.NewHandler(softphone, authService, broker, m, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Post("/api/login", apiHandler.Login)
	r.Get("/api/reasons", apiHandler.GetReasons)

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(authService.Middleware)

		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Post("/logout", apiHandler.Logout)
			r.Post("/status", apiHandler.SetStatus)
			r.Post("/dialpad", apiHandler.SetDialpad)
			r.Delete("/dialpad", apiHandler.ClearDialpad)
			r.Post("/call", apiHandler.MakeCall)
			r.Post("/call/answer", apiHandler.AnswerCall)
			r.Post("/call/end", apiHandler.EndCall)
			r.Post("/call/hold", apiHandler.HoldCall)
			r.Post("/call/unhold", apiHandler.UnholdCall)
			r.Post("/call/transfer", apiHandler.TransferCall)
			r.Post("/call/conference", apiHandler.ConferenceCall)
			r.Post("/mute", apiHandler.ToggleMute)
			r.Post("/transcript/collapse", apiHandler.ToggleTranscriptCollapse)
			r.Get("/snapshot", apiHandler.GetSnapshot)
			r.Get("/notices", apiHandler.GetNotices)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop background services
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"softphone"}`)
}
