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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/snare/internal/api"
	"github.com/MikeSquared-Agency/snare/internal/config"
	"github.com/MikeSquared-Agency/snare/internal/detector"
	"github.com/MikeSquared-Agency/snare/internal/extractor"
	"github.com/MikeSquared-Agency/snare/internal/hermes"
	"github.com/MikeSquared-Agency/snare/internal/observability"
	"github.com/MikeSquared-Agency/snare/internal/persona"
	"github.com/MikeSquared-Agency/snare/internal/processor"
	"github.com/MikeSquared-Agency/snare/internal/rules"
	"github.com/MikeSquared-Agency/snare/internal/session"
	"github.com/MikeSquared-Agency/snare/internal/slack"
	"github.com/MikeSquared-Agency/snare/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", envErr)
	}

	slog.Info("snare starting", "port", cfg.Port)

	if cfg.APIKey == "" {
		slog.Warn("API_KEY is empty, every webhook call will be rejected")
	}

	// Rules
	ruleSet, err := rules.Load(cfg.RulesFile)
	if err != nil {
		slog.Error("failed to load rules", "file", cfg.RulesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("rules loaded", "version", ruleSet.Version, "keywords", len(ruleSet.ScamKeywords))

	sessions := session.NewStore(nil)
	metrics := observability.NewMetrics(cfg.MetricsNamespace, sessions.Len)
	opts := []processor.Option{processor.WithMetrics(metrics)}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable, running without event publishing", "error", err)
		} else {
			defer hermesClient.Close()
			opts = append(opts, processor.WithPublisher(hermesClient))
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	// Intelligence archive (optional)
	if cfg.DatabaseURL != "" {
		db, err := connectArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Warn("archive unavailable, running without persistence", "error", err)
		} else {
			defer db.Close()
			opts = append(opts, processor.WithArchive(db))
			slog.Info("database connected")
		}
	}

	// Slack alerts (optional)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		opts = append(opts, processor.WithAlerter(slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())))
		slog.Info("slack alerts ready", "channel", cfg.SlackChannel)
	} else {
		slog.Info("slack not configured, intel alerts disabled")
	}

	proc := processor.New(
		sessions,
		detector.NewClassifier(ruleSet.ScamKeywords),
		extractor.New(ruleSet, slog.Default()),
		persona.New(ruleSet.Persona, persona.WithThinkTime(cfg.ThinkMin, cfg.ThinkMax)),
		slog.Default(),
		opts...,
	)

	srv := api.NewServer(cfg.Port, cfg.APIKey, proc, metrics, slog.Default()).HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("API server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if hermesClient != nil {
		if err := hermesClient.Publish("swarm.agent.snare.registered", map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("snare ready", "port", cfg.Port)

	err = g.Wait()
	// Let in-flight archive writes and alerts land before the pool closes.
	proc.Wait()
	if err != nil {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}
	slog.Info("snare stopped")
}

func connectArchive(ctx context.Context, databaseURL string) (*store.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := store.New(connectCtx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(connectCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
