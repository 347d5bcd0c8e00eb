// The suggestion worker periodically wakes snoozed suggestions and
// recomputes auto calculated targets, so that safety net and credit card
// holding envelopes follow the owner's spending without a request
// triggering it.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stashbudget/backend/internal/config"
	"github.com/stashbudget/backend/internal/events"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/suggestions"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if ok && logFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(output).With().Timestamp().Str("component", "suggestion-worker").Logger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	err := models.Connect(cfg.DBPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	var publisher events.Publisher = events.LogPublisher{Logger: log.Logger}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	manager := suggestions.NewManager(publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Dur("interval", cfg.WorkerInterval).Msg("suggestion worker started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.WorkerInterval)
		defer ticker.Stop()

		// Run once on startup, then on every tick
		run(ctx, manager, time.Now())

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				run(ctx, manager, now)
			}
		}
	})

	err = g.Wait()
	if err != nil && err != context.Canceled {
		log.Fatal().Msg(err.Error())
	}

	log.Info().Msg("suggestion worker shutdown complete")
}

func run(ctx context.Context, manager *suggestions.Manager, now time.Time) {
	woken, err := manager.WakeExpired(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("waking snoozed suggestions failed")
	} else if woken > 0 {
		log.Info().Int("woken", woken).Msg("snoozed suggestions resurfaced")
	}

	recalculated, err := manager.RecalculateAllAuto(now)
	if err != nil {
		log.Error().Err(err).Msg("recalculating auto targets failed")
		return
	}

	log.Info().Int("recalculated", recalculated).Msg("auto targets recalculated")
}
