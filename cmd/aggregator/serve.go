package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/handler"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/rabbitmq"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTP API, scheduled runs and RabbitMQ run commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openPostgres()
	if err != nil {
		return err
	}
	defer db.Close()

	pg := storage.NewPostgres(db)
	loader, err := a.sourceLoader(&pg)
	if err != nil {
		return err
	}
	agg := a.newAggregator(pg, loader)

	group, ctx := errgroup.WithContext(ctx)

	if a.cfg.HTTP.ScrapeSecret == "" {
		a.logger.Warn().Msg("SCRAPE_SECRET is not set, scrape endpoint is public")
	}

	h := handler.NewHTTPHandler(
		agg,
		pg,
		pg,
		handler.WithSecret(a.cfg.HTTP.ScrapeSecret),
		handler.WithRunContext(ctx),
		handler.WithRateLimit(a.cfg.HTTP.RateLimit),
		handler.WithAllowedOrigins(a.cfg.HTTP.AllowedOrigins),
		handler.WithHTTPLogger(&a.logger),
	)
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.cfg.Schedule != "" {
		scheduler, err := newScheduler(ctx, a.cfg.Schedule, agg, &a.logger)
		if err != nil {
			return err
		}
		a.logger.Info().
			Str("schedule", a.cfg.Schedule).
			Msg("scheduled runs enabled")

		group.Go(func() error {
			<-ctx.Done()
			<-scheduler.Stop().Done()
			return nil
		})
	}

	if a.cfg.RabbitMQ.URL != "" {
		if err := a.consumeCommands(ctx, group, agg); err != nil {
			return err
		}
	}

	group.Go(func() error {
		a.logger.Info().
			Str("addr", srv.Addr).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	a.logger.Info().Msg("coral aggregator up and running")

	err = group.Wait()

	a.logger.Info().Msg("graceful shutdown finished")

	return err
}

func (a *app) consumeCommands(ctx context.Context, group *errgroup.Group, runner handler.Runner) error {
	cfg := a.cfg.RabbitMQ

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("can't open RabbitMQ connection: %w", err)
	}

	mq, err := rabbitmq.NewRabbitMQ(conn, cfg.Exchange)
	if err != nil {
		return errors.Join(err, conn.Close())
	}

	if err := mq.Setup(cfg.Queue, cfg.RoutingKey); err != nil {
		return errors.Join(err, conn.Close())
	}

	if err := handler.NewRMQHandler(mq, runner, &a.logger).Start(ctx, cfg.Queue); err != nil {
		return errors.Join(fmt.Errorf("can't start consuming: %w", err), conn.Close())
	}

	group.Go(func() error {
		<-ctx.Done()
		<-mq.Done()
		if err := conn.Close(); err != nil {
			return fmt.Errorf("can't close RabbitMQ connection: %w", err)
		}
		return nil
	})

	return nil
}
