package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichalMitros/coral-price-aggregator/internal/handler"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// newScheduler returns started cron running runner on schedule.
func newScheduler(ctx context.Context, schedule string, runner handler.Runner, logger *zerolog.Logger) (*cron.Cron, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(schedule, func() {
		report, err := runner.Run(ctx)
		switch {
		case errors.Is(err, platform.ErrAlreadyRunning):
			logger.Info().Msg("scheduled run skipped, run already in progress")
		case err != nil:
			logger.Error().
				Err(err).
				Msg("scheduled run failed")
		default:
			logger.Info().
				Int("total", report.Total).
				Msg("scheduled run finished")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("can't parse schedule %q: %w", schedule, err)
	}

	c.Start()

	return c, nil
}
