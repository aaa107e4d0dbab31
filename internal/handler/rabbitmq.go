package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/rabbitmq"
	"github.com/MichalMitros/coral-price-aggregator/pkg/v1/commander"
	"github.com/rs/zerolog"
)

//go:generate mockery --name Consumer --filename consumer.go

// Consumer consumes queue messages.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.HandlerFunc) (<-chan error, error)
}

// RMQHandler handles run commands from RMQ.
type RMQHandler struct {
	consumer Consumer
	runner   Runner
	logger   *zerolog.Logger
}

// NewRMQHandler returns new RMQHandler.
func NewRMQHandler(consumer Consumer, runner Runner, logger *zerolog.Logger) *RMQHandler {
	return &RMQHandler{
		consumer: consumer,
		runner:   runner,
		logger:   logger,
	}
}

// Start starts consuming and handling run commands from RMQ.
func (h *RMQHandler) Start(ctx context.Context, queue string) error {
	errorsChan, err := h.consumer.Consume(ctx, queue, h.Handle)
	if err != nil {
		return err
	}

	go func() {
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return nil
}

// Handle runs aggregation requested by message. Commands arriving during a run are dropped.
func (h *RMQHandler) Handle(ctx context.Context, message []byte) error {
	cmd, err := decodeMessage(message)
	if err != nil {
		return err
	}

	logger := h.logger.With().
		Str("command", cmd.ID).
		Str("requestedBy", cmd.RequestedBy).
		Logger()

	logger.Debug().Msg("run requested")

	report, err := h.runner.Run(ctx)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logger.Info().Msg("run already in progress, dropping command")
		return nil
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	logger.Debug().
		Int("total", report.Total).
		Msg("run finished")

	return nil
}

func decodeMessage(msg []byte) (*commander.RunCommand, error) {
	var cmd commander.RunCommand
	err := json.Unmarshal(msg, &cmd)
	if err != nil {
		return nil, fmt.Errorf("can't decode run command: %w", err)
	}

	return &cmd, err
}
