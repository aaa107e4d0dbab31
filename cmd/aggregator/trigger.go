package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/rabbitmq"
	"github.com/MichalMitros/coral-price-aggregator/pkg/v1/commander"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

func newTriggerCmd(a *app) *cobra.Command {
	var requestedBy string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Publish run command consumed by serving instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.trigger(cmd.Context(), cmd.OutOrStdout(), requestedBy)
		},
	}
	cmd.Flags().StringVar(&requestedBy, "requested-by", "cli", "name recorded in command")

	return cmd
}

func (a *app) trigger(ctx context.Context, out io.Writer, requestedBy string) (err error) {
	cfg := a.cfg.RabbitMQ
	if cfg.URL == "" {
		return errors.New("RABBITMQ_URL is not set")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("can't open RabbitMQ connection: %w", err)
	}
	defer func() {
		err = errors.Join(err, conn.Close())
	}()

	mq, err := rabbitmq.NewRabbitMQ(conn, cfg.Exchange)
	if err != nil {
		return err
	}

	if err := mq.Setup(cfg.Queue, cfg.RoutingKey); err != nil {
		return err
	}

	id, err := commander.NewRunCommander(commander.NewRabbitMQSender(mq, cfg.RoutingKey)).
		SendRunCommand(ctx, requestedBy)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, id)

	return err
}
