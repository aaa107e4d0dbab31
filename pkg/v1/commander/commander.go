// Package commander sends aggregation commands to running aggregator instances.
package commander

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockery --name Sender --filename sender.go

// RunCommand requests full refresh of listings.
type RunCommand struct {
	ID          string    `json:"id"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Sender sends messages.
type Sender interface {
	Send(context.Context, []byte) error
}

// Option is custom configuration of RunCommander.
type Option func(c *RunCommander)

// RunCommander sends run commands.
type RunCommander struct {
	sender Sender
	newID  func() string
	now    func() time.Time
}

// NewRunCommander returns new RunCommander using provided sender for sending messages.
func NewRunCommander(sender Sender, ops ...Option) RunCommander {
	c := RunCommander{
		sender: sender,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, op := range ops {
		op(&c)
	}

	return c
}

// SendRunCommand sends run command and returns its id.
func (c RunCommander) SendRunCommand(ctx context.Context, requestedBy string) (string, error) {
	cmd := RunCommand{
		ID:          c.newID(),
		RequestedBy: requestedBy,
		RequestedAt: c.now(),
	}

	cmdMsg, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("can't marshal run command: %w", err)
	}

	if err := c.sender.Send(ctx, cmdMsg); err != nil {
		return "", fmt.Errorf("can't send run command: %w", err)
	}

	return cmd.ID, nil
}

// WithIDGenerator sets generator of command ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *RunCommander) {
		c.newID = fn
	}
}

// WithNow sets source of command timestamps.
func WithNow(fn func() time.Time) Option {
	return func(c *RunCommander) {
		c.now = fn
	}
}
