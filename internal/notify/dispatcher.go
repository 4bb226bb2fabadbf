// Package notify delivers push notifications to user devices.
package notify

import (
	"context"
	"errors"
	"fmt"

	"petmatch/internal/logging"
)

// ErrDeliveryFailed is returned when the provider rejects or fails a message.
var ErrDeliveryFailed = errors.New("delivery failed")

type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type Dispatcher interface {
	// Send delivers msg and returns the provider's message id.
	Send(ctx context.Context, msg Message) (string, error)
}

// LogDispatcher only logs messages. Used when no push provider is configured.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrDeliveryFailed)
	}

	d.logger.Info(ctx, "push notification (log only)", "title", msg.Title, "body", msg.Body, "data", msg.Data)
	return "log-only", nil
}
