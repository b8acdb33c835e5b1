package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/trananhvu/shoe-catalog/internal/storage/mq"
)

// Service is the event service. It consumes catalog events back from the
// broker; the handlers only log, downstream systems do the real work.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		TopicShoeCreated,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev ShoeCreatedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal shoe created event: %w", err)
			}

			if err := s.handleShoeCreatedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle shoe created event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register shoe created event handler: %w", err)
	}

	if err := s.mqConsumer.RegisterHandler(
		TopicShoeRated,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev ShoeRatedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal shoe rated event: %w", err)
			}

			if err := s.handleShoeRatedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle shoe rated event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register shoe rated event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}
