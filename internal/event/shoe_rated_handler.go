package event

import (
	"context"
	"log/slog"
)

const TopicShoeRated = "shoe.rated"

type ShoeRatedEvent struct {
	ShoeID string  `json:"shoe_id"`
	Rating float32 `json:"rating"`
}

func (s *Service) handleShoeRatedEvent(ctx context.Context, ev ShoeRatedEvent) error {
	s.logger.InfoContext(ctx, "handling shoe rated event", slog.Any("event", ev))
	return nil
}
