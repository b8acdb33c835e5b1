package event

import (
	"context"
	"log/slog"
)

const TopicShoeCreated = "shoe.created"

type ShoeCreatedEvent struct {
	ShoeID   string  `json:"shoe_id"`
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	ShoeURL  string  `json:"shoe_url"`
	Price    int16   `json:"price"`
	Quantity string  `json:"quantity"`
	Rating   float32 `json:"rating"`
}

func (s *Service) handleShoeCreatedEvent(ctx context.Context, ev ShoeCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling shoe created event", slog.Any("event", ev))
	return nil
}
