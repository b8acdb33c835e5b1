package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trananhvu/shoe-catalog/internal/config"
	"github.com/trananhvu/shoe-catalog/internal/repository"
	"github.com/trananhvu/shoe-catalog/internal/storage/mq"
	"github.com/trananhvu/shoe-catalog/pkg/ptr"
)

// Service drains unprocessed outbox messages from the store and publishes
// them to the broker.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			if err := s.relayOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
			}
		}
	}
}

// relayOnce lists a batch of unprocessed messages, produces them, and marks
// them processed in one store transaction. Unlike a SQL outbox there is no
// enclosing transaction around the produce calls; the store has a single
// writer in this process, so list-then-mark cannot race another relay.
func (s *Service) relayOnce(ctx context.Context) error {
	outboxMsgs, err := s.outboxMsgRepo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
		//nolint:gosec
		BatchSize: int32(s.cfg.BatchSize),
	})
	if err != nil {
		return fmt.Errorf("list unprocessed outbox msgs: %w", err)
	}

	if len(outboxMsgs) == 0 {
		return nil
	}

	s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(outboxMsgs)))

	items := make([]repository.BulkUpdateOutboxMsgsItem, 0, len(outboxMsgs))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, outboxMsg := range outboxMsgs {
		msg := outboxMsg
		wg.Go(func() {
			produceMsg := mq.ProduceMsg{
				Topic:        msg.Topic,
				Headers:      msg.Headers,
				Payload:      msg.Payload,
				PartitionKey: msg.PartitionKey,
			}

			item := repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}
			if err := s.mqProducer.Produce(ctx, produceMsg); err != nil {
				s.logger.ErrorContext(ctx,
					"error producing message",
					slog.String("outbox_msg_id", msg.ID.String()),
					slog.String("topic", msg.Topic),
					slog.Any("error", err),
				)
				item.Error = ptr.New(err.Error())
			}

			mu.Lock()
			items = append(items, item)
			mu.Unlock()
		})
	}

	wg.Wait()

	if err := s.outboxMsgRepo.BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
		Items: items,
	}); err != nil {
		return fmt.Errorf("bulk update outbox msgs: %w", err)
	}

	return nil
}
