package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
)

const outboxKeyPrefix = "outbox/"

type CreateOutboxMsgParams struct {
	Topic        string
	Headers      map[string]string
	Payload      json.RawMessage
	PartitionKey *string
}

type ListUnprocessedOutboxMsgsParams struct {
	BatchSize int32
}

type ListUnprocessedOutboxMsgsResult struct {
	ID           uuid.UUID
	Topic        string
	Headers      map[string]string
	Payload      json.RawMessage
	PartitionKey *string
}

type BulkUpdateOutboxMsgsItem struct {
	ID    uuid.UUID
	Error *string
}

type BulkUpdateOutboxMsgsParams struct {
	Items []BulkUpdateOutboxMsgsItem
}

type OutboxMsgRepository interface {
	WithStore(store kv.Store) OutboxMsgRepository
	CreateOutboxMsg(ctx context.Context, params CreateOutboxMsgParams) error
	ListUnprocessedOutboxMsgs(ctx context.Context, params ListUnprocessedOutboxMsgsParams) ([]ListUnprocessedOutboxMsgsResult, error)
	BulkUpdateOutboxMsgs(ctx context.Context, params BulkUpdateOutboxMsgsParams) error
}

// outboxMsg is the stored layout of one outbox message. Keys are UUIDv7, so
// an ordered prefix scan yields messages in creation order.
type outboxMsg struct {
	ID           uuid.UUID         `json:"id"`
	Topic        string            `json:"topic"`
	Headers      map[string]string `json:"headers,omitempty"`
	Payload      json.RawMessage   `json:"payload"`
	PartitionKey *string           `json:"partition_key,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	ProcessedAt  *time.Time        `json:"processed_at,omitempty"`
	Error        *string           `json:"error,omitempty"`
}

type outboxMsgRepository struct {
	store kv.Store
}

func NewOutboxMsgRepository(store kv.Store) OutboxMsgRepository {
	return &outboxMsgRepository{store: store}
}

func (r outboxMsgRepository) WithStore(store kv.Store) OutboxMsgRepository {
	return &outboxMsgRepository{store: store}
}

func (r outboxMsgRepository) CreateOutboxMsg(ctx context.Context, params CreateOutboxMsgParams) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	msg := outboxMsg{
		ID:           id,
		Topic:        params.Topic,
		Headers:      params.Headers,
		Payload:      params.Payload,
		PartitionKey: params.PartitionKey,
		CreatedAt:    time.Now(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal outbox msg: %w", err)
	}

	if err := r.store.Set(ctx, outboxKey(id), value); err != nil {
		return fmt.Errorf("outbox msg create: %w", err)
	}

	return nil
}

func (r outboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params ListUnprocessedOutboxMsgsParams) ([]ListUnprocessedOutboxMsgsResult, error) {
	entries, err := r.store.List(ctx, []byte(outboxKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("outbox msg list: %w", err)
	}

	results := make([]ListUnprocessedOutboxMsgsResult, 0, params.BatchSize)
	for _, entry := range entries {
		if int32(len(results)) >= params.BatchSize {
			break
		}

		var msg outboxMsg
		if err := json.Unmarshal(entry.Value, &msg); err != nil {
			return nil, fmt.Errorf("unmarshal outbox msg %s: %w", entry.Key, err)
		}

		if msg.ProcessedAt != nil {
			continue
		}

		results = append(results, ListUnprocessedOutboxMsgsResult{
			ID:           msg.ID,
			Topic:        msg.Topic,
			Headers:      msg.Headers,
			Payload:      msg.Payload,
			PartitionKey: msg.PartitionKey,
		})
	}

	return results, nil
}

func (r outboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params BulkUpdateOutboxMsgsParams) error {
	return r.store.WithTx(ctx, func(store kv.Store) error {
		now := time.Now()
		for _, item := range params.Items {
			key := outboxKey(item.ID)

			value, err := store.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("get outbox msg %s: %w", item.ID, err)
			}

			var msg outboxMsg
			if err := json.Unmarshal(value, &msg); err != nil {
				return fmt.Errorf("unmarshal outbox msg %s: %w", item.ID, err)
			}

			msg.ProcessedAt = &now
			msg.Error = item.Error

			updated, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal outbox msg %s: %w", item.ID, err)
			}

			if err := store.Set(ctx, key, updated); err != nil {
				return fmt.Errorf("set outbox msg %s: %w", item.ID, err)
			}
		}

		return nil
	})
}

func outboxKey(id uuid.UUID) []byte {
	return []byte(outboxKeyPrefix + id.String())
}
