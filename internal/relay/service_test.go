package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trananhvu/shoe-catalog/internal/config"
	"github.com/trananhvu/shoe-catalog/internal/repository"
	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
	"github.com/trananhvu/shoe-catalog/internal/storage/mq"
)

type fakeProducer struct {
	mu       sync.Mutex
	produced []mq.ProduceMsg
	failFor  map[string]error
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.failFor[msg.Topic]; ok {
		return err
	}

	p.produced = append(p.produced, msg)
	return nil
}

func (p *fakeProducer) producedTopics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	topics := make([]string, 0, len(p.produced))
	for _, msg := range p.produced {
		topics = append(topics, msg.Topic)
	}
	return topics
}

func newTestRepo(t *testing.T) repository.OutboxMsgRepository {
	t.Helper()

	db, err := kv.NewBadgerDB(config.Badger{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return repository.NewOutboxMsgRepository(kv.NewClient(db))
}

func createMsg(t *testing.T, repo repository.OutboxMsgRepository, topic string) {
	t.Helper()
	require.NoError(t, repo.CreateOutboxMsg(context.Background(), repository.CreateOutboxMsgParams{
		Topic:   topic,
		Payload: json.RawMessage(`{"shoe_id":"s1"}`),
	}))
}

func TestRelayOnce(t *testing.T) {
	ctx := context.Background()
	cfg := config.Relay{BatchSize: 100, Interval: time.Millisecond}
	logger := slog.Default()

	t.Run("Should produce every unprocessed msg and mark it processed", func(t *testing.T) {
		repo := newTestRepo(t)
		producer := &fakeProducer{}
		svc := NewService(cfg, logger, repo, producer)

		createMsg(t, repo, "shoe.created")
		createMsg(t, repo, "shoe.rated")

		require.NoError(t, svc.relayOnce(ctx))

		assert.ElementsMatch(t, []string{"shoe.created", "shoe.rated"}, producer.producedTopics())

		remaining, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("Should record the produce error and still mark the msg processed", func(t *testing.T) {
		repo := newTestRepo(t)
		producer := &fakeProducer{failFor: map[string]error{"shoe.deleted": errors.New("broker down")}}
		svc := NewService(cfg, logger, repo, producer)

		createMsg(t, repo, "shoe.created")
		createMsg(t, repo, "shoe.deleted")

		require.NoError(t, svc.relayOnce(ctx))

		assert.ElementsMatch(t, []string{"shoe.created"}, producer.producedTopics())

		remaining, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 100})
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("Should do nothing when there is nothing to relay", func(t *testing.T) {
		repo := newTestRepo(t)
		producer := &fakeProducer{}
		svc := NewService(cfg, logger, repo, producer)

		require.NoError(t, svc.relayOnce(ctx))
		assert.Empty(t, producer.producedTopics())
	})
}

func TestRunDrainsPeriodically(t *testing.T) {
	repo := newTestRepo(t)
	producer := &fakeProducer{}
	svc := NewService(config.Relay{BatchSize: 100, Interval: 5 * time.Millisecond}, slog.Default(), repo, producer)

	createMsg(t, repo, "shoe.created")

	cleanup := svc.Run(context.Background())
	defer cleanup()

	require.Eventually(t, func() bool {
		return len(producer.producedTopics()) == 1
	}, time.Second, 5*time.Millisecond)
}
