package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trananhvu/shoe-catalog/internal/config"
	"github.com/trananhvu/shoe-catalog/internal/event"
	"github.com/trananhvu/shoe-catalog/internal/model"
	"github.com/trananhvu/shoe-catalog/internal/repository"
	"github.com/trananhvu/shoe-catalog/internal/service"
	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
	"github.com/trananhvu/shoe-catalog/pkg/zerror"
)

type testEnv struct {
	svc        service.ShoeService
	shoeRepo   repository.ShoeRepository
	outboxRepo repository.OutboxMsgRepository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := kv.NewBadgerDB(config.Badger{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	client := kv.NewClient(db)
	shoeRepo := repository.NewShoeRepository(client)
	outboxRepo := repository.NewOutboxMsgRepository(client)

	svc := service.NewShoeService(client, shoeRepo, outboxRepo, service.UUIDGenerator{}, service.NewSystemClock())

	return testEnv{
		svc:        svc,
		shoeRepo:   shoeRepo,
		outboxRepo: outboxRepo,
	}
}

func validPayload() model.ShoePayload {
	return model.ShoePayload{
		Name:     "AirMax",
		Size:     "42",
		ShoeURL:  "https://example.com/airmax.png",
		Price:    100,
		Quantity: "5",
	}
}

func requireZError(t *testing.T, err error, status zerror.Status, msg string) {
	t.Helper()

	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, status, zErr.Status())
	if msg != "" {
		assert.Equal(t, msg, zErr.Msg())
	}
}

func TestCreateShoe(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create shoe with fresh id, default rating and no updated_at", func(t *testing.T) {
		env := newTestEnv(t)

		shoe, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		assert.NotEmpty(t, shoe.ID)
		assert.Equal(t, "AirMax", shoe.Name)
		assert.Equal(t, "42", shoe.Size)
		assert.Equal(t, int16(100), shoe.Price)
		assert.Equal(t, "5", shoe.Quantity)
		assert.Equal(t, float32(1.0), shoe.Rating)
		assert.NotZero(t, shoe.CreatedAt)
		assert.Nil(t, shoe.UpdatedAt)

		stored, err := env.shoeRepo.GetShoe(ctx, shoe.ID)
		require.NoError(t, err)
		assert.Equal(t, shoe, stored)
	})

	t.Run("Should generate distinct ids", func(t *testing.T) {
		env := newTestEnv(t)

		seen := map[string]struct{}{}
		for range 10 {
			shoe, err := env.svc.CreateShoe(ctx, validPayload())
			require.NoError(t, err)

			_, dup := seen[shoe.ID]
			require.False(t, dup)
			seen[shoe.ID] = struct{}{}
		}
	})

	t.Run("Should write a shoe created outbox msg", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		msgs, err := env.outboxRepo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, event.TopicShoeCreated, msgs[0].Topic)
	})

	t.Run("Should reject non-positive price and leave the map unchanged", func(t *testing.T) {
		env := newTestEnv(t)

		payload := validPayload()
		payload.Price = 0

		_, err := env.svc.CreateShoe(ctx, payload)
		requireZError(t, err, zerror.StatusValidationFailed, "Price must be greater than 0")

		shoes, err := env.svc.ListAllShoes(ctx)
		require.NoError(t, err)
		assert.Empty(t, shoes)
	})

	t.Run("Should reject blank quantity and leave the map unchanged", func(t *testing.T) {
		env := newTestEnv(t)

		payload := validPayload()
		payload.Quantity = "   "

		_, err := env.svc.CreateShoe(ctx, payload)
		requireZError(t, err, zerror.StatusValidationFailed, "Quantity cannot be empty")

		shoes, err := env.svc.ListAllShoes(ctx)
		require.NoError(t, err)
		assert.Empty(t, shoes)
	})
}

func TestGetShoe(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the created record unchanged", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		got, err := env.svc.GetShoe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("Should return not found for a missing id", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.GetShoe(ctx, "missing-id")
		requireZError(t, err, zerror.StatusNotFound, "shoe with id=missing-id not found")
	})
}

func TestUpdateShoe(t *testing.T) {
	ctx := context.Background()

	t.Run("Should merge payload fields and refresh updated_at only", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		updated, err := env.svc.UpdateShoe(ctx, created.ID, model.ShoePayload{
			Name:     "AirMax2",
			Size:     "43",
			ShoeURL:  "https://example.com/airmax2.png",
			Price:    120,
			Quantity: "3",
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "AirMax2", updated.Name)
		assert.Equal(t, "43", updated.Size)
		assert.Equal(t, int16(120), updated.Price)
		assert.Equal(t, "3", updated.Quantity)
		assert.Equal(t, created.Rating, updated.Rating)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		require.NotNil(t, updated.UpdatedAt)
		assert.GreaterOrEqual(t, *updated.UpdatedAt, created.CreatedAt)

		stored, err := env.svc.GetShoe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("Should not decrease updated_at across successive updates", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		first, err := env.svc.UpdateShoe(ctx, created.ID, validPayload())
		require.NoError(t, err)
		second, err := env.svc.UpdateShoe(ctx, created.ID, validPayload())
		require.NoError(t, err)

		require.NotNil(t, first.UpdatedAt)
		require.NotNil(t, second.UpdatedAt)
		assert.GreaterOrEqual(t, *second.UpdatedAt, *first.UpdatedAt)
	})

	t.Run("Should return not found without mutating the map", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.UpdateShoe(ctx, "missing-id", validPayload())
		requireZError(t, err, zerror.StatusNotFound, "shoe with id=missing-id not found")

		shoes, err := env.svc.ListAllShoes(ctx)
		require.NoError(t, err)
		assert.Empty(t, shoes)
	})

	t.Run("Should reject an invalid payload and keep the stored record", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		payload := validPayload()
		payload.Price = -1

		_, err = env.svc.UpdateShoe(ctx, created.ID, payload)
		requireZError(t, err, zerror.StatusValidationFailed, "Price must be greater than 0")

		stored, err := env.svc.GetShoe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, stored)
	})
}

func TestDeleteShoe(t *testing.T) {
	ctx := context.Background()

	t.Run("Should remove and return the record", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		removed, err := env.svc.DeleteShoe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, removed)

		_, err = env.svc.GetShoe(ctx, created.ID)
		requireZError(t, err, zerror.StatusNotFound, "")
	})

	t.Run("Should return not found for a missing id", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.DeleteShoe(ctx, "missing-id")
		requireZError(t, err, zerror.StatusNotFound, "shoe with id=missing-id not found")
	})
}

func TestRateShoe(t *testing.T) {
	ctx := context.Background()

	t.Run("Should blend the rate into the rating", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		// (1.0 + 4) / 4
		rated, err := env.svc.RateShoe(ctx, created.ID, 4)
		require.NoError(t, err)
		assert.InDelta(t, 1.25, rated.Rating, 1e-6)
		assert.Nil(t, rated.UpdatedAt)

		// (1.25 + 4) / 4
		rated, err = env.svc.RateShoe(ctx, created.ID, 4)
		require.NoError(t, err)
		assert.InDelta(t, 1.3125, rated.Rating, 1e-6)
	})

	t.Run("Should reject out of range rates and keep the stored rating", func(t *testing.T) {
		env := newTestEnv(t)

		created, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		for _, rate := range []float32{-0.5, 4.5} {
			_, err := env.svc.RateShoe(ctx, created.ID, rate)
			requireZError(t, err, zerror.StatusValidationFailed, "Rating must be between 0 and 4")
		}

		stored, err := env.svc.GetShoe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, float32(1.0), stored.Rating)
	})

	t.Run("Should return not found for a missing id", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.RateShoe(ctx, "missing-id", 2)
		requireZError(t, err, zerror.StatusNotFound, "")
	})
}

func TestSearchShoes(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject a blank keyword", func(t *testing.T) {
		env := newTestEnv(t)

		for _, keyword := range []string{"", "   "} {
			_, err := env.svc.SearchShoes(ctx, keyword)
			requireZError(t, err, zerror.StatusValidationFailed, "Keyword cannot be empty")
		}
	})

	t.Run("Should match names case-sensitively", func(t *testing.T) {
		env := newTestEnv(t)

		for _, name := range []string{"AirMax", "AirForce", "Pegasus"} {
			payload := validPayload()
			payload.Name = name
			_, err := env.svc.CreateShoe(ctx, payload)
			require.NoError(t, err)
		}

		matches, err := env.svc.SearchShoes(ctx, "Air")
		require.NoError(t, err)
		require.Len(t, matches, 2)
		for _, shoe := range matches {
			assert.Contains(t, shoe.Name, "Air")
		}

		matches, err = env.svc.SearchShoes(ctx, "air")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Should return an empty collection when nothing matches", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.CreateShoe(ctx, validPayload())
		require.NoError(t, err)

		matches, err := env.svc.SearchShoes(ctx, "Boot")
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})
}

func TestShoeLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.svc.CreateShoe(ctx, validPayload())
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), created.Rating)

	rated, err := env.svc.RateShoe(ctx, created.ID, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, rated.Rating, 1e-6)

	payload := validPayload()
	payload.Name = "AirMax2"
	updated, err := env.svc.UpdateShoe(ctx, created.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, "AirMax2", updated.Name)
	assert.InDelta(t, 1.25, updated.Rating, 1e-6)
	assert.NotNil(t, updated.UpdatedAt)

	removed, err := env.svc.DeleteShoe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, removed)

	_, err = env.svc.GetShoe(ctx, created.ID)
	requireZError(t, err, zerror.StatusNotFound, "")

	shoes, err := env.svc.ListAllShoes(ctx)
	require.NoError(t, err)
	assert.Empty(t, shoes)
}
