package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/trananhvu/shoe-catalog/internal/apperr"
	"github.com/trananhvu/shoe-catalog/internal/event"
	"github.com/trananhvu/shoe-catalog/internal/model"
	"github.com/trananhvu/shoe-catalog/internal/repository"
	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
	"github.com/trananhvu/shoe-catalog/pkg/outbox"
	"github.com/trananhvu/shoe-catalog/pkg/ptr"
)

const (
	minRating float32 = 0
	maxRating float32 = 4
)

type ShoeService interface {
	CreateShoe(ctx context.Context, payload model.ShoePayload) (model.Shoe, error)
	ListAllShoes(ctx context.Context) ([]model.Shoe, error)
	GetShoe(ctx context.Context, id string) (model.Shoe, error)
	UpdateShoe(ctx context.Context, id string, payload model.ShoePayload) (model.Shoe, error)
	DeleteShoe(ctx context.Context, id string) (model.Shoe, error)
	SearchShoes(ctx context.Context, keyword string) ([]model.Shoe, error)
	RateShoe(ctx context.Context, id string, rate float32) (model.Shoe, error)
}

type shoeService struct {
	store         kv.Store
	shoeRepo      repository.ShoeRepository
	outboxMsgRepo repository.OutboxMsgRepository
	idGen         IDGenerator
	clock         Clock
}

func NewShoeService(
	store kv.Store,
	shoeRepo repository.ShoeRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	idGen IDGenerator,
	clock Clock,
) ShoeService {
	return &shoeService{
		store:         store,
		shoeRepo:      shoeRepo,
		outboxMsgRepo: outboxMsgRepo,
		idGen:         idGen,
		clock:         clock,
	}
}

func (s *shoeService) CreateShoe(ctx context.Context, payload model.ShoePayload) (model.Shoe, error) {
	if err := validatePayload(payload); err != nil {
		return model.Shoe{}, err
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return model.Shoe{}, fmt.Errorf("generate id: %w", err)
	}

	shoe := model.Shoe{
		ID:        id,
		Name:      payload.Name,
		Size:      payload.Size,
		ShoeURL:   payload.ShoeURL,
		Price:     payload.Price,
		Quantity:  payload.Quantity,
		Rating:    model.DefaultRating,
		CreatedAt: s.clock.Now(),
	}

	ev := event.ShoeCreatedEvent{
		ShoeID:   shoe.ID,
		Name:     shoe.Name,
		Size:     shoe.Size,
		ShoeURL:  shoe.ShoeURL,
		Price:    shoe.Price,
		Quantity: shoe.Quantity,
		Rating:   shoe.Rating,
	}

	if err := s.store.WithTx(ctx, func(store kv.Store) error {
		if err := s.shoeRepo.
			WithStore(store).
			SaveShoe(ctx, shoe); err != nil {
			return fmt.Errorf("shoe repository save shoe: %w", err)
		}

		if err := s.createOutboxMsg(ctx, store, event.TopicShoeCreated, shoe.ID, ev); err != nil {
			return err
		}

		return nil
	}); err != nil {
		return model.Shoe{}, fmt.Errorf("store with tx: %w", err)
	}

	return shoe, nil
}

func (s *shoeService) ListAllShoes(ctx context.Context) ([]model.Shoe, error) {
	shoes, err := s.shoeRepo.ListShoes(ctx)
	if err != nil {
		return nil, fmt.Errorf("shoe repository list shoes: %w", err)
	}

	return shoes, nil
}

func (s *shoeService) GetShoe(ctx context.Context, id string) (model.Shoe, error) {
	shoe, err := s.shoeRepo.GetShoe(ctx, id)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return model.Shoe{}, apperr.NewShoeNotFound(id)
	}
	if err != nil {
		return model.Shoe{}, fmt.Errorf("shoe repository get shoe: %w", err)
	}

	return shoe, nil
}

func (s *shoeService) UpdateShoe(ctx context.Context, id string, payload model.ShoePayload) (model.Shoe, error) {
	var updated model.Shoe

	if err := s.store.WithTx(ctx, func(store kv.Store) error {
		shoeRepo := s.shoeRepo.WithStore(store)

		shoe, err := shoeRepo.GetShoe(ctx, id)
		if errors.Is(err, kv.ErrKeyNotFound) {
			return apperr.NewShoeNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("shoe repository get shoe: %w", err)
		}

		if err := validatePayload(payload); err != nil {
			return err
		}

		// Merge the payload over the record; id, created_at and rating
		// stay untouched.
		shoe.Name = payload.Name
		shoe.Size = payload.Size
		shoe.ShoeURL = payload.ShoeURL
		shoe.Price = payload.Price
		shoe.Quantity = payload.Quantity
		shoe.UpdatedAt = ptr.New(s.clock.Now())

		if err := shoeRepo.SaveShoe(ctx, shoe); err != nil {
			return fmt.Errorf("shoe repository save shoe: %w", err)
		}

		ev := event.ShoeUpdatedEvent{
			ShoeID:   shoe.ID,
			Name:     shoe.Name,
			Size:     shoe.Size,
			ShoeURL:  shoe.ShoeURL,
			Price:    shoe.Price,
			Quantity: shoe.Quantity,
		}
		if err := s.createOutboxMsg(ctx, store, event.TopicShoeUpdated, shoe.ID, ev); err != nil {
			return err
		}

		updated = shoe
		return nil
	}); err != nil {
		return model.Shoe{}, err
	}

	return updated, nil
}

func (s *shoeService) DeleteShoe(ctx context.Context, id string) (model.Shoe, error) {
	var removed model.Shoe

	if err := s.store.WithTx(ctx, func(store kv.Store) error {
		shoeRepo := s.shoeRepo.WithStore(store)

		shoe, err := shoeRepo.GetShoe(ctx, id)
		if errors.Is(err, kv.ErrKeyNotFound) {
			return apperr.NewShoeNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("shoe repository get shoe: %w", err)
		}

		if err := shoeRepo.DeleteShoe(ctx, id); err != nil {
			return fmt.Errorf("shoe repository delete shoe: %w", err)
		}

		ev := event.ShoeDeletedEvent{ShoeID: shoe.ID}
		if err := s.createOutboxMsg(ctx, store, event.TopicShoeDeleted, shoe.ID, ev); err != nil {
			return err
		}

		removed = shoe
		return nil
	}); err != nil {
		return model.Shoe{}, err
	}

	return removed, nil
}

// SearchShoes returns the shoes whose name contains keyword as a
// case-sensitive substring. A full linear scan is fine at catalog scale.
func (s *shoeService) SearchShoes(ctx context.Context, keyword string) ([]model.Shoe, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, apperr.NewValidation("Keyword cannot be empty")
	}

	shoes, err := s.shoeRepo.ListShoes(ctx)
	if err != nil {
		return nil, fmt.Errorf("shoe repository list shoes: %w", err)
	}

	matches := make([]model.Shoe, 0, len(shoes))
	for _, shoe := range shoes {
		if strings.Contains(shoe.Name, keyword) {
			matches = append(matches, shoe)
		}
	}

	return matches, nil
}

func (s *shoeService) RateShoe(ctx context.Context, id string, rate float32) (model.Shoe, error) {
	if rate < minRating || rate > maxRating {
		return model.Shoe{}, apperr.NewValidation("Rating must be between 0 and 4")
	}

	var rated model.Shoe

	if err := s.store.WithTx(ctx, func(store kv.Store) error {
		shoeRepo := s.shoeRepo.WithStore(store)

		shoe, err := shoeRepo.GetShoe(ctx, id)
		if errors.Is(err, kv.ErrKeyNotFound) {
			return apperr.NewShoeNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("shoe repository get shoe: %w", err)
		}

		// Deliberate blend, not a running mean: repeated calls converge
		// toward the most recent rate. updated_at stays untouched.
		shoe.Rating = (shoe.Rating + rate) / 4

		if err := shoeRepo.SaveShoe(ctx, shoe); err != nil {
			return fmt.Errorf("shoe repository save shoe: %w", err)
		}

		ev := event.ShoeRatedEvent{ShoeID: shoe.ID, Rating: shoe.Rating}
		if err := s.createOutboxMsg(ctx, store, event.TopicShoeRated, shoe.ID, ev); err != nil {
			return err
		}

		rated = shoe
		return nil
	}); err != nil {
		return model.Shoe{}, err
	}

	return rated, nil
}

func (s *shoeService) createOutboxMsg(ctx context.Context, store kv.Store, topic, shoeID string, ev any) error {
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithStore(store).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(shoeID),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func validatePayload(payload model.ShoePayload) error {
	if payload.Price <= 0 {
		return apperr.NewValidation("Price must be greater than 0")
	}
	if strings.TrimSpace(payload.Quantity) == "" {
		return apperr.NewValidation("Quantity cannot be empty")
	}
	return nil
}
