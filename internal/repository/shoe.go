package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trananhvu/shoe-catalog/internal/model"
	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
)

const shoeKeyPrefix = "shoe/"

type ShoeRepository interface {
	WithStore(store kv.Store) ShoeRepository
	GetShoe(ctx context.Context, id string) (model.Shoe, error)
	SaveShoe(ctx context.Context, shoe model.Shoe) error
	DeleteShoe(ctx context.Context, id string) error
	ListShoes(ctx context.Context) ([]model.Shoe, error)
}

type shoeRepository struct {
	store kv.Store
}

func NewShoeRepository(store kv.Store) ShoeRepository {
	return &shoeRepository{store: store}
}

func (r shoeRepository) WithStore(store kv.Store) ShoeRepository {
	return &shoeRepository{store: store}
}

func (r shoeRepository) GetShoe(ctx context.Context, id string) (model.Shoe, error) {
	value, err := r.store.Get(ctx, shoeKey(id))
	if err != nil {
		return model.Shoe{}, fmt.Errorf("get shoe: %w", err)
	}

	var shoe model.Shoe
	if err := json.Unmarshal(value, &shoe); err != nil {
		return model.Shoe{}, fmt.Errorf("unmarshal shoe: %w", err)
	}

	return shoe, nil
}

func (r shoeRepository) SaveShoe(ctx context.Context, shoe model.Shoe) error {
	value, err := json.Marshal(shoe)
	if err != nil {
		return fmt.Errorf("marshal shoe: %w", err)
	}

	if err := r.store.Set(ctx, shoeKey(shoe.ID), value); err != nil {
		return fmt.Errorf("set shoe: %w", err)
	}

	return nil
}

func (r shoeRepository) DeleteShoe(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, shoeKey(id)); err != nil {
		return fmt.Errorf("delete shoe: %w", err)
	}

	return nil
}

// ListShoes returns every shoe in the store, in key order.
func (r shoeRepository) ListShoes(ctx context.Context) ([]model.Shoe, error) {
	entries, err := r.store.List(ctx, []byte(shoeKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("list shoes: %w", err)
	}

	shoes := make([]model.Shoe, 0, len(entries))
	for _, entry := range entries {
		var shoe model.Shoe
		if err := json.Unmarshal(entry.Value, &shoe); err != nil {
			return nil, fmt.Errorf("unmarshal shoe %s: %w", entry.Key, err)
		}
		shoes = append(shoes, shoe)
	}

	return shoes, nil
}

func shoeKey(id string) []byte {
	return []byte(shoeKeyPrefix + id)
}
