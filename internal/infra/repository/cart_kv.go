package repository

import (
	"context"
	"encoding/json"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/go-faster/errors"
)

// CartKVRepository はカート明細を "cartItems" に JSON 配列で保存する。
type CartKVRepository struct {
	store repo.KVStore
}

// DI
func NewCartKVRepository(store repo.KVStore) *CartKVRepository {
	return &CartKVRepository{store: store}
}

// Load は未保存なら空。壊れたデータはエラーで返す（呼び出し側で空カートにする）。
func (r *CartKVRepository) Load(ctx context.Context) ([]model.CartLineItem, error) {
	b, ok, err := r.store.Get(ctx, repo.KeyCartItems)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if !ok || len(b) == 0 {
		return []model.CartLineItem{}, nil
	}

	var items []model.CartLineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	if items == nil {
		items = []model.CartLineItem{}
	}
	return items, nil
}

func (r *CartKVRepository) Save(ctx context.Context, items []model.CartLineItem) error {
	if items == nil {
		items = []model.CartLineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := r.store.Set(ctx, repo.KeyCartItems, b); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
