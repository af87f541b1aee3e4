package repository

import (
	"context"

	"storefront/internal/domain/model"
	"storefront/internal/querycache"
)

// 商品（ストアAPI）
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 一覧の購読（無効化されると新しい一覧が届く）
	WatchList() *querycache.Subscription[[]model.Product]

	Create(ctx context.Context, in model.CreateProduct) (model.Product, error)
	Update(ctx context.Context, id int64, in model.UpdateProduct) (model.Product, error)
	Delete(ctx context.Context, id int64) error
	SetCover(ctx context.Context, id int64, coverFileID int64) (model.Product, error)
}
