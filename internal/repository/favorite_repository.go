package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/querycache"
)

// お気に入り。トークンが無いとき List は querycache.ErrSkipped を返す。
type FavoriteRepository interface {
	List(ctx context.Context) ([]model.Favorite, error)
	// Cached は最後に成功した一覧とその取得時刻。一度も成功していなければ false。
	Cached() ([]model.Favorite, time.Time, bool)
	// 一覧の購読（無効化されると新しい一覧が届く）
	WatchList() *querycache.Subscription[[]model.Favorite]

	Check(ctx context.Context, productID int64) (bool, error)
	Add(ctx context.Context, productID int64) (model.Favorite, error)
	Remove(ctx context.Context, productID int64) error
}
