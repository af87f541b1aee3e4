package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カート明細の保存・読み込みだけを約束。
type CartRepository interface {
	Load(ctx context.Context) ([]model.CartLineItem, error)
	Save(ctx context.Context, items []model.CartLineItem) error
}
