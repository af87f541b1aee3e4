package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type UserRepository interface {
	// ログイン中ユーザーのプロフィール
	Profile(ctx context.Context) (model.UserProfile, error)
	ProfileByID(ctx context.Context, id int64) (model.UserProfile, error)
	List(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	// 購入済みの商品
	Products(ctx context.Context) ([]model.Product, error)

	Update(ctx context.Context, in model.UserUpdate) (model.UserUpdateResult, error)
	Delete(ctx context.Context, id int64) error
}
