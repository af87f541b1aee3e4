package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ログイン・登録（トークン不要）
type AuthRepository interface {
	Login(ctx context.Context, in model.UserLogin) (model.AuthToken, error)
	Register(ctx context.Context, in model.UserRegister) (model.AuthToken, error)
}
