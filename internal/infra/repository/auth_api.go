package repository

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
)

type AuthAPIRepository struct {
	ex api.Requester
}

// DI
func NewAuthAPIRepository(ex api.Requester) *AuthAPIRepository {
	return &AuthAPIRepository{ex: ex}
}

// ログインはトークン無しで送る（401 でも保存済みトークンは消さない）
func (r *AuthAPIRepository) Login(ctx context.Context, in model.UserLogin) (model.AuthToken, error) {
	return api.Do[model.AuthToken](ctx, r.ex, api.Request{
		Path:   api.PathLogin,
		Method: http.MethodPost,
		Body:   in,
	})
}

func (r *AuthAPIRepository) Register(ctx context.Context, in model.UserRegister) (model.AuthToken, error) {
	return api.Do[model.AuthToken](ctx, r.ex, api.Request{
		Path:   api.PathRegister,
		Method: http.MethodPost,
		Body:   in,
	})
}
