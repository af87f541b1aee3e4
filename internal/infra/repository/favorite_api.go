package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"
)

type FavoriteAPIRepository struct {
	list  *querycache.Query[noArgs, []model.Favorite]
	check *querycache.Query[int64, bool]

	add    *querycache.Mutation[int64, model.Favorite]
	remove *querycache.Mutation[int64, struct{}]
}

// DI
// トークンが無いあいだは一覧を取りに行かない（NotRequested）。
func NewFavoriteAPIRepository(ex api.Requester, cache *querycache.Cache, tokens api.TokenStore) *FavoriteAPIRepository {
	r := &FavoriteAPIRepository{}

	r.list = querycache.NewQuery(cache, querycache.QueryDef[noArgs, []model.Favorite]{
		Resource: "getFavorites",
		Fetch: func(ctx context.Context, _ noArgs) ([]model.Favorite, error) {
			return api.Do[[]model.Favorite](ctx, ex, api.Request{Path: api.PathFavorites, WithAuth: true})
		},
		Provides: func(noArgs, []model.Favorite, error) []querycache.Tag {
			return []querycache.Tag{querycache.List(querycache.TagFavorite)}
		},
		Skip: func(noArgs) bool {
			_, ok := tokens.Token(context.Background())
			return !ok
		},
	})

	r.check = querycache.NewQuery(cache, querycache.QueryDef[int64, bool]{
		Resource: "checkFavorite",
		Fetch: func(ctx context.Context, productID int64) (bool, error) {
			return api.Do[bool](ctx, ex, api.Request{Path: api.FavoriteCheckPath(productID), WithAuth: true})
		},
		Provides: func(productID int64, _ bool, _ error) []querycache.Tag {
			return []querycache.Tag{favoriteCheckTag(productID)}
		},
	})

	r.add = querycache.NewMutation(cache, querycache.MutationDef[int64, model.Favorite]{
		Run: func(ctx context.Context, productID int64) (model.Favorite, error) {
			return api.Do[model.Favorite](ctx, ex, api.Request{
				Path:     api.FavoritePath(productID),
				Method:   http.MethodPost,
				WithAuth: true,
			})
		},
		Invalidates: func(productID int64, _ model.Favorite) []querycache.Tag {
			return favoriteTags(productID)
		},
	})

	r.remove = querycache.NewMutation(cache, querycache.MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, productID int64) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{
				Path:     api.FavoritePath(productID),
				Method:   http.MethodDelete,
				WithAuth: true,
			})
			return struct{}{}, err
		},
		Invalidates: func(productID int64, _ struct{}) []querycache.Tag {
			return favoriteTags(productID)
		},
	})

	return r
}

func favoriteCheckTag(productID int64) querycache.Tag {
	return querycache.ID(querycache.TagFavorite, fmt.Sprintf("CHECK-%d", productID))
}

func favoriteTags(productID int64) []querycache.Tag {
	return []querycache.Tag{
		querycache.List(querycache.TagFavorite),
		favoriteCheckTag(productID),
	}
}

func (r *FavoriteAPIRepository) List(ctx context.Context) ([]model.Favorite, error) {
	return r.list.Fetch(ctx, noArgs{})
}

// 再取得に失敗しても前回の成功分はエントリに残っている
func (r *FavoriteAPIRepository) Cached() ([]model.Favorite, time.Time, bool) {
	st := r.list.Peek(noArgs{})
	if st.UpdatedAt.IsZero() {
		return nil, time.Time{}, false
	}
	return st.Data, st.UpdatedAt, true
}

func (r *FavoriteAPIRepository) WatchList() *querycache.Subscription[[]model.Favorite] {
	return r.list.Subscribe(noArgs{})
}

func (r *FavoriteAPIRepository) Check(ctx context.Context, productID int64) (bool, error) {
	return r.check.Fetch(ctx, productID)
}

func (r *FavoriteAPIRepository) Add(ctx context.Context, productID int64) (model.Favorite, error) {
	return r.add.Run(ctx, productID)
}

func (r *FavoriteAPIRepository) Remove(ctx context.Context, productID int64) error {
	_, err := r.remove.Run(ctx, productID)
	return err
}
