package repository

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"
)

type productUpdateArgs struct {
	ID   int64
	Data model.UpdateProduct
}

type productCoverArgs struct {
	ID          int64
	CoverFileID int64
}

type ProductAPIRepository struct {
	list *querycache.Query[noArgs, []model.Product]
	byID *querycache.Query[int64, model.Product]

	create *querycache.Mutation[model.CreateProduct, model.Product]
	update *querycache.Mutation[productUpdateArgs, model.Product]
	del    *querycache.Mutation[int64, struct{}]
	cover  *querycache.Mutation[productCoverArgs, model.Product]
}

// DI
// カタログは未ログインでも見られるので一覧・詳細はトークンを付けない。
func NewProductAPIRepository(ex api.Requester, cache *querycache.Cache) *ProductAPIRepository {
	r := &ProductAPIRepository{}

	r.list = querycache.NewQuery(cache, querycache.QueryDef[noArgs, []model.Product]{
		Resource: "getProducts",
		Fetch: func(ctx context.Context, _ noArgs) ([]model.Product, error) {
			return api.Do[[]model.Product](ctx, ex, api.Request{Path: api.PathProducts})
		},
		Provides: func(noArgs, []model.Product, error) []querycache.Tag {
			return []querycache.Tag{querycache.List(querycache.TagProduct)}
		},
	})

	r.byID = querycache.NewQuery(cache, querycache.QueryDef[int64, model.Product]{
		Resource: "getProductById",
		Fetch: func(ctx context.Context, id int64) (model.Product, error) {
			p, err := api.Do[model.Product](ctx, ex, api.Request{Path: api.ProductPath(id)})
			return p, notFound(err)
		},
		Provides: func(id int64, _ model.Product, _ error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagProduct, id)}
		},
	})

	r.create = querycache.NewMutation(cache, querycache.MutationDef[model.CreateProduct, model.Product]{
		Run: func(ctx context.Context, in model.CreateProduct) (model.Product, error) {
			return api.Do[model.Product](ctx, ex, api.Request{
				Path:     api.PathProducts,
				Method:   http.MethodPost,
				Body:     in,
				WithAuth: true,
			})
		},
		Invalidates: func(model.CreateProduct, model.Product) []querycache.Tag {
			return []querycache.Tag{querycache.List(querycache.TagProduct)}
		},
	})

	r.update = querycache.NewMutation(cache, querycache.MutationDef[productUpdateArgs, model.Product]{
		Run: func(ctx context.Context, a productUpdateArgs) (model.Product, error) {
			p, err := api.Do[model.Product](ctx, ex, api.Request{
				Path:     api.ProductPath(a.ID),
				Method:   http.MethodPut,
				Body:     a.Data,
				WithAuth: true,
			})
			return p, notFound(err)
		},
		Invalidates: func(a productUpdateArgs, _ model.Product) []querycache.Tag {
			return productTags(a.ID)
		},
	})

	r.del = querycache.NewMutation(cache, querycache.MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{
				Path:     api.ProductPath(id),
				Method:   http.MethodDelete,
				WithAuth: true,
			})
			return struct{}{}, notFound(err)
		},
		Invalidates: func(id int64, _ struct{}) []querycache.Tag {
			return productTags(id)
		},
	})

	r.cover = querycache.NewMutation(cache, querycache.MutationDef[productCoverArgs, model.Product]{
		Run: func(ctx context.Context, a productCoverArgs) (model.Product, error) {
			p, err := api.Do[model.Product](ctx, ex, api.Request{
				Path:     api.ProductCoverPath(a.ID, a.CoverFileID),
				Method:   http.MethodPut,
				WithAuth: true,
			})
			return p, notFound(err)
		},
		Invalidates: func(a productCoverArgs, _ model.Product) []querycache.Tag {
			return productTags(a.ID)
		},
	})

	return r
}

func productTags(id int64) []querycache.Tag {
	return []querycache.Tag{
		querycache.ID(querycache.TagProduct, id),
		querycache.List(querycache.TagProduct),
	}
}

func (r *ProductAPIRepository) List(ctx context.Context) ([]model.Product, error) {
	return r.list.Fetch(ctx, noArgs{})
}

func (r *ProductAPIRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	return r.byID.Fetch(ctx, id)
}

func (r *ProductAPIRepository) WatchList() *querycache.Subscription[[]model.Product] {
	return r.list.Subscribe(noArgs{})
}

func (r *ProductAPIRepository) Create(ctx context.Context, in model.CreateProduct) (model.Product, error) {
	return r.create.Run(ctx, in)
}

func (r *ProductAPIRepository) Update(ctx context.Context, id int64, in model.UpdateProduct) (model.Product, error) {
	return r.update.Run(ctx, productUpdateArgs{ID: id, Data: in})
}

func (r *ProductAPIRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.del.Run(ctx, id)
	return err
}

func (r *ProductAPIRepository) SetCover(ctx context.Context, id int64, coverFileID int64) (model.Product, error) {
	return r.cover.Run(ctx, productCoverArgs{ID: id, CoverFileID: coverFileID})
}
