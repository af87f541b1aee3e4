package repository

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"
)

type billUpdateArgs struct {
	ID   int64
	Data model.BillUpdate
}

type BillAPIRepository struct {
	list     *querycache.Query[noArgs, []model.Bill]
	byID     *querycache.Query[int64, model.Bill]
	listMine *querycache.Query[noArgs, []model.Bill]

	create *querycache.Mutation[model.BillCreate, model.Bill]
	update *querycache.Mutation[billUpdateArgs, struct{}]
	del    *querycache.Mutation[int64, struct{}]
}

// DI
func NewBillAPIRepository(ex api.Requester, cache *querycache.Cache) *BillAPIRepository {
	r := &BillAPIRepository{}

	r.list = querycache.NewQuery(cache, querycache.QueryDef[noArgs, []model.Bill]{
		Resource: "getBills",
		Fetch: func(ctx context.Context, _ noArgs) ([]model.Bill, error) {
			return api.Do[[]model.Bill](ctx, ex, api.Request{Path: api.PathBills, WithAuth: true})
		},
		Provides: func(noArgs, []model.Bill, error) []querycache.Tag {
			return []querycache.Tag{querycache.List(querycache.TagBill)}
		},
	})

	r.byID = querycache.NewQuery(cache, querycache.QueryDef[int64, model.Bill]{
		Resource: "getBillById",
		Fetch: func(ctx context.Context, id int64) (model.Bill, error) {
			b, err := api.Do[model.Bill](ctx, ex, api.Request{Path: api.BillPath(id), WithAuth: true})
			return b, notFound(err)
		},
		Provides: func(id int64, _ model.Bill, _ error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagBill, id)}
		},
	})

	r.listMine = querycache.NewQuery(cache, querycache.QueryDef[noArgs, []model.Bill]{
		Resource: "getUserBills",
		Fetch: func(ctx context.Context, _ noArgs) ([]model.Bill, error) {
			return api.Do[[]model.Bill](ctx, ex, api.Request{Path: api.PathUserBill, WithAuth: true})
		},
		Provides: func(noArgs, []model.Bill, error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagBill, "USER-LIST")}
		},
	})

	r.create = querycache.NewMutation(cache, querycache.MutationDef[model.BillCreate, model.Bill]{
		Run: func(ctx context.Context, in model.BillCreate) (model.Bill, error) {
			return api.Do[model.Bill](ctx, ex, api.Request{
				Path:     api.PathBills,
				Method:   http.MethodPost,
				Body:     in,
				WithAuth: true,
			})
		},
		Invalidates: func(model.BillCreate, model.Bill) []querycache.Tag {
			return []querycache.Tag{
				querycache.List(querycache.TagBill),
				querycache.ID(querycache.TagBill, "USER-LIST"),
			}
		},
	})

	r.update = querycache.NewMutation(cache, querycache.MutationDef[billUpdateArgs, struct{}]{
		Run: func(ctx context.Context, a billUpdateArgs) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{
				Path:     api.BillPath(a.ID),
				Method:   http.MethodPut,
				Body:     a.Data,
				WithAuth: true,
			})
			return struct{}{}, notFound(err)
		},
		Invalidates: func(a billUpdateArgs, _ struct{}) []querycache.Tag {
			return billTags(a.ID)
		},
	})

	r.del = querycache.NewMutation(cache, querycache.MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{Path: api.BillPath(id), Method: http.MethodDelete, WithAuth: true})
			return struct{}{}, notFound(err)
		},
		Invalidates: func(id int64, _ struct{}) []querycache.Tag {
			return billTags(id)
		},
	})

	return r
}

func billTags(id int64) []querycache.Tag {
	return []querycache.Tag{
		querycache.ID(querycache.TagBill, id),
		querycache.List(querycache.TagBill),
		querycache.ID(querycache.TagBill, "USER-LIST"),
	}
}

func (r *BillAPIRepository) List(ctx context.Context) ([]model.Bill, error) {
	return r.list.Fetch(ctx, noArgs{})
}

func (r *BillAPIRepository) FindByID(ctx context.Context, id int64) (model.Bill, error) {
	return r.byID.Fetch(ctx, id)
}

func (r *BillAPIRepository) ListMine(ctx context.Context) ([]model.Bill, error) {
	return r.listMine.Fetch(ctx, noArgs{})
}

func (r *BillAPIRepository) Create(ctx context.Context, in model.BillCreate) (model.Bill, error) {
	return r.create.Run(ctx, in)
}

func (r *BillAPIRepository) Update(ctx context.Context, id int64, in model.BillUpdate) error {
	_, err := r.update.Run(ctx, billUpdateArgs{ID: id, Data: in})
	return err
}

func (r *BillAPIRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.del.Run(ctx, id)
	return err
}
