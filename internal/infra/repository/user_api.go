package repository

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"
)

type UserAPIRepository struct {
	profile     *querycache.Query[noArgs, model.UserProfile]
	profileByID *querycache.Query[int64, model.UserProfile]
	list        *querycache.Query[noArgs, []model.User]
	byID        *querycache.Query[int64, model.User]
	products    *querycache.Query[noArgs, []model.Product]

	update *querycache.Mutation[model.UserUpdate, model.UserUpdateResult]
	del    *querycache.Mutation[int64, struct{}]
}

// DI
func NewUserAPIRepository(ex api.Requester, cache *querycache.Cache) *UserAPIRepository {
	r := &UserAPIRepository{}

	r.profile = querycache.NewQuery(cache, querycache.QueryDef[noArgs, model.UserProfile]{
		Resource: "getUserProfile",
		Fetch: func(ctx context.Context, _ noArgs) (model.UserProfile, error) {
			return api.Do[model.UserProfile](ctx, ex, api.Request{Path: api.PathUserProfile, WithAuth: true})
		},
		Provides: func(noArgs, model.UserProfile, error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagUser, "PROFILE")}
		},
	})

	r.profileByID = querycache.NewQuery(cache, querycache.QueryDef[int64, model.UserProfile]{
		Resource: "getUserProfileById",
		Fetch: func(ctx context.Context, id int64) (model.UserProfile, error) {
			p, err := api.Do[model.UserProfile](ctx, ex, api.Request{Path: api.UserProfilePath(id), WithAuth: true})
			return p, notFound(err)
		},
		Provides: func(id int64, _ model.UserProfile, _ error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagUser, fmt.Sprintf("PROFILE-%d", id))}
		},
	})

	r.list = querycache.NewQuery(cache, querycache.QueryDef[noArgs, []model.User]{
		Resource: "getUsers",
		Fetch: func(ctx context.Context, _ noArgs) ([]model.User, error) {
			return api.Do[[]model.User](ctx, ex, api.Request{Path: api.PathUsers, WithAuth: true})
		},
		Provides: func(noArgs, []model.User, error) []querycache.Tag {
			return []querycache.Tag{querycache.List(querycache.TagUser)}
		},
	})

	r.byID = querycache.NewQuery(cache, querycache.QueryDef[int64, model.User]{
		Resource: "getUserById",
		Fetch: func(ctx context.Context, id int64) (model.User, error) {
			u, err := api.Do[model.User](ctx, ex, api.Request{Path: api.UserPath(id), WithAuth: true})
			return u, notFound(err)
		},
		Provides: func(id int64, _ model.User, _ error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagUser, id)}
		},
	})

	r.products = querycache.NewQuery(cache, querycache.QueryDef[noArgs, []model.Product]{
		Resource: "getUserProducts",
		Fetch: func(ctx context.Context, _ noArgs) ([]model.Product, error) {
			return api.Do[[]model.Product](ctx, ex, api.Request{Path: api.PathUserProducts, WithAuth: true})
		},
		Provides: func(noArgs, []model.Product, error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagProduct, "USER-PRODUCTS")}
		},
	})

	r.update = querycache.NewMutation(cache, querycache.MutationDef[model.UserUpdate, model.UserUpdateResult]{
		Run: func(ctx context.Context, in model.UserUpdate) (model.UserUpdateResult, error) {
			form := map[string]any{}
			if in.Username != "" {
				form["username"] = in.Username
			}
			if in.Email != "" {
				form["email"] = in.Email
			}
			if in.Avatar != nil {
				form["avatar"] = in.Avatar
			}
			return api.Do[model.UserUpdateResult](ctx, ex, api.Request{
				Path:     api.PathUserUpdate,
				Method:   http.MethodPut,
				Body:     form,
				BodyType: api.BodyForm,
				WithAuth: true,
			})
		},
		Invalidates: func(model.UserUpdate, model.UserUpdateResult) []querycache.Tag {
			return []querycache.Tag{
				querycache.ID(querycache.TagUser, "PROFILE"),
				querycache.List(querycache.TagUser),
			}
		},
	})

	r.del = querycache.NewMutation(cache, querycache.MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{Path: api.UserPath(id), Method: http.MethodDelete, WithAuth: true})
			return struct{}{}, notFound(err)
		},
		Invalidates: func(int64, struct{}) []querycache.Tag {
			return []querycache.Tag{querycache.List(querycache.TagUser)}
		},
	})

	return r
}

func (r *UserAPIRepository) Profile(ctx context.Context) (model.UserProfile, error) {
	return r.profile.Fetch(ctx, noArgs{})
}

func (r *UserAPIRepository) ProfileByID(ctx context.Context, id int64) (model.UserProfile, error) {
	return r.profileByID.Fetch(ctx, id)
}

func (r *UserAPIRepository) List(ctx context.Context) ([]model.User, error) {
	return r.list.Fetch(ctx, noArgs{})
}

func (r *UserAPIRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	return r.byID.Fetch(ctx, id)
}

func (r *UserAPIRepository) Products(ctx context.Context) ([]model.Product, error) {
	return r.products.Fetch(ctx, noArgs{})
}

func (r *UserAPIRepository) Update(ctx context.Context, in model.UserUpdate) (model.UserUpdateResult, error) {
	return r.update.Run(ctx, in)
}

func (r *UserAPIRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.del.Run(ctx, id)
	return err
}
