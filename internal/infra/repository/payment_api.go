package repository

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"
)

type PaymentAPIRepository struct {
	create   *querycache.Mutation[int64, model.PaymentIntent]
	update   *querycache.Mutation[model.UpdatePaymentRequest, model.PaymentIntent]
	complete *querycache.Mutation[string, struct{}]
}

func paymentTags() []querycache.Tag {
	return []querycache.Tag{querycache.List(querycache.TagPayment)}
}

// DI
// create / complete はIDをそのままJSONで送る（42, "pi_123"）。
func NewPaymentAPIRepository(ex api.Requester, cache *querycache.Cache) *PaymentAPIRepository {
	r := &PaymentAPIRepository{}

	r.create = querycache.NewMutation(cache, querycache.MutationDef[int64, model.PaymentIntent]{
		Run: func(ctx context.Context, billID int64) (model.PaymentIntent, error) {
			return api.Do[model.PaymentIntent](ctx, ex, api.Request{
				Path:     api.PathStripeCreate,
				Method:   http.MethodPost,
				Body:     billID,
				BodyType: api.BodyRaw,
				WithAuth: true,
			})
		},
		Invalidates: func(int64, model.PaymentIntent) []querycache.Tag { return paymentTags() },
	})

	r.update = querycache.NewMutation(cache, querycache.MutationDef[model.UpdatePaymentRequest, model.PaymentIntent]{
		Run: func(ctx context.Context, in model.UpdatePaymentRequest) (model.PaymentIntent, error) {
			return api.Do[model.PaymentIntent](ctx, ex, api.Request{
				Path:     api.PathStripeUpdateStatus,
				Method:   http.MethodPost,
				Body:     in,
				WithAuth: true,
			})
		},
		Invalidates: func(model.UpdatePaymentRequest, model.PaymentIntent) []querycache.Tag { return paymentTags() },
	})

	r.complete = querycache.NewMutation(cache, querycache.MutationDef[string, struct{}]{
		Run: func(ctx context.Context, paymentIntentID string) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{
				Path:     api.PathStripeComplete,
				Method:   http.MethodPost,
				Body:     paymentIntentID,
				BodyType: api.BodyRaw,
				WithAuth: true,
			})
			return struct{}{}, err
		},
		Invalidates: func(string, struct{}) []querycache.Tag { return paymentTags() },
	})

	return r
}

func (r *PaymentAPIRepository) CreateIntent(ctx context.Context, billID int64) (model.PaymentIntent, error) {
	return r.create.Run(ctx, billID)
}

func (r *PaymentAPIRepository) UpdateStatus(ctx context.Context, in model.UpdatePaymentRequest) (model.PaymentIntent, error) {
	return r.update.Run(ctx, in)
}

func (r *PaymentAPIRepository) Complete(ctx context.Context, paymentIntentID string) error {
	_, err := r.complete.Run(ctx, paymentIntentID)
	return err
}
