package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type BillRepository interface {
	List(ctx context.Context) ([]model.Bill, error)
	FindByID(ctx context.Context, id int64) (model.Bill, error)
	ListMine(ctx context.Context) ([]model.Bill, error)

	Create(ctx context.Context, in model.BillCreate) (model.Bill, error)
	Update(ctx context.Context, id int64, in model.BillUpdate) error
	Delete(ctx context.Context, id int64) error
}
