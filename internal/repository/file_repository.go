package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type FileRepository interface {
	ListByProduct(ctx context.Context, productID int64) ([]model.ProductFile, error)
	FindByID(ctx context.Context, fileID int64) (model.ProductFile, error)
	Upload(ctx context.Context, productID int64, file model.Upload) (model.ProductFile, error)
	UploadBulk(ctx context.Context, productID int64, files []model.Upload) error
	Delete(ctx context.Context, fileID int64) error

	Photo(ctx context.Context, photoID int64) (model.PhotoFile, error)
	DeletePhoto(ctx context.Context, photoID int64) error
}
