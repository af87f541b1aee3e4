package repository

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"
)

type fileUploadArgs struct {
	ProductID int64
	Files     []model.Upload
}

type FileAPIRepository struct {
	byProduct *querycache.Query[int64, []model.ProductFile]
	byID      *querycache.Query[int64, model.ProductFile]
	photo     *querycache.Query[int64, model.PhotoFile]

	upload      *querycache.Mutation[fileUploadArgs, model.ProductFile]
	uploadBulk  *querycache.Mutation[fileUploadArgs, struct{}]
	del         *querycache.Mutation[int64, struct{}]
	deletePhoto *querycache.Mutation[int64, struct{}]
}

// DI
func NewFileAPIRepository(ex api.Requester, cache *querycache.Cache) *FileAPIRepository {
	r := &FileAPIRepository{}

	r.byProduct = querycache.NewQuery(cache, querycache.QueryDef[int64, []model.ProductFile]{
		Resource: "getProductFiles",
		Fetch: func(ctx context.Context, productID int64) ([]model.ProductFile, error) {
			return api.Do[[]model.ProductFile](ctx, ex, api.Request{Path: api.ProductFilesPath(productID), WithAuth: true})
		},
		Provides: func(productID int64, _ []model.ProductFile, _ error) []querycache.Tag {
			return []querycache.Tag{productFilesTag(productID)}
		},
	})

	r.byID = querycache.NewQuery(cache, querycache.QueryDef[int64, model.ProductFile]{
		Resource: "getProductFileById",
		Fetch: func(ctx context.Context, fileID int64) (model.ProductFile, error) {
			f, err := api.Do[model.ProductFile](ctx, ex, api.Request{Path: api.ProductFilePath(fileID), WithAuth: true})
			return f, notFound(err)
		},
		Provides: func(fileID int64, _ model.ProductFile, _ error) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagFile, fileID)}
		},
	})

	r.photo = querycache.NewQuery(cache, querycache.QueryDef[int64, model.PhotoFile]{
		Resource: "getPhotoFile",
		Fetch: func(ctx context.Context, photoID int64) (model.PhotoFile, error) {
			f, err := api.Do[model.PhotoFile](ctx, ex, api.Request{Path: api.PhotoFilePath(photoID), WithAuth: true})
			return f, notFound(err)
		},
		Provides: func(photoID int64, _ model.PhotoFile, _ error) []querycache.Tag {
			return []querycache.Tag{photoTag(photoID)}
		},
	})

	r.upload = querycache.NewMutation(cache, querycache.MutationDef[fileUploadArgs, model.ProductFile]{
		Run: func(ctx context.Context, a fileUploadArgs) (model.ProductFile, error) {
			var file model.Upload
			if len(a.Files) > 0 {
				file = a.Files[0]
			}
			return api.Do[model.ProductFile](ctx, ex, api.Request{
				Path:     api.ProductFilesPath(a.ProductID),
				Method:   http.MethodPost,
				Body:     map[string]any{"file": file},
				BodyType: api.BodyForm,
				WithAuth: true,
			})
		},
		Invalidates: func(a fileUploadArgs, _ model.ProductFile) []querycache.Tag {
			return []querycache.Tag{productFilesTag(a.ProductID)}
		},
	})

	r.uploadBulk = querycache.NewMutation(cache, querycache.MutationDef[fileUploadArgs, struct{}]{
		Run: func(ctx context.Context, a fileUploadArgs) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{
				Path:     api.ProductFilesBulkPath(a.ProductID),
				Method:   http.MethodPost,
				Body:     map[string]any{"files": a.Files},
				BodyType: api.BodyForm,
				WithAuth: true,
			})
			return struct{}{}, err
		},
		Invalidates: func(a fileUploadArgs, _ struct{}) []querycache.Tag {
			return []querycache.Tag{productFilesTag(a.ProductID)}
		},
	})

	r.del = querycache.NewMutation(cache, querycache.MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, fileID int64) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{Path: api.DeleteProductFilePath(fileID), Method: http.MethodDelete, WithAuth: true})
			return struct{}{}, notFound(err)
		},
		Invalidates: func(fileID int64, _ struct{}) []querycache.Tag {
			return []querycache.Tag{querycache.ID(querycache.TagFile, fileID)}
		},
	})

	r.deletePhoto = querycache.NewMutation(cache, querycache.MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, photoID int64) (struct{}, error) {
			_, err := ex.Execute(ctx, api.Request{Path: api.PhotoFilePath(photoID), Method: http.MethodDelete, WithAuth: true})
			return struct{}{}, notFound(err)
		},
		Invalidates: func(photoID int64, _ struct{}) []querycache.Tag {
			return []querycache.Tag{photoTag(photoID)}
		},
	})

	return r
}

func productFilesTag(productID int64) querycache.Tag {
	return querycache.ID(querycache.TagFile, fmt.Sprintf("PRODUCT-%d", productID))
}

func photoTag(photoID int64) querycache.Tag {
	return querycache.ID(querycache.TagFile, fmt.Sprintf("PHOTO-%d", photoID))
}

func (r *FileAPIRepository) ListByProduct(ctx context.Context, productID int64) ([]model.ProductFile, error) {
	return r.byProduct.Fetch(ctx, productID)
}

func (r *FileAPIRepository) FindByID(ctx context.Context, fileID int64) (model.ProductFile, error) {
	return r.byID.Fetch(ctx, fileID)
}

func (r *FileAPIRepository) Upload(ctx context.Context, productID int64, file model.Upload) (model.ProductFile, error) {
	return r.upload.Run(ctx, fileUploadArgs{ProductID: productID, Files: []model.Upload{file}})
}

func (r *FileAPIRepository) UploadBulk(ctx context.Context, productID int64, files []model.Upload) error {
	_, err := r.uploadBulk.Run(ctx, fileUploadArgs{ProductID: productID, Files: files})
	return err
}

func (r *FileAPIRepository) Delete(ctx context.Context, fileID int64) error {
	_, err := r.del.Run(ctx, fileID)
	return err
}

func (r *FileAPIRepository) Photo(ctx context.Context, photoID int64) (model.PhotoFile, error) {
	return r.photo.Fetch(ctx, photoID)
}

func (r *FileAPIRepository) DeletePhoto(ctx context.Context, photoID int64) error {
	_, err := r.deletePhoto.Run(ctx, photoID)
	return err
}
