package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// アップロード1ファイルの上限
const maxUploadBytes = 20 << 20

type ProductUsecase struct {
	productRepo repo.ProductRepository
	fileRepo    repo.FileRepository
	log         *logrus.Entry
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, fileRepo repo.FileRepository, log *logrus.Entry) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		fileRepo:    fileRepo,
		log:         log.WithField("component", "products"),
	}
}

type AdminCreateProductInput struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Price              *float64 `json:"price"`
	Stock              int64    `json:"stock"`
	RegionID           int64    `json:"regionId"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Developer          string   `json:"developer"`
	Publisher          string   `json:"publisher"`
	Category           string   `json:"category"`
	ReleaseDate        string   `json:"releaseDate"`
}

func validateDiscount(d *float64) error {
	if d != nil && (*d < 0 || *d > 100) {
		return NewHTTPError(http.StatusBadRequest, "discountPercentage must be 0..100")
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminCreateProductInput) (model.Product, error) {
	//必須チェック
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price == nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price required")
	}
	if *in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if err := validateDiscount(in.DiscountPercentage); err != nil {
		return model.Product{}, err
	}

	p, err := u.productRepo.Create(ctx, model.CreateProduct{
		Name:               strings.TrimSpace(in.Name),
		Description:        in.Description,
		Price:              model.AmountFromFloat(*in.Price),
		Stock:              in.Stock,
		RegionID:           in.RegionID,
		DiscountPercentage: in.DiscountPercentage,
		Developer:          strings.TrimSpace(in.Developer),
		Publisher:          strings.TrimSpace(in.Publisher),
		Category:           strings.TrimSpace(in.Category),
		ReleaseDate:        in.ReleaseDate,
	})
	if err != nil {
		return model.Product{}, fromAPIError(err, "create product failed")
	}
	return p, nil
}

// nil のフィールドは変更しない
type AdminUpdateProductInput struct {
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Price              *float64 `json:"price"`
	Stock              *int64   `json:"stock"`
	RegionID           *int64   `json:"regionId"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Developer          *string  `json:"developer"`
	Publisher          *string  `json:"publisher"`
	Category           *string  `json:"category"`
	ReleaseDate        *string  `json:"releaseDate"`
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, productID int64, in AdminUpdateProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price != nil && *in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if err := validateDiscount(in.DiscountPercentage); err != nil {
		return model.Product{}, err
	}

	upd := model.UpdateProduct{
		Description:        in.Description,
		Stock:              in.Stock,
		RegionID:           in.RegionID,
		DiscountPercentage: in.DiscountPercentage,
		Developer:          in.Developer,
		Publisher:          in.Publisher,
		Category:           in.Category,
		ReleaseDate:        in.ReleaseDate,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		upd.Name = &name
	}
	if in.Price != nil {
		a := model.AmountFromFloat(*in.Price)
		upd.Price = &a
	}

	p, err := u.productRepo.Update(ctx, productID, upd)
	if err != nil {
		return model.Product{}, fromAPIError(err, "update product failed")
	}
	return p, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := u.productRepo.Delete(ctx, productID); err != nil {
		return fromAPIError(err, "delete product failed")
	}
	return nil
}

// AdminSetCover は商品のファイルをカバーにする。他の商品のファイルは不可。
func (u *ProductUsecase) AdminSetCover(ctx context.Context, productID, fileID int64) (model.Product, error) {
	if productID <= 0 || fileID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	f, err := u.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		return model.Product{}, fromAPIError(err, "file fetch failed")
	}
	if f.ProductID != nil && *f.ProductID != productID {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "file belongs to another product")
	}

	p, err := u.productRepo.SetCover(ctx, productID, fileID)
	if err != nil {
		return model.Product{}, fromAPIError(err, "set cover failed")
	}
	return p, nil
}

// =====================
// ファイル
// =====================

func (u *ProductUsecase) Files(ctx context.Context, productID int64) ([]model.ProductFile, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	files, err := u.fileRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fromAPIError(err, "files fetch failed")
	}
	return files, nil
}

func checkUpload(f model.Upload) error {
	if strings.TrimSpace(f.FileName) == "" {
		return NewHTTPError(http.StatusBadRequest, "file name required")
	}
	if len(f.Data) == 0 {
		return NewHTTPError(http.StatusBadRequest, "empty file")
	}
	if len(f.Data) > maxUploadBytes {
		return NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	return nil
}

// AdminUpload は1ファイルなら Upload、複数なら UploadBulk を使う。
func (u *ProductUsecase) AdminUpload(ctx context.Context, productID int64, files []model.Upload) ([]model.ProductFile, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if len(files) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "file required")
	}
	for _, f := range files {
		if err := checkUpload(f); err != nil {
			return nil, err
		}
	}

	if len(files) == 1 {
		pf, err := u.fileRepo.Upload(ctx, productID, files[0])
		if err != nil {
			return nil, fromAPIError(err, "upload failed")
		}
		return []model.ProductFile{pf}, nil
	}

	if err := u.fileRepo.UploadBulk(ctx, productID, files); err != nil {
		return nil, fromAPIError(err, "upload failed")
	}
	// bulk はファイル情報を返さないので取り直す
	return u.Files(ctx, productID)
}

func (u *ProductUsecase) AdminDeleteFile(ctx context.Context, fileID int64) error {
	if fileID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid file id")
	}
	if err := u.fileRepo.Delete(ctx, fileID); err != nil {
		return fromAPIError(err, "delete file failed")
	}
	return nil
}
