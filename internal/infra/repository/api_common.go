package repository

import (
	"fmt"

	"storefront/internal/infra/api"
	repo "storefront/internal/repository"
)

// 引数なしクエリのパラメータ
type noArgs struct{}

// 404 は repo.ErrNotFound でも判定できるようにする（*api.Error も残す）
func notFound(err error) error {
	if api.IsKind(err, api.KindNotFound) {
		return fmt.Errorf("%w: %w", repo.ErrNotFound, err)
	}
	return err
}
