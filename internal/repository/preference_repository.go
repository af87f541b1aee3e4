package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 選択中の通貨とUI設定の保存。
type PreferenceRepository interface {
	Country(ctx context.Context) (model.Country, bool, error)
	SaveCountry(ctx context.Context, c model.Country) error
	Settings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
}
