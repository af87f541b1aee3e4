package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/go-faster/errors"
)

// PreferenceKVRepository は通貨選択（selectedCountry）と
// 言語（language）・ダークモード（darkMode）を保存する。
type PreferenceKVRepository struct {
	store repo.KVStore
}

// DI
func NewPreferenceKVRepository(store repo.KVStore) *PreferenceKVRepository {
	return &PreferenceKVRepository{store: store}
}

func (r *PreferenceKVRepository) Country(ctx context.Context) (model.Country, bool, error) {
	b, ok, err := r.store.Get(ctx, repo.KeySelectedCountry)
	if err != nil || !ok {
		return model.Country{}, false, err
	}
	var c model.Country
	if err := json.Unmarshal(b, &c); err != nil {
		return model.Country{}, false, errors.Wrap(err, "decode selected country")
	}
	return c, true, nil
}

func (r *PreferenceKVRepository) SaveCountry(ctx context.Context, c model.Country) error {
	b, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode selected country")
	}
	return r.store.Set(ctx, repo.KeySelectedCountry, b)
}

// Settings は未保存の項目をゼロ値のまま返す。
func (r *PreferenceKVRepository) Settings(ctx context.Context) (model.Settings, error) {
	var s model.Settings

	lang, ok, err := r.store.Get(ctx, repo.KeyLanguage)
	if err != nil {
		return s, err
	}
	if ok {
		s.Language = string(lang)
	}

	dark, ok, err := r.store.Get(ctx, repo.KeyDarkMode)
	if err != nil {
		return s, err
	}
	if ok {
		s.DarkMode, _ = strconv.ParseBool(string(dark))
	}
	return s, nil
}

func (r *PreferenceKVRepository) SaveSettings(ctx context.Context, s model.Settings) error {
	if err := r.store.Set(ctx, repo.KeyLanguage, []byte(s.Language)); err != nil {
		return err
	}
	return r.store.Set(ctx, repo.KeyDarkMode, []byte(strconv.FormatBool(s.DarkMode)))
}
