package repository

import (
	"context"
	"errors"
)

// 保存キー
const (
	KeyAuthToken       = "authToken"
	KeyCartItems       = "cartItems"
	KeySelectedCountry = "selectedCountry"
	KeyLanguage        = "language"
	KeyDarkMode        = "darkMode"
)

var ErrNotFound = errors.New("not found")

// KVStore はブラウザの localStorage 相当の永続キー/値ストア。
// 無いキーは (nil, false, nil)。
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
