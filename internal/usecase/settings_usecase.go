package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/i18n"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// SettingsUsecase は言語とダークモード。中身は解釈せずUIに返すだけ。
type SettingsUsecase struct {
	mu       sync.Mutex
	settings model.Settings
	prefs    repo.PreferenceRepository
	log      *logrus.Entry
	changes  changeNotifier
}

// DI
func NewSettingsUsecase(ctx context.Context, defaultLanguage string, prefs repo.PreferenceRepository, log *logrus.Entry) *SettingsUsecase {
	u := &SettingsUsecase{
		settings: model.Settings{Language: i18n.Normalize(defaultLanguage)},
		prefs:    prefs,
		log:      log.WithField("component", "settings"),
	}

	s, err := prefs.Settings(ctx)
	if err != nil {
		u.log.WithError(err).Warn("load settings failed, using defaults")
		return u
	}
	if s.Language != "" {
		u.settings.Language = i18n.Normalize(s.Language)
	}
	u.settings.DarkMode = s.DarkMode
	return u
}

func (u *SettingsUsecase) Get() model.Settings {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.settings
}

func (u *SettingsUsecase) Language() string {
	return u.Get().Language
}

type UpdateSettingsInput struct {
	Language *string `json:"language"`
	DarkMode *bool   `json:"darkMode"`
}

// Update は指定された項目だけ変える。
func (u *SettingsUsecase) Update(ctx context.Context, in UpdateSettingsInput) (model.Settings, error) {
	next, err := u.update(ctx, in)
	if err != nil {
		return next, err
	}
	u.changes.notify()
	return next, nil
}

// Changes は設定が変わるたびに通知する。
func (u *SettingsUsecase) Changes() (<-chan struct{}, func()) {
	return u.changes.Subscribe()
}

func (u *SettingsUsecase) update(ctx context.Context, in UpdateSettingsInput) (model.Settings, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	next := u.settings
	if in.Language != nil {
		lang := strings.TrimSpace(*in.Language)
		if !i18n.Supported(lang) {
			return u.settings, NewHTTPError(http.StatusBadRequest, "unsupported language")
		}
		next.Language = i18n.Normalize(lang)
	}
	if in.DarkMode != nil {
		next.DarkMode = *in.DarkMode
	}

	u.settings = next
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), prefSaveTimeout)
	defer cancel()
	if err := u.prefs.SaveSettings(saveCtx, next); err != nil {
		u.log.WithError(err).Error("save settings failed")
	}
	return next, nil
}
