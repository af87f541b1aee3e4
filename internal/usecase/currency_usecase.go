package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// CurrencyUsecase は選択中の通貨を1つだけ持つ。
type CurrencyUsecase struct {
	mu        sync.Mutex
	countries []model.Country
	selected  model.Country
	prefs     repo.PreferenceRepository
	log       *logrus.Entry
	changes   changeNotifier
}

// ローカル保存（カート・通貨・設定）はリクエストが切れても終える
const prefSaveTimeout = 5 * time.Second

// DI
// 保存済みの選択は nameKey で表から引き直す（レートは表の値を使う）。
// 無い・読めない・表に無いときは先頭（基準通貨）。
func NewCurrencyUsecase(ctx context.Context, countries []model.Country, prefs repo.PreferenceRepository, log *logrus.Entry) *CurrencyUsecase {
	if len(countries) == 0 {
		countries = pricing.DefaultCountries()
	}
	u := &CurrencyUsecase{
		countries: countries,
		selected:  countries[0],
		prefs:     prefs,
		log:       log.WithField("component", "currency"),
	}

	saved, ok, err := prefs.Country(ctx)
	if err != nil {
		u.log.WithError(err).Warn("load selected country failed, using default")
		return u
	}
	if !ok {
		return u
	}
	if c, found := pricing.FindCountry(countries, saved.NameKey); found {
		u.selected = c
	}
	return u
}

func (u *CurrencyUsecase) Selected() model.Country {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.selected
}

func (u *CurrencyUsecase) Options() []model.Country {
	out := make([]model.Country, len(u.countries))
	copy(out, u.countries)
	return out
}

// Select は表に無い nameKey なら 400。保存に失敗しても選択は変える。
func (u *CurrencyUsecase) Select(ctx context.Context, nameKey string) (model.Country, error) {
	c, ok := pricing.FindCountry(u.countries, strings.TrimSpace(nameKey))
	if !ok {
		return model.Country{}, NewHTTPError(http.StatusBadRequest, "unknown country")
	}

	u.mu.Lock()
	u.selected = c
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), prefSaveTimeout)
	if err := u.prefs.SaveCountry(saveCtx, c); err != nil {
		u.log.WithError(err).Error("save selected country failed")
	}
	cancel()
	u.mu.Unlock()

	u.changes.notify()
	return c, nil
}

// Changes は選択が変わるたびに通知する。
func (u *CurrencyUsecase) Changes() (<-chan struct{}, func()) {
	return u.changes.Subscribe()
}
