package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/querycache"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// FlipState は1商品分の楽観的更新の状態。
type FlipState int

const (
	FlipIdle FlipState = iota
	FlipOptimistic
	FlipConfirmed
	FlipRolledBack
)

func (s FlipState) String() string {
	switch s {
	case FlipOptimistic:
		return "optimistic"
	case FlipConfirmed:
		return "confirmed"
	case FlipRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

type flip struct {
	state FlipState
	value bool      // 楽観的に見せている値
	at    time.Time // 確定した時刻
}

// FavoriteUsecase はサーバのお気に入り一覧に、送信中の切り替えを重ねて見せる。
type FavoriteUsecase struct {
	mu    sync.Mutex
	flips map[int64]*flip

	favorites repo.FavoriteRepository
	tokens    repo.TokenRepository
	log       *logrus.Entry
	changes   changeNotifier
}

// DI
func NewFavoriteUsecase(favorites repo.FavoriteRepository, tokens repo.TokenRepository, log *logrus.Entry) *FavoriteUsecase {
	return &FavoriteUsecase{
		flips:     make(map[int64]*flip),
		favorites: favorites,
		tokens:    tokens,
		log:       log.WithField("component", "favorites"),
	}
}

// List は最後に取得したお気に入り一覧。未ログインなら空。
func (u *FavoriteUsecase) List(ctx context.Context) ([]model.Favorite, error) {
	list, err := u.favorites.List(ctx)
	if errors.Is(err, querycache.ErrSkipped) {
		return []model.Favorite{}, nil
	}
	if err != nil {
		return nil, fromAPIError(err, "favorites fetch failed")
	}
	return list, nil
}

// Set はお気に入りの商品ID集合（送信中の切り替えを反映済み）。
// 再取得に失敗したときは最後に取得できた一覧を使う。
func (u *FavoriteUsecase) Set(ctx context.Context) map[int64]bool {
	set, err := u.snapshot(ctx)
	if err != nil {
		u.log.WithError(err).Warn("favorites unavailable")
	}
	return set
}

// snapshot は一覧に切り替え分を重ねる。一覧が一度も取れていなければ
// 切り替え分だけの集合とエラーを返す。
func (u *FavoriteUsecase) snapshot(ctx context.Context) (map[int64]bool, error) {
	set := make(map[int64]bool)
	fresh := true
	var fetchedAt time.Time
	var fetchErr error

	list, err := u.favorites.List(ctx)
	switch {
	case errors.Is(err, querycache.ErrSkipped):
	case err != nil:
		fresh = false
		if cached, at, ok := u.favorites.Cached(); ok {
			u.log.WithError(err).Debug("favorites refetch failed, using last fetched list")
			list, fetchedAt = cached, at
		} else {
			list, fetchErr = nil, err
		}
	}
	for _, f := range list {
		if f.Product != nil {
			set[f.Product.ID] = true
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for id, f := range u.flips {
		switch {
		case f.state == FlipOptimistic:
		// 古い一覧には、その後に確定した切り替えを重ねる
		case f.state == FlipConfirmed && !fresh && !f.at.Before(fetchedAt):
		default:
			continue
		}
		if f.value {
			set[id] = true
		} else {
			delete(set, id)
		}
	}
	return set, fetchErr
}

func (u *FavoriteUsecase) IsFavorite(ctx context.Context, productID int64) bool {
	return u.Set(ctx)[productID]
}

// State は productID の直近の切り替え状態。
func (u *FavoriteUsecase) State(productID int64) FlipState {
	u.mu.Lock()
	defer u.mu.Unlock()
	if f, ok := u.flips[productID]; ok {
		return f.state
	}
	return FlipIdle
}

// Toggle は今の状態を見て追加か削除を送る。
// 送信中は反転した値を見せ、失敗したら元に戻してエラーを返す。
func (u *FavoriteUsecase) Toggle(ctx context.Context, productID int64) (bool, error) {
	if productID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	if _, ok := u.tokens.Token(ctx); !ok {
		return false, ErrLoginRequired
	}

	set, err := u.snapshot(ctx)
	if err != nil {
		// 今の状態が分からないまま追加・削除は送らない
		u.log.WithError(err).WithField("product_id", productID).Warn("favorite toggle: membership unknown")
		return false, NewHTTPError(http.StatusServiceUnavailable, "favorites unavailable")
	}
	current := set[productID]
	next := !current

	u.mu.Lock()
	if f, ok := u.flips[productID]; ok && f.state == FlipOptimistic {
		u.mu.Unlock()
		return current, NewHTTPError(http.StatusConflict, "favorite update in progress")
	}
	f := &flip{state: FlipOptimistic, value: next}
	u.flips[productID] = f
	u.mu.Unlock()
	u.changes.notify()
	defer u.changes.notify()

	if next {
		_, err = u.favorites.Add(ctx, productID)
	} else {
		err = u.favorites.Remove(ctx, productID)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if err != nil {
		f.state = FlipRolledBack
		u.log.WithError(err).WithField("product_id", productID).Warn("favorite toggle rolled back")
		return current, fromAPIError(err, "favorite update failed")
	}
	// 一覧は無効化済みなので次の取得でサーバの値になる
	f.state = FlipConfirmed
	f.at = time.Now()
	return next, nil
}

// Changes は切り替えの状態かサーバの一覧が変わるたびに通知する。
func (u *FavoriteUsecase) Changes() (<-chan struct{}, func()) {
	local, unsubscribe := u.changes.Subscribe()
	sub := u.favorites.WatchList()
	if sub == nil {
		return local, unsubscribe
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-local:
				signal(out)
			case st := <-sub.Updates():
				if st.Status == querycache.StatusSuccess || st.Status == querycache.StatusNotRequested {
					signal(out)
				}
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			unsubscribe()
			sub.Close()
		})
	}
}
