package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/querycache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// サーバのお気に入り一覧を持つだけの fake。
// キャッシュと同じく、最後に成功した一覧を覚えておく。
type fakeFavorites struct {
	mu       sync.Mutex
	ids      []int64
	failAdd  error
	failList error
	// Add/Remove の途中で呼ばれる
	during func()

	lastGood []model.Favorite
	lastAt   time.Time
}

func (f *fakeFavorites) List(ctx context.Context) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]model.Favorite, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, model.Favorite{ID: id * 10, Product: &model.Product{ID: id}})
	}
	f.lastGood, f.lastAt = out, time.Now()
	return out, nil
}

func (f *fakeFavorites) Cached() ([]model.Favorite, time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastGood, f.lastAt, !f.lastAt.IsZero()
}

func (f *fakeFavorites) WatchList() *querycache.Subscription[[]model.Favorite] { return nil }

func (f *fakeFavorites) setFailList(err error) {
	f.mu.Lock()
	f.failList = err
	f.mu.Unlock()
}

func (f *fakeFavorites) serverIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

func (f *fakeFavorites) Check(ctx context.Context, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFavorites) Add(ctx context.Context, productID int64) (model.Favorite, error) {
	if f.during != nil {
		f.during()
	}
	if f.failAdd != nil {
		return model.Favorite{}, f.failAdd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, productID)
	return model.Favorite{ID: productID * 10}, nil
}

func (f *fakeFavorites) Remove(ctx context.Context, productID int64) error {
	if f.during != nil {
		f.during()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range f.ids {
		if id == productID {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			break
		}
	}
	return nil
}

func loggedIn() *MockTokenRepository {
	tokens := new(MockTokenRepository)
	tokens.On("Token", mock.Anything).Return("token", true)
	return tokens
}

// =====================
// Toggle
// =====================

func TestFavorite_ToggleAddsThenRemoves(t *testing.T) {
	ctx := context.Background()
	favs := &fakeFavorites{ids: []int64{3}}
	u := NewFavoriteUsecase(favs, loggedIn(), testLogger())

	assert.False(t, u.IsFavorite(ctx, 7))

	on, err := u.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, u.IsFavorite(ctx, 7))
	assert.Equal(t, FlipConfirmed, u.State(7))

	on, err = u.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, u.IsFavorite(ctx, 7))

	// 他の商品はそのまま
	assert.True(t, u.IsFavorite(ctx, 3))
}

func TestFavorite_OptimisticWhileInFlight(t *testing.T) {
	ctx := context.Background()
	favs := &fakeFavorites{}
	u := NewFavoriteUsecase(favs, loggedIn(), testLogger())

	var seen bool
	var state FlipState
	favs.during = func() {
		seen = u.IsFavorite(ctx, 7)
		state = u.State(7)
	}

	_, err := u.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.True(t, seen, "flag is flipped before the server answers")
	assert.Equal(t, FlipOptimistic, state)
}

func TestFavorite_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	favs := &fakeFavorites{failAdd: &api.Error{Kind: api.KindServer, Status: 500, Message: "boom"}}
	u := NewFavoriteUsecase(favs, loggedIn(), testLogger())

	on, err := u.Toggle(ctx, 7)
	require.Error(t, err)
	assert.False(t, on)
	assert.False(t, u.IsFavorite(ctx, 7))
	assert.Equal(t, FlipRolledBack, u.State(7))

	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 502, he.Status)
}

func TestFavorite_LoginRequired(t *testing.T) {
	ctx := context.Background()
	favs := new(MockFavoriteRepository)
	tokens := new(MockTokenRepository)
	tokens.On("Token", mock.Anything).Return("", false)

	u := NewFavoriteUsecase(favs, tokens, testLogger())
	_, err := u.Toggle(ctx, 7)

	assert.ErrorIs(t, err, ErrLoginRequired)
	he, _ := AsHTTPError(err)
	assert.Equal(t, "/login", he.Redirect)
	favs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestFavorite_SetWhenSkipped(t *testing.T) {
	ctx := context.Background()
	favs := new(MockFavoriteRepository)
	favs.On("List", mock.Anything).Return(nil, querycache.ErrSkipped)

	u := NewFavoriteUsecase(favs, new(MockTokenRepository), testLogger())
	assert.Empty(t, u.Set(ctx))

	list, err := u.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// =====================
// 再取得の失敗
// =====================

func TestFavorite_FailedRefetchKeepsLastList(t *testing.T) {
	ctx := context.Background()
	favs := &fakeFavorites{ids: []int64{7}}
	u := NewFavoriteUsecase(favs, loggedIn(), testLogger())

	on, err := u.Toggle(ctx, 8)
	require.NoError(t, err)
	require.True(t, on)

	favs.setFailList(&api.Error{Kind: api.KindServer, Status: 500})

	// 前回の一覧 + その後に確定した切り替え
	assert.Equal(t, map[int64]bool{7: true, 8: true}, u.Set(ctx))

	// 7 はお気に入りなので削除を送る
	on, err = u.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []int64{8}, favs.serverIDs())
	assert.Equal(t, map[int64]bool{8: true}, u.Set(ctx))
}

func TestFavorite_ToggleWithoutAnyListIsUnavailable(t *testing.T) {
	ctx := context.Background()
	favs := &fakeFavorites{ids: []int64{7}, failList: &api.Error{Kind: api.KindNetwork}}
	u := NewFavoriteUsecase(favs, loggedIn(), testLogger())

	_, err := u.Toggle(ctx, 7)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 503, he.Status)
	assert.Equal(t, []int64{7}, favs.serverIDs())
	assert.Equal(t, FlipIdle, u.State(7))
}

func TestFavorite_ChangesOnToggle(t *testing.T) {
	ctx := context.Background()
	u := NewFavoriteUsecase(&fakeFavorites{}, loggedIn(), testLogger())

	ch, stop := u.Changes()
	defer stop()

	_, err := u.Toggle(ctx, 3)
	require.NoError(t, err)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestFavorite_InvalidID(t *testing.T) {
	u := NewFavoriteUsecase(new(MockFavoriteRepository), loggedIn(), testLogger())
	_, err := u.Toggle(context.Background(), 0)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
}
