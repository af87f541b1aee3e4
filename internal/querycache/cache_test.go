package querycache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := New(Options{Logger: logrus.NewEntry(log)})
	t.Cleanup(c.Close)
	return c
}

type noParams struct{}

// waitFor は条件を満たす State が届くまで待つ
func waitFor[T any](t *testing.T, s *Subscription[T], cond func(State[T]) bool) State[T] {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-s.Updates():
			if cond(st) {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out, last state: %+v", s.Current())
			return State[T]{}
		}
	}
}

func TestFetch_DeduplicatesConcurrentRequests(t *testing.T) {
	c := newTestCache(t)

	var calls int32
	gate := make(chan struct{})
	q := NewQuery(c, QueryDef[int64, string]{
		Resource: "getProduct",
		Fetch: func(ctx context.Context, id int64) (string, error) {
			atomic.AddInt32(&calls, 1)
			<-gate
			return "Witcher 3", nil
		},
		Provides: func(id int64, _ string, _ error) []Tag { return []Tag{ID(TagProduct, id)} },
	})

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := q.Fetch(context.Background(), 5)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "Witcher 3", v)
	}

	// 2回目はキャッシュから
	v, err := q.Fetch(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, "Witcher 3", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_DifferentParamsAreDifferentEntries(t *testing.T) {
	c := newTestCache(t)

	var calls int32
	q := NewQuery(c, QueryDef[int64, int64]{
		Resource: "getProduct",
		Fetch: func(ctx context.Context, id int64) (int64, error) {
			atomic.AddInt32(&calls, 1)
			return id * 10, nil
		},
	})

	a, _ := q.Fetch(context.Background(), 1)
	b, _ := q.Fetch(context.Background(), 2)
	assert.Equal(t, int64(10), a)
	assert.Equal(t, int64(20), b)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.NotEqual(t, q.Key(1), q.Key(2))
}

func TestMutation_InvalidatesAndRefreshesSubscriber(t *testing.T) {
	c := newTestCache(t)

	var mu sync.Mutex
	catalog := []string{"Witcher 3"}

	list := NewQuery(c, QueryDef[noParams, []string]{
		Resource: "getProducts",
		Fetch: func(ctx context.Context, _ noParams) ([]string, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), catalog...), nil
		},
		Provides: func(noParams, []string, error) []Tag { return []Tag{List(TagProduct)} },
	})
	create := NewMutation(c, MutationDef[string, int64]{
		Run: func(ctx context.Context, name string) (int64, error) {
			mu.Lock()
			defer mu.Unlock()
			catalog = append(catalog, name)
			return int64(len(catalog)), nil
		},
		Invalidates: func(string, int64) []Tag { return []Tag{List(TagProduct)} },
	})

	sub := list.Subscribe(noParams{})
	defer sub.Close()

	st := waitFor(t, sub, func(s State[[]string]) bool { return s.Status == StatusSuccess })
	assert.Equal(t, []string{"Witcher 3"}, st.Data)

	_, err := create.Run(context.Background(), "Cyberpunk 2077")
	require.NoError(t, err)

	st = waitFor(t, sub, func(s State[[]string]) bool { return s.Status == StatusSuccess && !s.Stale })
	assert.Equal(t, []string{"Witcher 3", "Cyberpunk 2077"}, st.Data)
}

func TestMutation_FailureDoesNotInvalidate(t *testing.T) {
	c := newTestCache(t)

	var calls int32
	q := NewQuery(c, QueryDef[noParams, int]{
		Resource: "getFavorites",
		Fetch: func(ctx context.Context, _ noParams) (int, error) {
			return int(atomic.AddInt32(&calls, 1)), nil
		},
		Provides: func(noParams, int, error) []Tag { return []Tag{List(TagFavorite)} },
	})
	add := NewMutation(c, MutationDef[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, errors.New("boom")
		},
		Invalidates: func(int64, struct{}) []Tag { return []Tag{List(TagFavorite)} },
	})

	_, _ = q.Fetch(context.Background(), noParams{})
	_, err := add.Run(context.Background(), 7)
	assert.Error(t, err)

	assert.False(t, q.Peek(noParams{}).Stale)
	_, _ = q.Fetch(context.Background(), noParams{})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInvalidate_UnsubscribedEntryRefetchesOnNextAccess(t *testing.T) {
	c := newTestCache(t)

	var calls int32
	q := NewQuery(c, QueryDef[int64, int]{
		Resource: "getProduct",
		Fetch: func(ctx context.Context, id int64) (int, error) {
			return int(atomic.AddInt32(&calls, 1)), nil
		},
		Provides: func(id int64, _ int, _ error) []Tag { return []Tag{ID(TagProduct, id)} },
	})

	v, _ := q.Fetch(context.Background(), 3)
	assert.Equal(t, 1, v)

	c.Invalidate(ID(TagProduct, 4))
	assert.False(t, q.Peek(3).Stale)

	c.Invalidate(ID(TagProduct, 3))
	st := q.Peek(3)
	assert.True(t, st.Stale)
	assert.Equal(t, 1, st.Data)
	// 購読者がいないのでまだ取りに行かない
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	v, _ = q.Fetch(context.Background(), 3)
	assert.Equal(t, 2, v)
	assert.False(t, q.Peek(3).Stale)
}

func TestInvalidate_TypeTagMatchesEveryID(t *testing.T) {
	c := newTestCache(t)

	q := NewQuery(c, QueryDef[int64, int64]{
		Resource: "getBill",
		Fetch:    func(ctx context.Context, id int64) (int64, error) { return id, nil },
		Provides: func(id int64, _ int64, _ error) []Tag { return []Tag{ID(TagBill, id)} },
	})
	_, _ = q.Fetch(context.Background(), 1)
	_, _ = q.Fetch(context.Background(), 2)

	c.Invalidate(Type(TagBill))
	assert.True(t, q.Peek(1).Stale)
	assert.True(t, q.Peek(2).Stale)
}

func TestLoad_DiscardsSupersededResponse(t *testing.T) {
	c := newTestCache(t)

	var calls int32
	slow := make(chan struct{})
	q := NewQuery(c, QueryDef[noParams, string]{
		Resource: "getProfile",
		Fetch: func(ctx context.Context, _ noParams) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				<-slow
				return "old", nil
			}
			return "new", nil
		},
		Provides: func(noParams, string, error) []Tag { return []Tag{ID(TagUser, "PROFILE")} },
	})

	done := make(chan string)
	go func() {
		v, _ := q.Fetch(context.Background(), noParams{})
		done <- v
	}()

	// 1回目が始まるのを待つ
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)

	c.Invalidate(ID(TagUser, "PROFILE"))
	v, err := q.Fetch(context.Background(), noParams{})
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(slow)
	assert.Equal(t, "old", <-done)

	st := q.Peek(noParams{})
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "new", st.Data)
}

func TestSkip_NeverRequests(t *testing.T) {
	c := newTestCache(t)

	var calls int32
	q := NewQuery(c, QueryDef[noParams, []int64]{
		Resource: "getFavorites",
		Fetch: func(ctx context.Context, _ noParams) ([]int64, error) {
			atomic.AddInt32(&calls, 1)
			return nil, nil
		},
		Skip: func(noParams) bool { return true },
	})

	_, err := q.Fetch(context.Background(), noParams{})
	assert.ErrorIs(t, err, ErrSkipped)

	sub := q.Subscribe(noParams{})
	defer sub.Close()
	assert.Equal(t, StatusNotRequested, (<-sub.Updates()).Status)
	assert.Equal(t, StatusNotRequested, q.Peek(noParams{}).Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFetch_ErrorState(t *testing.T) {
	c := newTestCache(t)

	q := NewQuery(c, QueryDef[noParams, int]{
		Resource: "getProducts",
		Fetch: func(ctx context.Context, _ noParams) (int, error) {
			return 0, errors.New("network down")
		},
	})

	_, err := q.Fetch(context.Background(), noParams{})
	assert.EqualError(t, err, "network down")

	st := q.Peek(noParams{})
	assert.Equal(t, StatusError, st.Status)
	assert.EqualError(t, st.Err, "network down")
}

func TestFetch_CallerCancelDoesNotCancelSharedRequest(t *testing.T) {
	c := newTestCache(t)

	gate := make(chan struct{})
	var sawCancel int32
	q := NewQuery(c, QueryDef[noParams, string]{
		Resource: "getProducts",
		Fetch: func(ctx context.Context, _ noParams) (string, error) {
			<-gate
			if ctx.Err() != nil {
				atomic.StoreInt32(&sawCancel, 1)
			}
			return "ok", nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Fetch(ctx, noParams{})
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool {
		return q.Peek(noParams{}).Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&sawCancel))
}

func TestReset_DropsEntries(t *testing.T) {
	c := newTestCache(t)

	q := NewQuery(c, QueryDef[int64, int64]{
		Resource: "getProduct",
		Fetch:    func(ctx context.Context, id int64) (int64, error) { return id, nil },
	})
	_, _ = q.Fetch(context.Background(), 1)
	assert.Equal(t, 1, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, StatusNotRequested, q.Peek(1).Status)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	c := newTestCache(t)

	q := NewQuery(c, QueryDef[noParams, int]{
		Resource: "getProducts",
		Fetch:    func(ctx context.Context, _ noParams) (int, error) { return 1, nil },
	})
	sub := q.Subscribe(noParams{})
	waitFor(t, sub, func(s State[int]) bool { return s.Status == StatusSuccess })

	sub.Close()
	sub.Close()
	assert.Equal(t, 1, sub.Current().Data)
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "Product#LIST", List(TagProduct).String())
	assert.Equal(t, "File#PHOTO-3", ID(TagFile, "PHOTO-3").String())
	assert.Equal(t, "Bill", Type(TagBill).String())
}
