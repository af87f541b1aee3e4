package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront/internal/metrics"
)

// QueryDef は読み取り系エンドポイント1つ分の定義。
type QueryDef[P, T any] struct {
	// Resource はキーの接頭辞（"getProducts" など）。
	Resource string
	Fetch    func(ctx context.Context, p P) (T, error)
	// Provides はエントリに付けるタグ。最初の応答の前にもゼロ値で呼ばれる。
	Provides func(p P, data T, err error) []Tag
	// Skip が true のあいだはリクエストを出さず NotRequested のまま。
	Skip func(p P) bool
}

type Query[P, T any] struct {
	c   *Cache
	def QueryDef[P, T]
}

func NewQuery[P, T any](c *Cache, def QueryDef[P, T]) *Query[P, T] {
	if def.Fetch == nil {
		panic("querycache: QueryDef.Fetch is required")
	}
	return &Query[P, T]{c: c, def: def}
}

// Key はパラメータ込みのキャッシュキー。
func (q *Query[P, T]) Key(p P) string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%s(%v)", q.def.Resource, p)
	}
	return q.def.Resource + "(" + string(b) + ")"
}

func (q *Query[P, T]) skipped(p P) bool {
	return q.def.Skip != nil && q.def.Skip(p)
}

// Fetch は新しいキャッシュがあればそれを返し、無ければ（stale も含む）取得する。
func (q *Query[P, T]) Fetch(ctx context.Context, p P) (T, error) {
	var zero T
	if q.skipped(p) {
		return zero, ErrSkipped
	}

	key := q.Key(p)
	q.c.mu.Lock()
	if e, ok := q.c.entries[key]; ok && e.status == StatusSuccess && !e.stale {
		st := stateOf[T](e)
		q.c.mu.Unlock()
		metrics.RecordCacheEvent("hit")
		return st.Data, nil
	}
	q.c.mu.Unlock()

	metrics.RecordCacheEvent("miss")
	return q.load(ctx, key, p)
}

// Peek はリクエストを出さずに現在の状態を返す。
func (q *Query[P, T]) Peek(p P) State[T] {
	if q.skipped(p) {
		return State[T]{Status: StatusNotRequested}
	}

	q.c.mu.Lock()
	defer q.c.mu.Unlock()
	e, ok := q.c.entries[q.Key(p)]
	if !ok {
		return State[T]{Status: StatusNotRequested}
	}
	return stateOf[T](e)
}

// load は1キー1リクエストで取得する。呼び出し元の ctx が切れても
// 共有中のリクエストは止めない（結果はキャッシュに入る）。
func (q *Query[P, T]) load(ctx context.Context, key string, p P) (T, error) {
	var zero T

	ch := q.c.group.DoChan(key, func() (any, error) {
		q.c.mu.Lock()
		e := q.c.entryLocked(key)
		e.seq++
		seq := e.seq
		if e.status != StatusSuccess {
			e.status = StatusLoading
		}
		if len(e.tags) == 0 && q.def.Provides != nil {
			e.tags = q.def.Provides(p, zero, nil)
		}
		q.c.notifyLocked(e)
		q.c.mu.Unlock()

		data, err := q.def.Fetch(context.WithoutCancel(ctx), p)

		q.c.mu.Lock()
		defer q.c.mu.Unlock()

		cur, ok := q.c.entries[key]
		if !ok || cur.seq != seq {
			// 途中で無効化・リセットされた
			metrics.RecordCacheEvent("discard")
			q.c.log.WithField("key", key).Debug("discarded superseded response")
			return data, err
		}

		if q.def.Provides != nil {
			cur.tags = q.def.Provides(p, data, err)
		}
		if err != nil {
			cur.status = StatusError
			cur.err = err
		} else {
			cur.status = StatusSuccess
			cur.data = data
			cur.err = nil
			cur.stale = false
			cur.updatedAt = time.Now()
		}
		q.c.notifyLocked(cur)
		return data, err
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Shared {
			metrics.RecordCacheEvent("dedup")
		}
		if r.Err != nil {
			return zero, r.Err
		}
		v, _ := r.Val.(T)
		return v, nil
	}
}

// Subscription は1エントリの購読。Updates は最新値だけを保持する。
type Subscription[T any] struct {
	ch    chan State[T]
	close func()
	once  sync.Once

	mu     sync.Mutex
	latest State[T]
}

// Updates は状態が変わるたびに最新の State を受け取るチャネル。
func (s *Subscription[T]) Updates() <-chan State[T] {
	return s.ch
}

// Current は最後に届いた State。
func (s *Subscription[T]) Current() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close は購読をやめる。共有中のリクエストは止めない。
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		if s.close != nil {
			s.close()
		}
	})
}

func (s *Subscription[T]) push(st State[T]) {
	s.mu.Lock()
	s.latest = st
	s.mu.Unlock()

	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- st:
	default:
	}
}

// Subscribe はエントリを購読し、新しいデータが無ければ取得を始める。
func (q *Query[P, T]) Subscribe(p P) *Subscription[T] {
	s := &Subscription[T]{ch: make(chan State[T], 1)}
	if q.skipped(p) {
		s.push(State[T]{Status: StatusNotRequested})
		return s
	}

	key := q.Key(p)
	c := q.c

	c.mu.Lock()
	e := c.entryLocked(key)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = func(e *entry) { s.push(stateOf[T](e)) }
	e.refetch = func(ctx context.Context) {
		_, _ = q.load(ctx, key, p)
	}
	s.push(stateOf[T](e))
	need := e.status != StatusSuccess || e.stale
	c.mu.Unlock()

	s.close = func() { c.unsubscribe(key, id) }

	if need {
		c.background(func(ctx context.Context) {
			_, _ = q.load(ctx, key, p)
		})
	}
	return s
}
