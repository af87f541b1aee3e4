// Package querycache is a tag-based request cache.
//
// Queries are keyed by (resource, serialized params). Concurrent fetches of
// one key share a single in-flight request, responses from superseded
// requests are discarded, and a successful mutation invalidates every entry
// carrying one of its tags. Entries with subscribers are refetched in the
// background; the others are refetched on next access.
package querycache

import (
	"context"
	"sync"
	"time"

	"storefront/internal/metrics"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrSkipped は Skip 条件に当たったクエリを Fetch したとき。
var ErrSkipped = errors.New("querycache: query skipped")

// Status はエントリの状態。
type Status int

const (
	StatusNotRequested Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "not_requested"
	}
}

// State は購読者・Peek に見せるスナップショット。
// 再取得中は直前の Data を残したまま Stale が true になる。
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

type Options struct {
	Logger *logrus.Entry
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSub uint64

	group singleflight.Group
	log   *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type entry struct {
	key       string
	tags      []Tag
	status    Status
	data      any
	err       error
	stale     bool
	updatedAt time.Time

	// 最後に開始したリクエストの番号。これ以外の応答は捨てる
	seq uint64

	subs    map[uint64]func(*entry)
	refetch func(ctx context.Context)
}

func New(opts Options) *Cache {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries: make(map[string]*entry),
		log:     log.WithField("component", "querycache"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close はバックグラウンドの再取得を止めて終了を待つ。
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

// Invalidate はタグに当たるエントリを stale にする。
// 購読者がいるエントリはすぐ再取得し、いないものは次のアクセスで取り直す。
func (c *Cache) Invalidate(tags ...Tag) {
	if len(tags) == 0 {
		return
	}

	c.mu.Lock()
	var refetch []func(context.Context)
	for _, e := range c.entries {
		if !e.hasAny(tags) {
			continue
		}
		e.stale = true
		e.seq++
		c.group.Forget(e.key)
		metrics.RecordCacheEvent("invalidate")
		c.notifyLocked(e)

		if len(e.subs) > 0 && e.refetch != nil {
			refetch = append(refetch, e.refetch)
		}
	}
	c.mu.Unlock()

	c.log.WithField("tags", tags).Debug("invalidated")
	for _, f := range refetch {
		metrics.RecordCacheEvent("refetch")
		c.background(f)
	}
}

// Reset は全エントリを捨てる（ログアウト時）。
// 購読中のエントリは NotRequested に戻してから取り直す。
func (c *Cache) Reset() {
	c.mu.Lock()
	var refetch []func(context.Context)
	for key, e := range c.entries {
		e.seq++
		c.group.Forget(key)
		if len(e.subs) == 0 {
			delete(c.entries, key)
			continue
		}
		e.status = StatusNotRequested
		e.data = nil
		e.err = nil
		e.stale = false
		e.tags = nil
		e.updatedAt = time.Time{}
		c.notifyLocked(e)
		if e.refetch != nil {
			refetch = append(refetch, e.refetch)
		}
	}
	c.mu.Unlock()

	c.log.Debug("cache reset")
	for _, f := range refetch {
		c.background(f)
	}
}

// Len は保持しているエントリ数。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key, subs: make(map[uint64]func(*entry))}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) notifyLocked(e *entry) {
	for _, push := range e.subs {
		push(e)
	}
}

func (c *Cache) unsubscribe(key string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(e.subs, id)
	if len(e.subs) == 0 {
		e.refetch = nil
	}
}

func (c *Cache) background(f func(context.Context)) {
	if c.ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		f(c.ctx)
	}()
}

func (e *entry) hasAny(tags []Tag) bool {
	for _, inv := range tags {
		for _, t := range e.tags {
			if inv.matches(t) {
				return true
			}
		}
	}
	return false
}

func stateOf[T any](e *entry) State[T] {
	st := State[T]{
		Status:    e.status,
		Err:       e.err,
		Stale:     e.stale,
		UpdatedAt: e.updatedAt,
	}
	if v, ok := e.data.(T); ok {
		st.Data = v
	}
	return st
}
