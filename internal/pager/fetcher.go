// Package pager implements the generic paginated-collection engine shared by
// the public feed and the administrative lists: page cursor, result
// accumulation, in-flight de-duplication, debounced query changes and
// refresh semantics.
package pager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/publiflow/publiflow-client/internal/errs"
	"github.com/publiflow/publiflow-client/internal/model"
)

const (
	defaultLimit    = 6
	defaultDebounce = 600 * time.Millisecond
)

// PageFunc fetches one page of a collection.
type PageFunc[T any] func(ctx context.Context, page, limit int, query string) (model.Page[T], error)

// Snapshot is the externally visible list state.
type Snapshot[T any] struct {
	Items       []T
	CurrentPage int
	HasMore     bool
	Loading     bool
	Refreshing  bool
	Query       string
}

// Config parameterizes a Fetcher.
type Config[T any] struct {
	// Fetch retrieves one page from the backing resource.
	Fetch PageFunc[T]
	// ID extracts the identity used to collapse duplicate items.
	ID func(T) int64
	// Limit is the page size requested from Fetch.
	Limit int
	// Debounce is the quiet window applied to QueryChanged events.
	Debounce time.Duration
	// OnChange observes every state transition (optional).
	OnChange func(Snapshot[T])
	// OnError observes fetch failures (optional).
	OnError func(error)
	Logger  *zap.Logger
}

// Fetcher reconciles overlapping asynchronous fetches into one consistent
// list state. Every fetch carries a monotonically increasing request id and
// only the most recently initiated fetch may commit, so a completion from an
// older request never overwrites state owned by a newer one, regardless of
// arrival order.
type Fetcher[T any] struct {
	cfg Config[T]
	log *zap.Logger

	mu         sync.Mutex
	items      []T
	page       int
	hasMore    bool
	loading    bool
	refreshing bool
	query      string

	nextID uint64
	latest uint64

	timer *time.Timer
}

// New constructs a Fetcher in its initial state (page 1, no items, more
// pages assumed until the first fetch reports otherwise).
func New[T any](cfg Config[T]) *Fetcher[T] {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher[T]{cfg: cfg, log: log, page: 1, hasMore: true}
}

// Close cancels a pending debounce timer. In-flight fetches are not forcibly
// canceled; their results are discarded by the request-id rule.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()
}

// Snapshot returns a copy of the current list state.
func (f *Fetcher[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Fetcher[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(f.items))
	copy(items, f.items)
	return Snapshot[T]{
		Items:       items,
		CurrentPage: f.page,
		HasMore:     f.hasMore,
		Loading:     f.loading,
		Refreshing:  f.refreshing,
		Query:       f.query,
	}
}

// QueryChanged restarts the debounce timer with the new query. Only the last
// query value of a burst is ever fetched; when the timer elapses the event is
// treated as a refresh with that query.
func (f *Fetcher[T]) QueryChanged(ctx context.Context, query string) {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.cfg.Debounce, func() {
		f.refresh(ctx, query)
	})
	f.mu.Unlock()
}

// Search sets the query and refreshes immediately, bypassing the debounce.
// It blocks until the fetch completes. Callers coalescing bursty keystroke
// input use QueryChanged instead.
func (f *Fetcher[T]) Search(ctx context.Context, query string) {
	f.refresh(ctx, query)
}

// Refresh resets the list to page 1 and re-fetches with the current query.
// A refresh is always issued, even while a page-advance is in flight; the
// older fetch's late result is then discarded.
func (f *Fetcher[T]) Refresh(ctx context.Context) {
	f.mu.Lock()
	query := f.query
	f.mu.Unlock()
	f.refresh(ctx, query)
}

// FocusRegained re-fetches the first page when a screen becomes visible
// again, so mutations performed elsewhere show up without a pull gesture.
func (f *Fetcher[T]) FocusRegained(ctx context.Context) {
	f.Refresh(ctx)
}

// LoadMore fetches the next page and appends it. It is a no-op while a fetch
// is in flight or when the server reported no further pages.
func (f *Fetcher[T]) LoadMore(ctx context.Context) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return
	}
	id := f.issueLocked()
	f.loading = true
	page := f.page + 1
	limit := f.cfg.Limit
	query := f.query
	f.mu.Unlock()
	f.notify()

	res, err := f.cfg.Fetch(ctx, page, limit, query)
	f.complete(id, page, res, err, false)
}

func (f *Fetcher[T]) refresh(ctx context.Context, query string) {
	f.mu.Lock()
	id := f.issueLocked()
	f.query = query
	f.page = 1
	f.items = nil
	f.loading = true
	f.refreshing = true
	limit := f.cfg.Limit
	f.mu.Unlock()
	f.notify()

	res, err := f.cfg.Fetch(ctx, 1, limit, query)
	f.complete(id, 1, res, err, true)
}

// issueLocked hands out the next request id and records it as the most
// recently initiated fetch.
func (f *Fetcher[T]) issueLocked() uint64 {
	f.nextID++
	f.latest = f.nextID
	return f.nextID
}

// complete applies one fetch result under the ordering rule: only the most
// recently initiated fetch may commit or clear the loading flags. A
// superseded completion is discarded whether it resolves before or after its
// successor; a refresh's cleared state must never be overwritten by an older
// page-advance.
func (f *Fetcher[T]) complete(id uint64, page int, res model.Page[T], err error, replace bool) {
	f.mu.Lock()
	latest := id == f.latest

	if err != nil {
		if !latest {
			f.mu.Unlock()
			f.log.Debug("superseded fetch failed", zap.Uint64("req_id", id), zap.Error(err))
			return
		}
		f.loading = false
		f.refreshing = false
		f.mu.Unlock()
		f.notify()
		f.fail(err)
		return
	}

	if !latest {
		f.mu.Unlock()
		f.log.Debug("stale fetch discarded", zap.Uint64("req_id", id))
		return
	}

	if current := res.Meta.CurrentPage; current > 0 {
		f.page = current
	} else {
		f.page = page
	}
	if replace {
		f.items = f.merge(nil, res.Items)
	} else {
		f.items = f.merge(f.items, res.Items)
	}
	f.hasMore = f.page < res.Meta.TotalPages
	f.loading = false
	f.refreshing = false
	f.mu.Unlock()
	f.notify()
}

// merge appends items in arrival order, collapsing duplicates by id in place.
func (f *Fetcher[T]) merge(dst, src []T) []T {
	if f.cfg.ID == nil {
		return append(dst, src...)
	}
	index := make(map[int64]int, len(dst))
	for i, it := range dst {
		index[f.cfg.ID(it)] = i
	}
	for _, it := range src {
		if i, ok := index[f.cfg.ID(it)]; ok {
			dst[i] = it
			continue
		}
		index[f.cfg.ID(it)] = len(dst)
		dst = append(dst, it)
	}
	return dst
}

func (f *Fetcher[T]) notify() {
	if f.cfg.OnChange == nil {
		return
	}
	f.cfg.OnChange(f.Snapshot())
}

func (f *Fetcher[T]) fail(err error) {
	wrapped := fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	f.log.Warn("fetch failed", zap.Error(err))
	if f.cfg.OnError != nil {
		f.cfg.OnError(wrapped)
	}
}
