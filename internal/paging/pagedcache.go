package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nearlens/nearlens/internal/pkg/logger"
)

var (
	// ErrNoNextPage is returned by GoNext once the backend is exhausted.
	ErrNoNextPage = errors.New("paging: no next page")
)

const (
	defaultPageSize   = 10
	defaultBatchPages = 5
)

// pageEntry holds one cached page. token is the resume token for the data
// after this page's batch and is set only on the final page of each batch.
type pageEntry[T any] struct {
	items []T
	token string
}

// prefetchState is the handle of one in-flight background batch fetch.
// Waiters block on done instead of polling a busy flag.
type prefetchState struct {
	done chan struct{}
}

// PagedCache presents a bidirectionally navigable, page-indexed view over a
// backend that hands out pages via opaque resume tokens. Batches of
// pageSize × batchPages items are fetched at once to amortize round trips
// and sliced into consecutive pages; once fetched, a page is retained until
// Reset. A background prefetch keeps the cache one batch ahead of the
// reader, and GoNext attaches to it when the wanted page is already on its
// way. All methods are safe for concurrent use.
type PagedCache[T any] struct {
	fetch      FetchFunc[T]
	pageSize   int
	batchPages int

	mu       sync.Mutex
	gen      uint64
	pages    map[int]pageEntry[T]
	current  int
	lastPage int
	total    int64
	inflight *prefetchState
}

type PagedCacheOption func(*pagedCacheConfig)

type pagedCacheConfig struct {
	pageSize   int
	batchPages int
}

// WithPageSize sets how many items each page holds.
func WithPageSize(n int) PagedCacheOption {
	return func(cfg *pagedCacheConfig) {
		if n > 0 {
			cfg.pageSize = n
		}
	}
}

// WithBatchPages sets how many pages each backend round trip fetches.
func WithBatchPages(n int) PagedCacheOption {
	return func(cfg *pagedCacheConfig) {
		if n > 0 {
			cfg.batchPages = n
		}
	}
}

// NewPagedCache builds an empty cache over fetch. Call Reset before
// navigating.
func NewPagedCache[T any](fetch FetchFunc[T], opts ...PagedCacheOption) *PagedCache[T] {
	cfg := pagedCacheConfig{
		pageSize:   defaultPageSize,
		batchPages: defaultBatchPages,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &PagedCache[T]{
		fetch:      fetch,
		pageSize:   cfg.pageSize,
		batchPages: cfg.batchPages,
		pages:      make(map[int]pageEntry[T]),
		lastPage:   -1,
	}
}

// Reset discards every cached page and fetches the first batch from the
// start of the collection. Results of any prefetch still in flight for the
// previous state are discarded when they land.
func (c *PagedCache[T]) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.pages = make(map[int]pageEntry[T])
	c.current = 0
	c.lastPage = -1
	c.total = 0
	c.inflight = nil
	c.mu.Unlock()

	batch, err := c.fetch(ctx, "", c.pageSize*c.batchPages)
	if err != nil {
		return fmt.Errorf("fetching first batch: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}

	c.storeBatchLocked(0, batch)
	c.maybePrefetchLocked(ctx)
	return nil
}

// GoNext advances to the next page. A cached target page switches without
// touching the network; when a background prefetch covering it is in
// flight, GoNext waits for that prefetch to settle; otherwise it fetches
// the next batch directly with the tail resume token.
func (c *PagedCache[T]) GoNext(ctx context.Context) error {
	c.mu.Lock()
	target := c.current + 1

	if _, ok := c.pages[target]; ok {
		c.current = target
		c.maybePrefetchLocked(ctx)
		c.mu.Unlock()
		return nil
	}

	gen := c.gen
	if pf := c.inflight; pf != nil {
		c.mu.Unlock()
		select {
		case <-pf.done:
		case <-ctx.Done():
			return ctx.Err()
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return nil
		}
		if _, ok := c.pages[target]; ok {
			c.current = target
			c.maybePrefetchLocked(ctx)
			c.mu.Unlock()
			return nil
		}
		// the prefetch failed or came up empty; fall back to a direct fetch
	}

	token, ok := c.tailTokenLocked()
	if !ok {
		c.mu.Unlock()
		return ErrNoNextPage
	}
	c.mu.Unlock()

	batch, err := c.fetch(ctx, token, c.pageSize*c.batchPages)
	if err != nil {
		return fmt.Errorf("fetching next batch: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}

	c.storeBatchLocked(c.lastPage+1, batch)
	if _, ok := c.pages[target]; !ok {
		return ErrNoNextPage
	}

	c.current = target
	c.maybePrefetchLocked(ctx)
	return nil
}

// GoPrev steps back one page. Pages are retained once fetched, so this
// never touches the network. It reports whether a previous page existed.
func (c *PagedCache[T]) GoPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == 0 {
		return false
	}
	c.current--
	return true
}

// GoFirst jumps back to the first page, cache-only.
func (c *PagedCache[T]) GoFirst() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = 0
}

// Items returns the current page's items.
func (c *PagedCache[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages[c.current].items
}

// CurrentPage returns the zero-based index of the current page.
func (c *PagedCache[T]) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// TotalCount returns the backend-reported total number of items, zero when
// the backend never reported one.
func (c *PagedCache[T]) TotalCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// HasNext reports whether another page is cached or reachable through the
// current tail resume token.
func (c *PagedCache[T]) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pages[c.current+1]; ok {
		return true
	}
	_, ok := c.tailTokenLocked()
	return ok && c.current == c.lastPage
}

// HasPrev reports whether the current page has a predecessor.
func (c *PagedCache[T]) HasPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current > 0
}

// AheadItems returns the flattened items of up to two already-cached pages
// past the current one, for consumers that want to warm downstream caches.
func (c *PagedCache[T]) AheadItems() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []T
	for page := c.current + 1; page <= c.current+2; page++ {
		entry, ok := c.pages[page]
		if !ok {
			break
		}
		out = append(out, entry.items...)
	}
	return out
}

// storeBatchLocked slices a fetched batch into consecutive pages starting
// at start and records the batch's resume token on its final page.
func (c *PagedCache[T]) storeBatchLocked(start int, batch Page[T]) {
	if batch.TotalCount > 0 {
		c.total = batch.TotalCount
	}

	page := start
	for items := batch.Items; len(items) > 0; page++ {
		n := min(len(items), c.pageSize)
		c.pages[page] = pageEntry[T]{items: items[:n]}
		items = items[n:]
	}

	if last := page - 1; last >= start {
		entry := c.pages[last]
		entry.token = batch.ResumeToken
		c.pages[last] = entry
		if last > c.lastPage {
			c.lastPage = last
		}
	}
}

// tailTokenLocked returns the resume token for the data past the last
// cached page.
func (c *PagedCache[T]) tailTokenLocked() (string, bool) {
	entry, ok := c.pages[c.lastPage]
	if !ok || entry.token == "" {
		return "", false
	}
	return entry.token, true
}

// maybePrefetchLocked starts a background batch fetch once the reader is
// within one page of the cached boundary. At most one prefetch is in
// flight; its errors are swallowed, and completions from before a Reset
// are discarded.
func (c *PagedCache[T]) maybePrefetchLocked(ctx context.Context) {
	if c.inflight != nil || c.current < c.lastPage-1 {
		return
	}

	token, ok := c.tailTokenLocked()
	if !ok {
		return
	}

	pf := &prefetchState{done: make(chan struct{})}
	c.inflight = pf
	gen := c.gen
	start := c.lastPage + 1

	go func() {
		defer close(pf.done)

		ctx := context.WithoutCancel(ctx)
		batch, err := c.fetch(ctx, token, c.pageSize*c.batchPages)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.inflight == pf {
			c.inflight = nil
		}

		if err != nil {
			logger.Debug(ctx, "page prefetch failed", "error", err)
			return
		}
		if c.gen != gen {
			return
		}

		c.storeBatchLocked(start, batch)
	}()
}
