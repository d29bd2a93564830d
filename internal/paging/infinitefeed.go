package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nearlens/nearlens/internal/pkg/logger"
)

// ErrNoMoreItems is returned by LoadMore once the backend is exhausted.
var ErrNoMoreItems = errors.New("paging: no more items")

const defaultFeedBatchSize = 25

// InfiniteFeed accumulates a cursor-paginated collection append-only, the
// way a scroll-triggered list consumes it. One batch of read-ahead is kept
// in a single-slot buffer so most LoadMore calls append without a network
// wait. All methods are safe for concurrent use.
type InfiniteFeed[T any] struct {
	fetch     FetchFunc[T]
	batchSize int

	mu       sync.Mutex
	gen      uint64
	items    []T
	buffer   []T
	token    string
	total    int64
	hasMore  bool
	inflight *prefetchState
}

type FeedOption func(*feedConfig)

type feedConfig struct {
	batchSize int
}

// WithBatchSize sets how many items each fetch requests.
func WithBatchSize(n int) FeedOption {
	return func(cfg *feedConfig) {
		if n > 0 {
			cfg.batchSize = n
		}
	}
}

// NewInfiniteFeed builds an empty feed over fetch. Call Reset before
// loading.
func NewInfiniteFeed[T any](fetch FetchFunc[T], opts ...FeedOption) *InfiniteFeed[T] {
	cfg := feedConfig{batchSize: defaultFeedBatchSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &InfiniteFeed[T]{
		fetch:     fetch,
		batchSize: cfg.batchSize,
	}
}

// Reset clears the accumulated items and the lookahead buffer, then
// fetches the first batch from the start of the collection.
func (f *InfiniteFeed[T]) Reset(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.items = nil
	f.buffer = nil
	f.token = ""
	f.total = 0
	f.hasMore = false
	f.inflight = nil
	f.mu.Unlock()

	batch, err := f.fetch(ctx, "", f.batchSize)
	if err != nil {
		return fmt.Errorf("fetching first batch: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return nil
	}

	f.items = append(f.items, batch.Items...)
	f.recordBatchLocked(batch)
	f.maybePrefetchLocked(ctx)
	return nil
}

// LoadMore extends the accumulated items by one batch. A populated
// lookahead buffer is appended synchronously; an in-flight prefetch is
// waited for and its result consumed; otherwise the batch is fetched
// directly.
func (f *InfiniteFeed[T]) LoadMore(ctx context.Context) error {
	f.mu.Lock()

	if len(f.buffer) > 0 {
		f.consumeBufferLocked(ctx)
		f.mu.Unlock()
		return nil
	}

	gen := f.gen
	if pf := f.inflight; pf != nil {
		f.mu.Unlock()
		select {
		case <-pf.done:
		case <-ctx.Done():
			return ctx.Err()
		}

		f.mu.Lock()
		if f.gen != gen {
			f.mu.Unlock()
			return nil
		}
		if len(f.buffer) > 0 {
			f.consumeBufferLocked(ctx)
			f.mu.Unlock()
			return nil
		}
		// the prefetch failed; retry with a direct fetch
	}

	if !f.hasMore {
		f.mu.Unlock()
		return ErrNoMoreItems
	}
	token := f.token
	f.mu.Unlock()

	batch, err := f.fetch(ctx, token, f.batchSize)
	if err != nil {
		return fmt.Errorf("fetching next batch: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return nil
	}

	f.items = append(f.items, batch.Items...)
	f.recordBatchLocked(batch)
	f.maybePrefetchLocked(ctx)
	return nil
}

// Items returns the accumulated items.
func (f *InfiniteFeed[T]) Items() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items
}

// TotalCount returns the backend-reported total number of items, zero when
// the backend never reported one.
func (f *InfiniteFeed[T]) TotalCount() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// HasMore reports whether the backend still has unread data past the
// accumulated items and the lookahead buffer.
func (f *InfiniteFeed[T]) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore || len(f.buffer) > 0
}

// AheadItems returns the lookahead buffer's contents, for consumers that
// want to warm downstream caches before the next LoadMore.
func (f *InfiniteFeed[T]) AheadItems() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffer
}

// consumeBufferLocked appends the lookahead buffer to the accumulated
// items and kicks off the next prefetch.
func (f *InfiniteFeed[T]) consumeBufferLocked(ctx context.Context) {
	f.items = append(f.items, f.buffer...)
	f.buffer = nil
	f.maybePrefetchLocked(ctx)
}

// recordBatchLocked updates the cursor state after a fetched batch has
// been placed. The feed is exhausted once a batch comes back short or
// without a resume token.
func (f *InfiniteFeed[T]) recordBatchLocked(batch Page[T]) {
	if batch.TotalCount > 0 {
		f.total = batch.TotalCount
	}
	f.token = batch.ResumeToken
	f.hasMore = len(batch.Items) >= f.batchSize && batch.ResumeToken != ""
}

// maybePrefetchLocked fills the lookahead buffer in the background when it
// is empty and more data exists. At most one prefetch is in flight; its
// errors are swallowed and the next LoadMore simply fetches directly.
func (f *InfiniteFeed[T]) maybePrefetchLocked(ctx context.Context) {
	if f.inflight != nil || len(f.buffer) > 0 || !f.hasMore {
		return
	}

	pf := &prefetchState{done: make(chan struct{})}
	f.inflight = pf
	gen := f.gen
	token := f.token

	go func() {
		defer close(pf.done)

		ctx := context.WithoutCancel(ctx)
		batch, err := f.fetch(ctx, token, f.batchSize)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.inflight == pf {
			f.inflight = nil
		}

		if err != nil {
			logger.Debug(ctx, "feed prefetch failed", "error", err)
			return
		}
		if f.gen != gen {
			return
		}

		f.buffer = batch.Items
		f.recordBatchLocked(batch)
	}()
}
