// Package txlookup resolves transaction hashes into normalized transaction
// details, batching the upstream lookups into fixed-size chunks and
// deduplicating them against an in-memory cache and in-flight requests.
package txlookup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/pkg/logger"
	"github.com/nearlens/nearlens/internal/pkg/types"
	"github.com/nearlens/nearlens/internal/pkg/x/chflow"
	"github.com/nearlens/nearlens/internal/txparse"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// chunkSize is the upstream API's per-request hash limit.
const chunkSize = 20

// TransactionAPI fetches raw transaction details for up to chunkSize
// hashes per call.
type TransactionAPI interface {
	Transactions(ctx context.Context, hashes []string) ([]nearapi.TransactionDetail, error)
}

// Service caches normalized transactions by hash. Concurrent requests for
// the same chunk collapse into one upstream call, and chunks are issued
// independently so an early chunk's results are usable before later ones
// resolve.
type Service struct {
	api   TransactionAPI
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]txparse.Transaction
}

func NewService(api TransactionAPI) *Service {
	return &Service{
		api:   api,
		cache: make(map[string]txparse.Transaction),
	}
}

// Fetch resolves the given hashes, returning whatever is known keyed by
// hash. Already-cached entries cost nothing; the rest is fetched in
// concurrent chunks. On error the map still carries every transaction that
// did resolve.
func (s *Service) Fetch(ctx context.Context, hashes []string) (map[string]txparse.Transaction, error) {
	missing := s.missing(hashes)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, chunk := range splitChunks(missing, chunkSize) {
		eg.Go(func() error {
			return s.fetchChunk(egCtx, chunk)
		})
	}
	err := eg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]txparse.Transaction, len(hashes))
	for _, hash := range hashes {
		if tx, ok := s.cache[hash]; ok {
			out[hash] = tx
		}
	}
	return out, err
}

// Prefetch warms the cache for hashes expected to be needed soon. Errors
// are swallowed: a failed warm-up just means the eventual Fetch pays for
// the lookup itself.
func (s *Service) Prefetch(ctx context.Context, hashes []string) {
	missing := s.missing(hashes)
	if len(missing) == 0 {
		return
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		for _, chunk := range splitChunks(missing, chunkSize) {
			if err := s.fetchChunk(ctx, chunk); err != nil {
				logger.Debug(ctx, "transaction prefetch failed", "hashes", len(chunk), "error", err)
			}
		}
	}()
}

// Stream resolves hashes like Fetch but delivers each chunk's transactions
// on the returned channel as soon as that chunk settles, with no
// head-of-line blocking across chunks. Failed chunks are logged and their
// hashes omitted. The channel closes once every chunk has settled.
func (s *Service) Stream(ctx context.Context, hashes []string) <-chan txparse.Transaction {
	out := make(chan txparse.Transaction)

	go func() {
		defer close(out)

		// dedupe but keep everything: cached entries stream immediately
		// from their zero-cost chunk fetch
		unique := dedupe(hashes)

		var wg sync.WaitGroup
		for _, chunk := range splitChunks(unique, chunkSize) {
			wg.Add(1)
			go func() {
				defer wg.Done()

				if err := s.fetchChunk(ctx, s.missing(chunk)); err != nil {
					logger.Warn(ctx, "transaction chunk failed", "hashes", len(chunk), "error", err)
					return
				}

				s.mu.Lock()
				resolved := make([]txparse.Transaction, 0, len(chunk))
				for _, hash := range chunk {
					if tx, ok := s.cache[hash]; ok {
						resolved = append(resolved, tx)
					}
				}
				s.mu.Unlock()

				for _, tx := range resolved {
					if !chflow.Send(ctx, out, tx) {
						return
					}
				}
			}()
		}
		wg.Wait()
	}()

	return out
}

// Cached returns the cached transaction for hash, if present.
func (s *Service) Cached(hash string) (txparse.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.cache[hash]
	return tx, ok
}

// fetchChunk resolves one chunk of hashes through the upstream API, with
// identical concurrent chunks collapsed into a single call.
func (s *Service) fetchChunk(ctx context.Context, chunk []string) error {
	if len(chunk) == 0 {
		return nil
	}

	key := strings.Join(chunk, ",")
	_, err, _ := s.group.Do(key, func() (any, error) {
		details, err := s.api.Transactions(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("fetching %d transactions: %w", len(chunk), err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range details {
			tx := txparse.Normalize(&details[i])
			s.cache[tx.Hash] = tx
		}
		return nil, nil
	})
	return err
}

// missing returns the deduplicated subset of hashes not yet cached.
func (s *Service) missing(hashes []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := types.NewSet[string]()
	var out []string
	for _, hash := range hashes {
		if seen.Has(hash) {
			continue
		}
		seen.Add(hash)

		if _, ok := s.cache[hash]; !ok {
			out = append(out, hash)
		}
	}
	return out
}

func dedupe(hashes []string) []string {
	seen := types.NewSet[string]()
	var out []string
	for _, hash := range hashes {
		if seen.Has(hash) {
			continue
		}
		seen.Add(hash)
		out = append(out, hash)
	}
	return out
}

func splitChunks(hashes []string, size int) [][]string {
	var out [][]string
	for len(hashes) > size {
		out = append(out, hashes[:size])
		hashes = hashes[size:]
	}
	if len(hashes) > 0 {
		out = append(out, hashes)
	}
	return out
}
