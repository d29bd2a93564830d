// Package tokenmeta is a read-through cache for fungible-token metadata.
// Lookups fall through memory, a bundled well-known table, and an optional
// persistent store before hitting the chain, and concurrent misses for the
// same contract collapse into a single fetch.
package tokenmeta

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nearlens/nearlens/internal/pkg/logger"
)

// ErrMetadataNotFound is returned by Storage implementations for unknown
// contracts.
var ErrMetadataNotFound = errors.New("tokenmeta: metadata not found")

const (
	defaultNetwork = "mainnet"
	defaultTTL     = 7 * 24 * time.Hour
)

// Metadata describes one fungible token. A zero FetchedAt marks a bundled
// entry that never expires.
type Metadata struct {
	ContractID string    `json:"contract_id"`
	Name       string    `json:"name"`
	Symbol     string    `json:"symbol"`
	Decimals   int       `json:"decimals"`
	Icon       string    `json:"icon,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Source fetches token metadata from the chain.
type Source interface {
	FTMetadata(ctx context.Context, contractID string) (Metadata, error)
}

// Storage persists fetched metadata across runs. Load returns
// ErrMetadataNotFound for unknown contracts.
type Storage interface {
	Save(ctx context.Context, meta Metadata) error
	Load(ctx context.Context, contractID string) (Metadata, error)
}

type nopStorage struct{}

func (nopStorage) Save(context.Context, Metadata) error { return nil }

func (nopStorage) Load(context.Context, string) (Metadata, error) {
	return Metadata{}, ErrMetadataNotFound
}

// inflightFetch is one chain lookup being awaited by every concurrent
// caller asking for the same contract.
type inflightFetch struct {
	done chan struct{}
	meta Metadata
	err  error
}

// Service caches metadata by contract id. All methods are safe for
// concurrent use.
type Service struct {
	source  Source
	storage Storage
	network string
	ttl     time.Duration

	mu       sync.Mutex
	memory   map[string]Metadata
	inflight map[string]*inflightFetch
}

type Option func(*Service)

// WithStorage sets a persistent backing store. Without it metadata only
// survives for the life of the process.
func WithStorage(storage Storage) Option {
	return func(s *Service) {
		s.storage = storage
	}
}

// WithTTL overrides how long persisted metadata stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithNetwork selects which well-known token table applies.
func WithNetwork(network string) Option {
	return func(s *Service) {
		if network != "" {
			s.network = network
		}
	}
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source:   source,
		storage:  nopStorage{},
		network:  defaultNetwork,
		ttl:      defaultTTL,
		memory:   make(map[string]Metadata),
		inflight: make(map[string]*inflightFetch),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the metadata for contractID, fetching it at most once no
// matter how many callers ask concurrently. Failed lookups are not cached.
func (s *Service) Get(ctx context.Context, contractID string) (Metadata, error) {
	s.mu.Lock()

	if meta, ok := s.memory[contractID]; ok {
		s.mu.Unlock()
		return meta, nil
	}

	if meta, ok := wellKnownToken(s.network, contractID); ok {
		s.memory[contractID] = meta
		s.mu.Unlock()
		return meta, nil
	}

	if f, ok := s.inflight[contractID]; ok {
		s.mu.Unlock()
		select {
		case <-f.done:
			return f.meta, f.err
		case <-ctx.Done():
			return Metadata{}, ctx.Err()
		}
	}

	f := &inflightFetch{done: make(chan struct{})}
	s.inflight[contractID] = f
	s.mu.Unlock()

	f.meta, f.err = s.lookup(ctx, contractID)

	s.mu.Lock()
	delete(s.inflight, contractID)
	if f.err == nil {
		s.memory[contractID] = f.meta
	}
	s.mu.Unlock()
	close(f.done)

	return f.meta, f.err
}

// lookup resolves a miss from the persistent store, falling back to the
// chain and persisting the result.
func (s *Service) lookup(ctx context.Context, contractID string) (Metadata, error) {
	stored, err := s.storage.Load(ctx, contractID)
	switch {
	case err == nil:
		if stored.FetchedAt.IsZero() || time.Since(stored.FetchedAt) < s.ttl {
			return stored, nil
		}
	case !errors.Is(err, ErrMetadataNotFound):
		logger.Debug(ctx, "token metadata load failed", "contract_id", contractID, "error", err)
	}

	meta, err := s.source.FTMetadata(ctx, contractID)
	if err != nil {
		return Metadata{}, err
	}

	meta.ContractID = contractID
	meta.FetchedAt = time.Now()
	if err := s.storage.Save(ctx, meta); err != nil {
		logger.Debug(ctx, "token metadata save failed", "contract_id", contractID, "error", err)
	}
	return meta, nil
}
