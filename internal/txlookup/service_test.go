package txlookup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nearlens/nearlens/internal/nearapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls [][]string
	gate  chan struct{}
	fail  func(hashes []string) error
}

func (f *fakeAPI) Transactions(ctx context.Context, hashes []string) ([]nearapi.TransactionDetail, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(hashes))
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if f.fail != nil {
		if err := f.fail(hashes); err != nil {
			return nil, err
		}
	}

	out := make([]nearapi.TransactionDetail, 0, len(hashes))
	for _, hash := range hashes {
		out = append(out, nearapi.TransactionDetail{
			Transaction: nearapi.TransactionBody{
				Hash:       hash,
				SignerID:   "signer.near",
				ReceiverID: "receiver.near",
			},
		})
	}
	return out, nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func hashList(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("hash-%03d", i)
	}
	return out
}

func TestService_Fetch(t *testing.T) {
	t.Run("normalizes and caches", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewService(api)

		got, err := svc.Fetch(context.Background(), []string{"h1", "h2"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "signer.near", got["h1"].SignerID)
		assert.Equal(t, 1, api.callCount())

		got, err = svc.Fetch(context.Background(), []string{"h1", "h2"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, 1, api.callCount())
	})

	t.Run("duplicate input hashes collapse", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewService(api)

		got, err := svc.Fetch(context.Background(), []string{"h1", "h1", "h2", "h1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		require.Equal(t, 1, api.callCount())
		assert.Equal(t, []string{"h1", "h2"}, api.calls[0])
	})

	t.Run("splits into chunks of twenty", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewService(api)

		got, err := svc.Fetch(context.Background(), hashList(45))
		require.NoError(t, err)
		assert.Len(t, got, 45)
		require.Equal(t, 3, api.callCount())

		sizes := []int{len(api.calls[0]), len(api.calls[1]), len(api.calls[2])}
		slices.Sort(sizes)
		assert.Equal(t, []int{5, 20, 20}, sizes)
	})

	t.Run("failed chunk keeps the others' results", func(t *testing.T) {
		backendErr := errors.New("backend down")
		api := &fakeAPI{
			fail: func(hashes []string) error {
				if slices.Contains(hashes, "hash-024") {
					return backendErr
				}
				return nil
			},
		}
		svc := NewService(api)

		got, err := svc.Fetch(context.Background(), hashList(25))
		require.ErrorIs(t, err, backendErr)
		assert.Len(t, got, 20)
	})
}

func TestService_SingleFlight(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{})}
	svc := NewService(api)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Fetch(context.Background(), []string{"h1", "h2"})
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	assert.Equal(t, 1, api.callCount())
}

func TestService_Prefetch(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api)

	svc.Prefetch(context.Background(), []string{"h1", "h2"})

	require.Eventually(t, func() bool {
		_, ok := svc.Cached("h2")
		return ok
	}, time.Second, 5*time.Millisecond)

	got, err := svc.Fetch(context.Background(), []string{"h1", "h2"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, api.callCount())
}

func TestService_Stream(t *testing.T) {
	t.Run("delivers every chunk and closes", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewService(api)

		var got []string
		for tx := range svc.Stream(context.Background(), hashList(25)) {
			got = append(got, tx.Hash)
		}

		assert.Len(t, got, 25)
		assert.Equal(t, 2, api.callCount())
	})

	t.Run("cached entries stream without refetching", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewService(api)

		_, err := svc.Fetch(context.Background(), []string{"h1"})
		require.NoError(t, err)

		var got []string
		for tx := range svc.Stream(context.Background(), []string{"h1", "h2"}) {
			got = append(got, tx.Hash)
		}

		slices.Sort(got)
		assert.Equal(t, []string{"h1", "h2"}, got)
		require.Equal(t, 2, api.callCount())
		assert.Equal(t, []string{"h2"}, api.calls[1])
	})
}
