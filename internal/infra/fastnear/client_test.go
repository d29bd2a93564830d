package fastnear

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	transporthttp "github.com/nearlens/nearlens/internal/pkg/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, transporthttp.NewClient(transporthttp.WithRetryMax(0)))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestClient_Transactions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/transactions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		body := decodeBody(t, r)
		assert.Equal(t, []any{"h1", "h2"}, body["tx_hashes"])

		w.Write([]byte(`{"transactions": [
			{"transaction": {"hash": "h1", "signer_id": "a.near", "receiver_id": "b.near"}},
			{"transaction": {"hash": "h2", "signer_id": "c.near", "receiver_id": "d.near"}}
		]}`))
	})

	got, err := client.Transactions(context.Background(), []string{"h1", "h2"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "h1", got[0].Transaction.Hash)
	assert.Equal(t, "c.near", got[1].Transaction.SignerID)
}

func TestClient_Account(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/account", r.URL.Path)

		body := decodeBody(t, r)
		assert.Equal(t, "alice.near", body["account_id"])
		assert.Equal(t, "tok-1", body["resume_token"])
		assert.Equal(t, float64(10), body["limit"])

		w.Write([]byte(`{
			"account_txs": [{"transaction_hash": "h1", "account_id": "alice.near"}],
			"resume_token": "tok-2",
			"txs_count": 321
		}`))
	})

	got, err := client.Account(context.Background(), "alice.near", AccountFilter{ResumeToken: "tok-1", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.ResumeToken)
	assert.Equal(t, 321, got.TxsCount)
	require.Len(t, got.AccountTxs, 1)
	assert.Equal(t, "h1", got.AccountTxs[0].TransactionHash)
}

func TestClient_AccountActivityFetcher(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if _, ok := body["resume_token"]; ok {
			w.Write([]byte(`{"account_txs": [{"transaction_hash": "h2"}], "txs_count": 2}`))
			return
		}
		w.Write([]byte(`{"account_txs": [{"transaction_hash": "h1"}], "resume_token": "tok", "txs_count": 2}`))
	})

	fetch := client.AccountActivityFetcher("alice.near")

	first, err := fetch(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, "tok", first.ResumeToken)
	assert.Equal(t, int64(2), first.TotalCount)

	second, err := fetch(context.Background(), first.ResumeToken, 1)
	require.NoError(t, err)
	assert.Empty(t, second.ResumeToken)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "h2", second.Items[0].TransactionHash)
}

func TestClient_BlocksFetcher(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/blocks", r.URL.Path)

		body := decodeBody(t, r)
		assert.Equal(t, true, body["desc"])
		assert.Equal(t, float64(2), body["limit"])

		if to, ok := body["to_block_height"]; ok {
			assert.Equal(t, float64(97), to)
			w.Write([]byte(`{"blocks": [{"block_height": 97}, {"block_height": 96}]}`))
			return
		}
		w.Write([]byte(`{"blocks": [{"block_height": 99}, {"block_height": 98}]}`))
	})

	fetch := client.BlocksFetcher()

	first, err := fetch(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, int64(99), first.Items[0].BlockHeight)
	assert.Equal(t, "97", first.ResumeToken)

	second, err := fetch(context.Background(), first.ResumeToken, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(97), second.Items[0].BlockHeight)
	assert.Equal(t, "95", second.ResumeToken)
}

func TestClient_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Transactions(context.Background(), []string{"h1"})
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
}
