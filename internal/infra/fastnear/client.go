// Package fastnear is the HTTP adapter for the fastnear indexing API. All
// endpoints are POST with a JSON body under /v0.
package fastnear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/paging"
	"github.com/nearlens/nearlens/internal/txlookup"
)

// ErrUnexpectedStatusCode indicates a non-200 response from the API.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// MainnetBaseURL is the default indexing API endpoint.
const MainnetBaseURL = "https://tx.main.fastnear.com"

// Client calls the fastnear /v0 endpoints.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

var _ txlookup.TransactionAPI = (*Client)(nil)

func NewClient(baseURL string, httpClient *retryablehttp.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BlocksFilter narrows a Blocks listing. Zero values are omitted from the
// request.
type BlocksFilter struct {
	Limit           int   `json:"limit,omitempty"`
	Desc            bool  `json:"desc,omitempty"`
	ToBlockHeight   int64 `json:"to_block_height,omitempty"`
	FromBlockHeight int64 `json:"from_block_height,omitempty"`
}

// Blocks lists block headers, newest first when Desc is set.
func (c *Client) Blocks(ctx context.Context, filter BlocksFilter) (nearapi.BlocksResponse, error) {
	var out nearapi.BlocksResponse
	if err := c.post(ctx, "blocks", filter, &out); err != nil {
		return nearapi.BlocksResponse{}, fmt.Errorf("listing blocks: %w", err)
	}
	return out, nil
}

// Block fetches one block by height or hash, optionally with its
// transaction rows.
func (c *Client) Block(ctx context.Context, blockID any, withTransactions bool) (nearapi.BlockDetailResponse, error) {
	body := struct {
		BlockID          any  `json:"block_id"`
		WithTransactions bool `json:"with_transactions,omitempty"`
	}{blockID, withTransactions}

	var out nearapi.BlockDetailResponse
	if err := c.post(ctx, "block", body, &out); err != nil {
		return nearapi.BlockDetailResponse{}, fmt.Errorf("fetching block %v: %w", blockID, err)
	}
	return out, nil
}

// Transactions fetches full transaction details for the given hashes. The
// API accepts at most twenty hashes per call; callers chunk accordingly.
func (c *Client) Transactions(ctx context.Context, hashes []string) ([]nearapi.TransactionDetail, error) {
	body := struct {
		TxHashes []string `json:"tx_hashes"`
	}{hashes}

	var out nearapi.TransactionsResponse
	if err := c.post(ctx, "transactions", body, &out); err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	return out.Transactions, nil
}

// AccountFilter narrows an account activity listing.
type AccountFilter struct {
	ResumeToken string `json:"resume_token,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// Account lists an account's transaction activity, cursor-paginated via
// the response's resume token.
func (c *Client) Account(ctx context.Context, accountID string, filter AccountFilter) (nearapi.AccountResponse, error) {
	body := struct {
		AccountID string `json:"account_id"`
		AccountFilter
	}{accountID, filter}

	var out nearapi.AccountResponse
	if err := c.post(ctx, "account", body, &out); err != nil {
		return nearapi.AccountResponse{}, fmt.Errorf("fetching account %s activity: %w", accountID, err)
	}
	return out, nil
}

// AccountActivityFetcher adapts the account endpoint to the paging
// contract for one account.
func (c *Client) AccountActivityFetcher(accountID string) paging.FetchFunc[nearapi.AccountTx] {
	return func(ctx context.Context, resumeToken string, limit int) (paging.Page[nearapi.AccountTx], error) {
		res, err := c.Account(ctx, accountID, AccountFilter{ResumeToken: resumeToken, Limit: limit})
		if err != nil {
			return paging.Page[nearapi.AccountTx]{}, err
		}

		return paging.Page[nearapi.AccountTx]{
			Items:       res.AccountTxs,
			ResumeToken: res.ResumeToken,
			TotalCount:  int64(res.TxsCount),
		}, nil
	}
}

// BlocksFetcher adapts the blocks endpoint to the paging contract, newest
// block first. The endpoint has no cursor of its own, so the height below
// the last returned block acts as the resume token.
func (c *Client) BlocksFetcher() paging.FetchFunc[nearapi.BlockHeader] {
	return func(ctx context.Context, resumeToken string, limit int) (paging.Page[nearapi.BlockHeader], error) {
		filter := BlocksFilter{Limit: limit, Desc: true}
		if resumeToken != "" {
			height, err := strconv.ParseInt(resumeToken, 10, 64)
			if err != nil {
				return paging.Page[nearapi.BlockHeader]{}, fmt.Errorf("bad blocks resume token %q: %w", resumeToken, err)
			}
			filter.ToBlockHeight = height
		}

		res, err := c.Blocks(ctx, filter)
		if err != nil {
			return paging.Page[nearapi.BlockHeader]{}, err
		}

		page := paging.Page[nearapi.BlockHeader]{Items: res.Blocks}
		if n := len(res.Blocks); n > 0 {
			if prev := res.Blocks[n-1].BlockHeight - 1; prev > 0 {
				page.ResumeToken = strconv.FormatInt(prev, 10)
			}
		}
		return page, nil
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v0/"+endpoint, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
