// Package nearrpc adapts a NEAR node's JSON-RPC endpoint for read-only
// contract view calls, in particular the ft_metadata lookups the token
// metadata cache needs.
package nearrpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/nearlens/nearlens/internal/pkg/resilience/retry"
	"github.com/nearlens/nearlens/internal/pkg/transport/jsonrpc"
	"github.com/nearlens/nearlens/internal/tokenmeta"
)

// MainnetEndpoint is the default node RPC endpoint.
const MainnetEndpoint = "https://rpc.mainnet.fastnear.com"

// Client issues view calls against a node RPC endpoint, retrying transient
// failures.
type Client struct {
	rpc   jsonrpc.Client
	retry retry.Retry
}

var _ tokenmeta.Source = (*Client)(nil)

func NewClient(rpc jsonrpc.Client, r retry.Retry) *Client {
	return &Client{
		rpc:   rpc,
		retry: r,
	}
}

// viewRequest is the params object of a "query" call against final state.
type viewRequest struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
	MethodName  string `json:"method_name"`
	ArgsBase64  string `json:"args_base64"`
}

// viewResult is the query response; the node encodes the returned bytes as
// a JSON array of integers.
type viewResult struct {
	Result      []int    `json:"result"`
	Logs        []string `json:"logs"`
	BlockHeight int64    `json:"block_height"`
}

// ViewFunction invokes a read-only contract method and returns its raw
// result bytes. A nil args calls the method with an empty object.
func (c *Client) ViewFunction(ctx context.Context, contractID, methodName string, args any) ([]byte, error) {
	if args == nil {
		args = map[string]any{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding args: %w", err)
	}

	params := viewRequest{
		RequestType: "call_function",
		Finality:    "final",
		AccountID:   contractID,
		MethodName:  methodName,
		ArgsBase64:  base64.StdEncoding.EncodeToString(argsJSON),
	}

	var raw json.RawMessage
	err = c.retry.Execute(ctx, func() error {
		var callErr error
		raw, callErr = c.rpc.Call(ctx, "query", params)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s: %w", methodName, contractID, err)
	}

	var res viewResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decoding view result: %w", err)
	}

	out := make([]byte, len(res.Result))
	for i, b := range res.Result {
		out[i] = byte(b)
	}
	return out, nil
}

// FTMetadata fetches a fungible-token contract's NEP-148 metadata.
func (c *Client) FTMetadata(ctx context.Context, contractID string) (tokenmeta.Metadata, error) {
	payload, err := c.ViewFunction(ctx, contractID, "ft_metadata", nil)
	if err != nil {
		return tokenmeta.Metadata{}, err
	}

	var raw struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
		Icon     string `json:"icon"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return tokenmeta.Metadata{}, fmt.Errorf("decoding ft_metadata of %s: %w", contractID, err)
	}

	return tokenmeta.Metadata{
		ContractID: contractID,
		Name:       raw.Name,
		Symbol:     raw.Symbol,
		Decimals:   raw.Decimals,
		Icon:       raw.Icon,
	}, nil
}
