package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nearlens/nearlens/internal/tokenmeta"

	"github.com/redis/go-redis/v9"
)

// tokenMetadataTTL bounds how long a persisted entry outlives the cache's
// own freshness window before Redis reclaims it.
const tokenMetadataTTL = 30 * 24 * time.Hour

// tokenMetadataKey constructs the Redis key holding one token's metadata:
//
//	"tokenmeta:<contract id>"
func tokenMetadataKey(contractID string) string {
	return fmt.Sprintf("tokenmeta:%s", contractID)
}

// Save persists a token's metadata as JSON with a bounded lifetime.
func (c *client) Save(ctx context.Context, meta tokenmeta.Metadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata for %s: %w", meta.ContractID, err)
	}

	return c.conn.Set(ctx, tokenMetadataKey(meta.ContractID), payload, tokenMetadataTTL).Err()
}

// Load retrieves a token's persisted metadata, mapping a missing key to
// tokenmeta.ErrMetadataNotFound.
func (c *client) Load(ctx context.Context, contractID string) (tokenmeta.Metadata, error) {
	payload, err := c.conn.Get(ctx, tokenMetadataKey(contractID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = tokenmeta.ErrMetadataNotFound
		}

		return tokenmeta.Metadata{}, err
	}

	var meta tokenmeta.Metadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return tokenmeta.Metadata{}, fmt.Errorf("decoding metadata for %s: %w", contractID, err)
	}

	return meta, nil
}

// Compile-time assertion to ensure client implements the tokenmeta storage interface.
var _ tokenmeta.Storage = new(client)
