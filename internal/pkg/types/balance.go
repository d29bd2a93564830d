package types

import (
	"encoding/json"
	"math/big"
)

// Balance is a token amount expressed as a base-10 integer string in the
// token's smallest unit (yoctoNEAR for the native coin). The upstream API
// serializes these values as JSON strings because they routinely exceed
// the range of a 64-bit integer.
type Balance string

// IsZero reports whether the balance is absent, empty, or equal to zero.
// Malformed values are treated as zero so that noisy wire data never
// produces phantom transfers.
func (b Balance) IsZero() bool {
	if b == "" {
		return true
	}

	n, ok := b.BigInt()
	return !ok || n.Sign() == 0
}

// BigInt parses the balance into a big.Int. The second return value is
// false when the string is not a valid base-10 integer.
func (b Balance) BigInt() (*big.Int, bool) {
	n, ok := new(big.Int).SetString(string(b), 10)
	if !ok {
		return nil, false
	}
	return n, true
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number. Some
// upstream endpoints are inconsistent about which encoding they use for
// small amounts.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Balance(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*b = Balance(n.String())
	return nil
}

// MarshalJSON encodes the balance as a JSON string.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(b))
}
