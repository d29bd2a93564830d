// Package format renders chain amounts for human consumption: yoctoNEAR
// values, fungible-token base units, and gas. Raw integer strings stay
// untouched elsewhere in the codebase; only the presentation layer calls
// into this package.
package format

import (
	"fmt"
	"strings"

	"github.com/nearlens/nearlens/internal/pkg/types"

	"github.com/shopspring/decimal"
)

// nearDecimals is the number of decimal places of the native coin
// (1 NEAR = 10^24 yoctoNEAR).
const nearDecimals = 24

// maxFractionDigits caps the displayed fractional part.
const maxFractionDigits = 5

// TokenAmount converts an integer base-unit amount into a decimal string
// using the token's declared decimals, truncated to five fractional digits.
// Malformed amounts are returned verbatim rather than dropped.
func TokenAmount(amount types.Balance, decimals int) string {
	n, ok := amount.BigInt()
	if !ok {
		return string(amount)
	}

	d := decimal.NewFromBigInt(n, int32(-decimals))
	return d.Truncate(maxFractionDigits).String()
}

// Near renders a yoctoNEAR amount as NEAR.
func Near(amount types.Balance) string {
	return TokenAmount(amount, nearDecimals) + " NEAR"
}

// Gas renders a gas amount in Tgas with two fractional digits.
func Gas(gas int64) string {
	d := decimal.NewFromInt(gas).Shift(-12)
	return d.StringFixed(2) + " Tgas"
}

// TokenRef describes a token-id string found in multi-token events. The
// id may embed a wrapped-token reference with a "nep141:" or "nep245:"
// prefix; splitting it is display-only, the extractor keeps ids verbatim.
type TokenRef struct {
	Standard string // "nep141" or "nep245" when the id carries a prefix
	ID       string // remainder of the id, or the full raw id
}

// ParseTokenRef splits a multi-token id into its optional standard prefix
// and the remaining reference. Ids whose prefix payload is empty are kept
// whole, since the upstream convention is not guaranteed exhaustive.
func ParseTokenRef(tokenID string) TokenRef {
	for _, standard := range []string{"nep141", "nep245"} {
		rest, found := strings.CutPrefix(tokenID, standard+":")
		if found && rest != "" {
			return TokenRef{Standard: standard, ID: rest}
		}
	}

	return TokenRef{ID: tokenID}
}

// String renders the reference back into its display form.
func (r TokenRef) String() string {
	if r.Standard == "" {
		return r.ID
	}
	return fmt.Sprintf("%s (%s)", r.ID, r.Standard)
}
