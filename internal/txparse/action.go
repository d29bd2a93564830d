// Package txparse normalizes the loosely-typed transaction payloads served
// by the indexing API into flat, human-meaningful records: decoded actions,
// unwrapped meta-transactions, and token-transfer events inferred from
// execution logs.
//
// Decoding is deliberately lossy and never fails: the upstream format mixes
// several encodings for the same concepts, and a single malformed fragment
// must not blank out an entire transaction view. Absent or wrong-typed
// fields are omitted from the result instead of raising errors.
package txparse

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"maps"
	"slices"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/pkg/types"

	"github.com/btcsuite/btcutil/base58"
)

// Action type tags used by the decoding and extraction logic. The upstream
// enumerates more (CreateAccount, AddKey, Stake, ...); they pass through
// untouched.
const (
	ActionTransfer      = "Transfer"
	ActionFunctionCall  = "FunctionCall"
	ActionDelegate      = "Delegate"
	ActionDeleteAccount = "DeleteAccount"
)

// Action is a normalized transaction action. Type is always taken from the
// discriminant of the raw tagged union; every other field is optional and
// populated only when the raw payload carries it with the expected type.
type Action struct {
	Type                string        `json:"type"`
	MethodName          string        `json:"method_name,omitempty"`
	Deposit             types.Balance `json:"deposit,omitempty"`
	Args                string        `json:"args,omitempty"`
	Gas                 int64         `json:"gas,omitempty"`
	PublicKey           string        `json:"public_key,omitempty"`
	AccessKeyPermission string        `json:"access_key_permission,omitempty"`
	BeneficiaryID       string        `json:"beneficiary_id,omitempty"`
	CodeHash            string        `json:"code_hash,omitempty"`
}

// DecodeAction converts one raw action into its normalized form. It accepts
// all three encodings the upstream uses: a bare string tag for zero-field
// actions, a single-key tagged object, and the flat {"type": ...} object
// found inside delegated envelopes. It never fails; undecodable input
// yields an Action with whatever could be salvaged.
func DecodeAction(raw nearapi.RawAction) Action {
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		return Action{Type: tag}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return Action{}
	}

	// Flat delegated shape: the tag lives in a "type" field next to the data.
	if typ, ok := asString(fields["type"]); ok {
		act := Action{Type: typ}
		applyKnownFields(&act, fields)
		return act
	}

	// Tagged union: the single key is the discriminant. Sorting keeps the
	// choice deterministic should a payload ever carry more than one key.
	typ := slices.Sorted(maps.Keys(fields))[0]
	act := Action{Type: typ}

	var value map[string]json.RawMessage
	if err := json.Unmarshal(fields[typ], &value); err == nil {
		applyKnownFields(&act, value)
	}
	return act
}

// decodeActions decodes a raw action list, preserving order.
func decodeActions(raws []nearapi.RawAction) []Action {
	if len(raws) == 0 {
		return nil
	}

	actions := make([]Action, len(raws))
	for i, raw := range raws {
		actions[i] = DecodeAction(raw)
	}
	return actions
}

// applyKnownFields copies the optional action fields the explorer cares
// about out of the raw field map. Wrong-typed values are ignored.
func applyKnownFields(act *Action, fields map[string]json.RawMessage) {
	if s, ok := asString(fields["method_name"]); ok {
		act.MethodName = s
	}
	if raw, ok := fields["deposit"]; ok {
		var deposit types.Balance
		if err := json.Unmarshal(raw, &deposit); err == nil {
			act.Deposit = deposit
		}
	}
	if s, ok := asString(fields["args"]); ok {
		act.Args = s
	}
	if n, ok := asInt64(fields["gas"]); ok {
		act.Gas = n
	}
	if s, ok := asString(fields["public_key"]); ok {
		act.PublicKey = s
	}
	if s, ok := asString(fields["beneficiary_id"]); ok {
		act.BeneficiaryID = s
	}
	if s, ok := asString(fields["code"]); ok {
		act.CodeHash = hashCode(s)
	}
	if raw, ok := fields["access_key"]; ok {
		act.AccessKeyPermission = accessKeyPermission(raw)
	}
}

// hashCode turns base64 contract bytecode into a base58 sha256 digest. The
// raw bytecode is never retained in the normalized record.
func hashCode(encoded string) string {
	code, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(code)
	return base58.Encode(sum[:])
}

// accessKeyPermission renders an access key's permission field: the literal
// "FullAccess", or "FunctionCall → <receiver>" for scoped keys.
func accessKeyPermission(raw json.RawMessage) string {
	var key struct {
		Permission json.RawMessage `json:"permission"`
	}
	if err := json.Unmarshal(raw, &key); err != nil {
		return ""
	}

	if s, ok := asString(key.Permission); ok {
		if s == "FullAccess" {
			return s
		}
		return ""
	}

	var perm struct {
		FunctionCall *struct {
			ReceiverID string `json:"receiver_id"`
		} `json:"FunctionCall"`
	}
	if err := json.Unmarshal(key.Permission, &perm); err != nil || perm.FunctionCall == nil {
		return ""
	}

	receiver := perm.FunctionCall.ReceiverID
	if receiver == "" {
		receiver = "?"
	}
	return "FunctionCall → " + receiver
}

// delegateEnvelope returns the delegated-action fields when raw is a
// Delegate wrapper. Some upstream versions nest the payload one level
// deeper under "delegate_action".
func delegateEnvelope(raw nearapi.RawAction) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}

	inner, ok := fields["Delegate"]
	if !ok {
		return nil, false
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(inner, &envelope); err != nil {
		return nil, false
	}

	if nestedRaw, ok := envelope["delegate_action"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(nestedRaw, &nested); err == nil {
			return nested, true
		}
	}
	return envelope, true
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func asInt64(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}
