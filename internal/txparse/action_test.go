package txparse

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/nearlens/nearlens/internal/pkg/types"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	t.Run("string tag", func(t *testing.T) {
		act := DecodeAction(json.RawMessage(`"CreateAccount"`))
		assert.Equal(t, Action{Type: "CreateAccount"}, act)
	})

	t.Run("function call", func(t *testing.T) {
		raw := json.RawMessage(`{"FunctionCall":{"method_name":"ft_transfer","deposit":"1","args":"e30=","gas":30000000000000}}`)

		act := DecodeAction(raw)
		assert.Equal(t, "FunctionCall", act.Type)
		assert.Equal(t, "ft_transfer", act.MethodName)
		assert.Equal(t, types.Balance("1"), act.Deposit)
		assert.Equal(t, "e30=", act.Args)
		assert.Equal(t, int64(30000000000000), act.Gas)
	})

	t.Run("transfer", func(t *testing.T) {
		act := DecodeAction(json.RawMessage(`{"Transfer":{"deposit":"5000000000000000000000000"}}`))
		assert.Equal(t, ActionTransfer, act.Type)
		assert.Equal(t, types.Balance("5000000000000000000000000"), act.Deposit)
	})

	t.Run("delete account with beneficiary", func(t *testing.T) {
		act := DecodeAction(json.RawMessage(`{"DeleteAccount":{"beneficiary_id":"heir.near"}}`))
		assert.Equal(t, ActionDeleteAccount, act.Type)
		assert.Equal(t, "heir.near", act.BeneficiaryID)
	})

	t.Run("flat delegated shape", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"FunctionCall","method_name":"claim","deposit":"0","gas":10000000000000}`)

		act := DecodeAction(raw)
		assert.Equal(t, "FunctionCall", act.Type)
		assert.Equal(t, "claim", act.MethodName)
		assert.Equal(t, int64(10000000000000), act.Gas)
	})

	t.Run("wrong-typed fields are dropped", func(t *testing.T) {
		raw := json.RawMessage(`{"FunctionCall":{"method_name":42,"deposit":{"nested":true},"gas":"not-a-number"}}`)

		act := DecodeAction(raw)
		assert.Equal(t, "FunctionCall", act.Type)
		assert.Empty(t, act.MethodName)
		assert.Empty(t, act.Deposit)
		assert.Zero(t, act.Gas)
	})

	t.Run("malformed payload does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			DecodeAction(json.RawMessage(`[1,2,3]`))
			DecodeAction(json.RawMessage(`{not json`))
			DecodeAction(json.RawMessage(`{}`))
			DecodeAction(nil)
		})
	})

	t.Run("decode is idempotent", func(t *testing.T) {
		raws := []json.RawMessage{
			json.RawMessage(`"CreateAccount"`),
			json.RawMessage(`{"FunctionCall":{"method_name":"mint","deposit":"1","gas":5}}`),
			json.RawMessage(`{"Transfer":{"deposit":"0"}}`),
			json.RawMessage(`{"type":"Transfer","deposit":"9"}`),
		}

		for _, raw := range raws {
			first := DecodeAction(raw)
			second := DecodeAction(raw)
			assert.Equal(t, first, second)
		}
	})
}

func TestDecodeAction_CodeHash(t *testing.T) {
	t.Run("bytecode replaced by base58 digest", func(t *testing.T) {
		code := []byte("pretend this is wasm")
		encoded := base64.StdEncoding.EncodeToString(code)
		raw, err := json.Marshal(map[string]any{"DeployContract": map[string]any{"code": encoded}})
		require.NoError(t, err)

		act := DecodeAction(raw)
		assert.Equal(t, "DeployContract", act.Type)

		sum := sha256.Sum256(code)
		assert.Equal(t, base58.Encode(sum[:]), act.CodeHash)
	})

	t.Run("invalid base64 yields no hash", func(t *testing.T) {
		act := DecodeAction(json.RawMessage(`{"DeployContract":{"code":"%%%not-base64%%%"}}`))
		assert.Empty(t, act.CodeHash)
	})
}

func TestDecodeAction_AccessKeyPermission(t *testing.T) {
	t.Run("full access", func(t *testing.T) {
		raw := json.RawMessage(`{"AddKey":{"public_key":"ed25519:abc","access_key":{"nonce":0,"permission":"FullAccess"}}}`)

		act := DecodeAction(raw)
		assert.Equal(t, "ed25519:abc", act.PublicKey)
		assert.Equal(t, "FullAccess", act.AccessKeyPermission)
	})

	t.Run("function call scoped to a receiver", func(t *testing.T) {
		raw := json.RawMessage(`{"AddKey":{"access_key":{"permission":{"FunctionCall":{"receiver_id":"app.near","method_names":[]}}}}}`)

		act := DecodeAction(raw)
		assert.Equal(t, "FunctionCall → app.near", act.AccessKeyPermission)
	})

	t.Run("function call without receiver", func(t *testing.T) {
		raw := json.RawMessage(`{"AddKey":{"access_key":{"permission":{"FunctionCall":{}}}}}`)

		act := DecodeAction(raw)
		assert.Equal(t, "FunctionCall → ?", act.AccessKeyPermission)
	})

	t.Run("unknown permission shape ignored", func(t *testing.T) {
		raw := json.RawMessage(`{"AddKey":{"access_key":{"permission":{"Other":{}}}}}`)

		act := DecodeAction(raw)
		assert.Empty(t, act.AccessKeyPermission)
	})
}
