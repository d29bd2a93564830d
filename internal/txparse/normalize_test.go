package txparse

import (
	"encoding/json"
	"testing"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("plain transaction", func(t *testing.T) {
		tx := testTx("alice.near", "bob.near", `{"Transfer":{"deposit":"500"}}`)
		tx.ExecutionOutcome.Outcome.GasBurnt = 100

		got := Normalize(tx)

		assert.Equal(t, "txhash", got.Hash)
		assert.Equal(t, "alice.near", got.SignerID)
		assert.Equal(t, "bob.near", got.ReceiverID)
		assert.Equal(t, int64(100), got.BlockHeight)
		assert.Equal(t, int64(1700000000000000000), got.TimestampNanos)
		assert.Empty(t, got.RelayerID)
		require.NotNil(t, got.IsSuccess)
		assert.True(t, *got.IsSuccess)
		require.Len(t, got.Actions, 1)
		assert.Equal(t, ActionTransfer, got.Actions[0].Type)
		require.Len(t, got.Transfers, 1)
		assert.Equal(t, types.Balance("500"), got.Transfers[0].Amount)
	})

	t.Run("delegate unwrap exposes the real parties", func(t *testing.T) {
		tx := testTx("relay.near", "relay-target.near",
			`{"Delegate":{"delegate_action":{"sender_id":"alice.near","receiver_id":"bob.near","actions":[{"Transfer":{"deposit":"500"}}]}}}`)

		got := Normalize(tx)

		assert.Equal(t, "alice.near", got.SignerID)
		assert.Equal(t, "bob.near", got.ReceiverID)
		assert.Equal(t, "relay.near", got.RelayerID)
		require.Len(t, got.Actions, 1)
		assert.Equal(t, ActionTransfer, got.Actions[0].Type)
		assert.Equal(t, types.Balance("500"), got.Actions[0].Deposit)
		require.Len(t, got.Transfers, 1)
		assert.Equal(t, "alice.near", got.Transfers[0].From)
		assert.Equal(t, "bob.near", got.Transfers[0].To)
	})

	t.Run("delegate without sender_id left untouched", func(t *testing.T) {
		tx := testTx("relay.near", "relay-target.near",
			`{"Delegate":{"delegate_action":{"receiver_id":"bob.near","actions":[]}}}`)

		got := Normalize(tx)

		assert.Equal(t, "relay.near", got.SignerID)
		assert.Equal(t, "relay-target.near", got.ReceiverID)
		assert.Empty(t, got.RelayerID)
	})

	t.Run("delegate among multiple actions not unwrapped", func(t *testing.T) {
		tx := testTx("relay.near", "relay-target.near",
			`{"Delegate":{"delegate_action":{"sender_id":"alice.near","receiver_id":"bob.near","actions":[]}}}`,
			`{"Transfer":{"deposit":"1"}}`,
		)

		got := Normalize(tx)

		assert.Equal(t, "relay.near", got.SignerID)
		assert.Empty(t, got.RelayerID)
		assert.Len(t, got.Actions, 2)
	})
}

func TestNormalize_GasRollup(t *testing.T) {
	tx := testTx("alice.near", "bob.near", `{"Transfer":{"deposit":"1"}}`)
	tx.ExecutionOutcome.Outcome.GasBurnt = 1000

	for _, gas := range []int64{200, 300, 0} {
		tx.Receipts = append(tx.Receipts, nearapi.ReceiptWithOutcome{
			Receipt: nearapi.ReceiptBody{ReceiverID: "bob.near"},
			ExecutionOutcome: nearapi.OutcomeWithBlock{
				Outcome: nearapi.ExecutionOutcome{GasBurnt: gas},
			},
		})
	}

	got := Normalize(tx)
	assert.Equal(t, int64(1500), got.GasBurnt)
}

func TestNormalize_Status(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status map[string]json.RawMessage
		want   *bool
	}{
		{
			name:   "success value",
			status: map[string]json.RawMessage{"SuccessValue": json.RawMessage(`""`)},
			want:   boolPtr(true),
		},
		{
			name:   "success receipt id",
			status: map[string]json.RawMessage{"SuccessReceiptId": json.RawMessage(`"abc"`)},
			want:   boolPtr(true),
		},
		{
			name:   "failure",
			status: map[string]json.RawMessage{"Failure": json.RawMessage(`{}`)},
			want:   boolPtr(false),
		},
		{
			name:   "unknown status key",
			status: map[string]json.RawMessage{"Pending": json.RawMessage(`{}`)},
			want:   nil,
		},
		{
			name:   "no status",
			status: nil,
			want:   nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tx := testTx("alice.near", "bob.near")
			tx.ExecutionOutcome.Outcome.Status = tc.status

			got := Normalize(tx)
			if tc.want == nil {
				assert.Nil(t, got.IsSuccess)
			} else {
				require.NotNil(t, got.IsSuccess)
				assert.Equal(t, *tc.want, *got.IsSuccess)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }
