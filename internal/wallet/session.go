package wallet

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Direction of a recorded transfer relative to the session identity.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ConfirmationState of a recorded transfer.
type ConfirmationState string

const (
	StateSubmitted ConfirmationState = "submitted"
	StateConfirmed ConfirmationState = "confirmed"
	StateFailed    ConfirmationState = "failed"
)

// TransactionRecord is one entry of the session's transfer history. Records
// are appended at the head and never mutated after reaching a terminal state;
// the only non-terminal state is StateSubmitted, which a later history sync
// may resolve.
type TransactionRecord struct {
	Signature string `json:"signature"`
	Asset     string `json:"asset"`
	// Amount is a decimal string; rendering never recomputes it.
	Amount    string            `json:"amount"`
	Direction Direction         `json:"direction"`
	Timestamp time.Time         `json:"timestamp"`
	State     ConfirmationState `json:"state"`
}

// Snapshot is a point-in-time copy of the wallet session. It is a value:
// holders read it freely, and only the store ever writes the underlying
// session state.
type Snapshot struct {
	// Identity is nil while disconnected.
	Identity *solana.PublicKey
	// NativeBalance is the SOL balance in lamports, nil until first refresh.
	NativeBalance *uint64
	// FungibleBalances maps whitelisted token symbols to base-unit balances.
	// A symbol is absent until its first successful refresh.
	FungibleBalances map[string]uint64
	// Refreshed holds per-field refresh timestamps, keyed by asset symbol.
	Refreshed map[string]time.Time
	// History is the bounded transfer history, most recent first.
	History []TransactionRecord
}

// Connected reports whether the snapshot belongs to a connected session.
func (s Snapshot) Connected() bool {
	return s.Identity != nil
}

// NativeLamports returns the native balance, or 0 and false before the first
// refresh.
func (s Snapshot) NativeLamports() (uint64, bool) {
	if s.NativeBalance == nil {
		return 0, false
	}
	return *s.NativeBalance, true
}

// FungibleBase returns a token balance in base units, or 0 and false if the
// symbol has not been refreshed yet.
func (s Snapshot) FungibleBase(symbol string) (uint64, bool) {
	v, ok := s.FungibleBalances[symbol]
	return v, ok
}
