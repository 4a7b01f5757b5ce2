// Package chain is the RPC boundary to the target cluster. The rest of the
// system depends on the Client interface so pipeline tests can stub the
// network; the solana-go implementation lives in solana.go.
package chain

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Status is the observed commitment of a submitted transaction.
type Status string

const (
	// StatusUnknown means the cluster has not reported the signature yet.
	StatusUnknown   Status = "unknown"
	StatusProcessed Status = "processed"
	StatusConfirmed Status = "confirmed"
	StatusFinalized Status = "finalized"
	StatusFailed    Status = "failed"
)

// Reached reports whether s satisfies the requested commitment level.
func (s Status) Reached(level Status) bool {
	rank := func(v Status) int {
		switch v {
		case StatusProcessed:
			return 1
		case StatusConfirmed:
			return 2
		case StatusFinalized:
			return 3
		default:
			return 0
		}
	}
	if s == StatusFailed || level == StatusFailed {
		return false
	}
	return rank(s) >= rank(level)
}

// SignatureInfo is one entry of an address's recent signature history.
type SignatureInfo struct {
	Signature solana.Signature
	Slot      uint64
	BlockTime time.Time
	Failed    bool
}

// Client is the chain request/response surface the pipeline needs: balance
// queries, recency-marker fetch, submission, and status polling.
type Client interface {
	// Balance returns the native balance in lamports.
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)
	// TokenAccountBalance returns the balance of an SPL token account in
	// base units, plus the mint's decimals.
	TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, uint8, error)
	// AccountExists reports whether an account is present on chain.
	AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error)
	// LatestBlockhash fetches a fresh recency marker.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	// SubmitTransaction broadcasts a signed transaction.
	SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SignatureStatus reports the current commitment of a signature.
	SignatureStatus(ctx context.Context, sig solana.Signature) (Status, error)
	// RecentSignatures lists the newest signatures involving addr,
	// most recent first.
	RecentSignatures(ctx context.Context, addr solana.PublicKey, limit int) ([]SignatureInfo, error)
}
