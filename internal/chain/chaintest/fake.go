// Package chaintest provides a programmable in-memory chain.Client for
// pipeline and store tests.
package chaintest

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/ENuel20/SoNa/internal/chain"
	apperr "github.com/ENuel20/SoNa/internal/errors"
)

// Fake implements chain.Client with scripted responses and call counters.
// The zero value is usable; fields may be adjusted between calls.
type Fake struct {
	mu sync.Mutex

	Lamports     uint64
	BalanceErr   error
	BalanceCalls int
	// BalanceDelay makes Balance block, to exercise refresh collapsing.
	BalanceDelay time.Duration

	Tokens    map[solana.PublicKey]uint64
	Existing  map[solana.PublicKey]bool
	ExistsErr error

	Blockhash solana.Hash
	// BlockhashFails makes the first N calls fail; set it high for a
	// permanently unavailable endpoint.
	BlockhashFails int
	BlockhashCalls int

	NextSig     solana.Signature
	SubmitErr   error
	SubmitCalls int

	// StatusSeq is consumed one entry per poll; the last entry repeats.
	StatusSeq   []chain.Status
	StatusErr   error
	StatusCalls int

	Recent    []chain.SignatureInfo
	RecentErr error
}

func (f *Fake) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	f.BalanceCalls++
	delay := f.BalanceDelay
	lamports, err := f.Lamports, f.BalanceErr
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}
	}
	return lamports, err
}

func (f *Fake) TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Tokens[account], 9, nil
}

func (f *Fake) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ExistsErr != nil {
		return false, f.ExistsErr
	}
	return f.Existing[addr], nil
}

func (f *Fake) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BlockhashCalls++
	if f.BlockhashCalls <= f.BlockhashFails {
		return solana.Hash{}, apperr.New(apperr.CodeUnavailable, "fetch recent blockhash")
	}
	return f.Blockhash, nil
}

func (f *Fake) SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubmitCalls++
	if f.SubmitErr != nil {
		return solana.Signature{}, f.SubmitErr
	}
	return f.NextSig, nil
}

func (f *Fake) SignatureStatus(ctx context.Context, sig solana.Signature) (chain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatusCalls++
	if f.StatusErr != nil {
		return chain.StatusUnknown, f.StatusErr
	}
	if len(f.StatusSeq) == 0 {
		return chain.StatusUnknown, nil
	}
	status := f.StatusSeq[0]
	if len(f.StatusSeq) > 1 {
		f.StatusSeq = f.StatusSeq[1:]
	}
	return status, nil
}

func (f *Fake) RecentSignatures(ctx context.Context, addr solana.PublicKey, limit int) ([]chain.SignatureInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RecentErr != nil {
		return nil, f.RecentErr
	}
	out := make([]chain.SignatureInfo, len(f.Recent))
	copy(out, f.Recent)
	return out, nil
}

var _ chain.Client = (*Fake)(nil)

// Calls returns a consistent snapshot of the call counters.
func (f *Fake) Calls() (balance, blockhash, submit, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BalanceCalls, f.BlockhashCalls, f.SubmitCalls, f.StatusCalls
}
