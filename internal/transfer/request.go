// Package transfer implements the command-to-transaction pipeline: balance
// validation, transaction building, and the broadcast/confirmation engine.
// One Request carries a transfer attempt through every stage and is dropped
// on terminal success or failure.
package transfer

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ENuel20/SoNa/internal/asset"
	"github.com/ENuel20/SoNa/internal/command"
)

// Stage of a transfer request. Stages advance strictly in order; no stage
// begins before the previous one's result is known.
type Stage string

const (
	StageBuilt     Stage = "built"
	StageSigned    Stage = "signed"
	StageSubmitted Stage = "submitted"
	StageConfirmed Stage = "confirmed"
	StageFailed    Stage = "failed"
	StageExpired   Stage = "expired"
)

// Terminal reports whether the stage ends the request's lifecycle.
func (s Stage) Terminal() bool {
	switch s {
	case StageConfirmed, StageFailed, StageExpired:
		return true
	}
	return false
}

// Request is the transient workflow object for one transfer attempt.
type Request struct {
	Intent    command.Intent
	Asset     asset.Asset
	Amount    uint64 // base units
	Sender    solana.PublicKey
	Recipient solana.PublicKey

	Unsigned  *solana.Transaction
	Signed    *solana.Transaction
	Signature solana.Signature

	Stage Stage
}
