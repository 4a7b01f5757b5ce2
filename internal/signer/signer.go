// Package signer defines the gateway to the user's private key. The core
// never touches key material: it hands an unsigned transaction to a Gateway
// and gets back a signed one, a rejection, or an unavailability error.
//
// Signing is a user-in-the-loop step. A rejection is terminal for that
// transfer and is never retried automatically.
package signer

import (
	"context"

	"github.com/gagliardetto/solana-go"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

// Gateway is the only channel to signing capability.
type Gateway interface {
	// Available reports whether a signer is installed. Absence is a normal,
	// handled condition, not a crash.
	Available() bool
	// Connect performs the handshake and returns the wallet identity.
	Connect(ctx context.Context) (solana.PublicKey, error)
	// Disconnect ends the session. Safe to call when not connected.
	Disconnect(ctx context.Context) error
	// SignTransaction requests a signature for the built transaction.
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// ErrUnavailable is returned when no signer is installed.
func ErrUnavailable() error {
	return apperr.New(apperr.CodeSigner, "no wallet signer available")
}

// ErrRejected is returned when the user declines to sign.
func ErrRejected() error {
	return apperr.New(apperr.CodeRejected, "signature request rejected by user")
}
