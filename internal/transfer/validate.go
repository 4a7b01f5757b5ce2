package transfer

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ENuel20/SoNa/internal/asset"
	"github.com/ENuel20/SoNa/internal/command"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/wallet"
)

// InvalidRecipientError reports a structurally malformed recipient address.
type InvalidRecipientError struct {
	Recipient string
}

func (e *InvalidRecipientError) Error() string {
	return fmt.Sprintf("invalid recipient address %q", e.Recipient)
}

// InsufficientFundsError reports a requested amount above the snapshot
// balance. Available carries the spendable decimal amount so callers can
// render a precise message.
type InsufficientFundsError struct {
	Asset     string
	Requested string
	Available string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: requested %s, available %s", e.Asset, e.Requested, e.Available)
}

// Validator admits or rejects intents against a wallet snapshot before any
// chain interaction. It never triggers a refresh itself: the staleness
// window is bounded by the store's refresh interval, an accepted trade-off
// favoring responsiveness.
type Validator struct {
	assets *asset.Registry
}

func NewValidator(assets *asset.Registry) *Validator {
	return &Validator{assets: assets}
}

// Validate checks the recipient's structure first, then the balance, and on
// success returns the sized request skeleton. Failures carry a typed cause
// (InvalidRecipientError or InsufficientFundsError) under CodeValidation.
func (v *Validator) Validate(intent command.Intent, snap wallet.Snapshot) (Request, error) {
	recipient, err := solana.PublicKeyFromBase58(intent.Recipient)
	if err != nil {
		return Request{}, apperr.Wrap(apperr.CodeValidation, "validate recipient",
			&InvalidRecipientError{Recipient: intent.Recipient})
	}

	a, ok := v.assets.Lookup(intent.Asset)
	if !ok {
		return Request{}, apperr.New(apperr.CodeValidation, fmt.Sprintf("asset %s is not transferable", intent.Asset))
	}
	amount, err := asset.ToBaseUnits(intent.Amount, a.Decimals)
	if err != nil {
		return Request{}, apperr.Wrap(apperr.CodeValidation, "parse amount", err)
	}

	var available uint64
	if a.Native {
		available, _ = snap.NativeLamports()
	} else {
		available, _ = snap.FungibleBase(a.Symbol)
	}
	if amount > available {
		return Request{}, apperr.Wrap(apperr.CodeValidation, "check balance", &InsufficientFundsError{
			Asset:     a.Symbol,
			Requested: intent.Amount,
			Available: asset.FromBaseUnits(available, a.Decimals),
		})
	}

	return Request{
		Intent:    intent,
		Asset:     a,
		Amount:    amount,
		Recipient: recipient,
	}, nil
}
