// Package asset holds the fixed whitelist of transferable assets and the
// decimal/base-unit conversions for their amounts. The whitelist is
// deployment configuration, not something negotiated at runtime.
package asset

import (
	"strings"

	"github.com/gagliardetto/solana-go"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

// Symbols of the two supported assets.
const (
	SymbolSOL   = "SOL"
	SymbolSONIC = "SONIC"
)

// DefaultSonicMint is the SONIC token mint on the Sonic SVM testnet.
const DefaultSonicMint = "7rh23QToLTBmYxR5jDiRbUtqcGey4xjDeU9JmtX6QChe"

// Asset describes one transferable asset. Native assets move through the
// system program; everything else is an SPL token identified by its mint.
type Asset struct {
	Symbol   string
	Decimals uint8
	Native   bool
	Mint     solana.PublicKey
}

// Registry is the asset whitelist keyed by upper-cased symbol.
type Registry struct {
	assets map[string]Asset
	order  []string
}

// NewRegistry builds a registry from the given assets, preserving order.
func NewRegistry(assets ...Asset) *Registry {
	r := &Registry{assets: make(map[string]Asset, len(assets))}
	for _, a := range assets {
		sym := strings.ToUpper(strings.TrimSpace(a.Symbol))
		if sym == "" {
			continue
		}
		a.Symbol = sym
		if _, dup := r.assets[sym]; !dup {
			r.order = append(r.order, sym)
		}
		r.assets[sym] = a
	}
	return r
}

// DefaultRegistry returns the deployed whitelist: native SOL and the SONIC
// SPL token, both with 9 decimals.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Asset{Symbol: SymbolSOL, Decimals: 9, Native: true},
		Asset{Symbol: SymbolSONIC, Decimals: 9, Mint: solana.MustPublicKeyFromBase58(DefaultSonicMint)},
	)
}

// RegistryWithMint is DefaultRegistry with the SONIC mint overridden, for
// deployments pointing at a different cluster.
func RegistryWithMint(sonicMint string) (*Registry, error) {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(sonicMint))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUsage, "invalid sonic mint address", err)
	}
	return NewRegistry(
		Asset{Symbol: SymbolSOL, Decimals: 9, Native: true},
		Asset{Symbol: SymbolSONIC, Decimals: 9, Mint: mint},
	), nil
}

// Lookup resolves a symbol case-insensitively.
func (r *Registry) Lookup(symbol string) (Asset, bool) {
	a, ok := r.assets[strings.ToUpper(strings.TrimSpace(symbol))]
	return a, ok
}

// Symbols returns the whitelisted symbols in registration order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
