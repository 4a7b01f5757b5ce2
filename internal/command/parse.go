// Package command extracts transfer intents from free-form chat text.
//
// The trigger is deliberately narrow: an exact `send <amount> <ASSET> to
// <address>` shape, nothing fuzzier. A miss is a routing signal, not an
// error; the message falls through to the assistant.
package command

import (
	"regexp"
	"strings"

	"github.com/ENuel20/SoNa/internal/asset"
)

// Intent is a structured transfer request extracted from one chat message.
// It is ephemeral: produced per message and never persisted.
type Intent struct {
	// Asset is the whitelisted symbol, upper-cased.
	Asset string
	// Amount is the decimal amount exactly as typed, e.g. "2.5".
	Amount string
	// Recipient is the raw address token. Chain-level validity is checked
	// later by the validator and the chain SDK, not here.
	Recipient string
}

var sendPattern = regexp.MustCompile(`(?i)^\s*send\s+([0-9]+(?:\.[0-9]+)?)\s+([A-Za-z]+)\s+to\s+([A-Za-z0-9]+)\s*$`)

// Parser recognizes transfer commands against a fixed asset whitelist.
type Parser struct {
	assets *asset.Registry
}

func NewParser(assets *asset.Registry) *Parser {
	return &Parser{assets: assets}
}

// Parse returns the intent and true when text matches the transfer shape and
// names a whitelisted asset with a positive amount. Everything else returns
// false so the caller routes the message to general conversation.
func (p *Parser) Parse(text string) (Intent, bool) {
	m := sendPattern.FindStringSubmatch(text)
	if m == nil {
		return Intent{}, false
	}
	a, ok := p.assets.Lookup(m[2])
	if !ok {
		return Intent{}, false
	}
	amount := m[1]
	if _, err := asset.ToBaseUnits(amount, a.Decimals); err != nil {
		// Zero or over-precise amounts are not transfer commands.
		return Intent{}, false
	}
	return Intent{
		Asset:     a.Symbol,
		Amount:    amount,
		Recipient: strings.TrimSpace(m[3]),
	}, true
}
