package asset

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ToBaseUnits converts a decimal amount string like "2.5" into the asset's
// minor unit (lamports for SOL). The amount must be positive and must not
// carry more fractional digits than the asset has decimals.
func ToBaseUnits(decimal string, decimals uint8) (uint64, error) {
	clean := strings.TrimSpace(decimal)
	if !decimalPattern.MatchString(clean) {
		return 0, apperr.New(apperr.CodeUsage, fmt.Sprintf("amount must be in decimal form like 1.23, got %q", decimal))
	}

	parts := strings.SplitN(clean, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > int(decimals) {
		return 0, apperr.New(apperr.CodeUsage, fmt.Sprintf("decimal precision exceeds asset decimals (%d)", decimals))
	}

	fracPart += strings.Repeat("0", int(decimals)-len(fracPart))
	combined := strings.TrimLeft(intPart+fracPart, "0")
	if combined == "" {
		return 0, apperr.New(apperr.CodeUsage, "amount must be greater than zero")
	}
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return 0, apperr.New(apperr.CodeUsage, "invalid decimal amount")
	}
	if !n.IsUint64() {
		return 0, apperr.New(apperr.CodeUsage, "amount exceeds the representable range")
	}
	return n.Uint64(), nil
}

// FromBaseUnits renders base units as a decimal string with trailing zeros
// trimmed, e.g. 2500000000 with 9 decimals -> "2.5".
func FromBaseUnits(v uint64, decimals uint8) string {
	s := new(big.Int).SetUint64(v).String()
	if decimals == 0 {
		return s
	}
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	intPart := s[:len(s)-int(decimals)]
	fracPart := strings.TrimRight(s[len(s)-int(decimals):], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}
