package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAmount is returned for user input that cannot become a positive
// base-unit amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseUnits converts a decimal string such as "1.5" into base units with the
// given number of decimals. Empty, non-numeric, zero, negative and
// over-precise inputs are rejected.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}

	v, ok := new(big.Int).SetString(whole+frac+strings.Repeat("0", decimals-len(frac)), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if v.Sign() == 0 {
		return nil, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if v.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %q does not fit in uint256", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseInteger parses a non-negative decimal integer such as a token or
// listing id.
func ParseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || !isDigits(s) {
		return nil, fmt.Errorf("%w: %q is not a whole number", ErrInvalidAmount, s)
	}
	v, _ := new(big.Int).SetString(s, 10)
	if v.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %q does not fit in uint256", ErrInvalidAmount, s)
	}
	return v, nil
}

// FormatUnits renders v as a decimal string with at most maxFrac fractional
// digits, trimming trailing zeros. A nil v renders as "0".
func FormatUnits(v *big.Int, decimals, maxFrac int) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)

	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(abs, base, new(big.Int))

	frac := rem.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	if decimals == 0 {
		frac = ""
	}
	if maxFrac < len(frac) {
		frac = frac[:maxFrac]
	}
	frac = strings.TrimRight(frac, "0")

	out := whole.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatBps renders basis points as a percentage, e.g. 250 -> "2.5%".
func FormatBps(bps *big.Int) string {
	return FormatUnits(bps, 2, 2) + "%"
}

// ShortenAddress renders an address as 0x1234...abcd.
func ShortenAddress(addr common.Address) string {
	s := addr.Hex()
	return s[:6] + "..." + s[len(s)-4:]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
