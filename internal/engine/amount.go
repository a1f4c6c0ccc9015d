package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Amounts are written in thousands ("12k") but stored as the bare number:
// the k is a label, never a multiplier.

func stripUnit(tok string) string {
	tok = strings.TrimSpace(tok)
	if strings.HasSuffix(tok, "k") || strings.HasSuffix(tok, "K") {
		return tok[:len(tok)-1]
	}
	return tok
}

// ParseAmount parses "12", "12k" or "12K" as 12.
func ParseAmount(tok string) (int, error) {
	digits := stripUnit(tok)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q, use a number followed by 'k' (e.g. 1k)", ErrInvalidAmount, tok)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q, use a number followed by 'k' (e.g. 1k)", ErrInvalidAmount, tok)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, tok)
	}
	return n, nil
}

// ParseBid is ParseAmount that also accepts "pass" in any case.
func ParseBid(tok string) (amount int, pass bool, err error) {
	if strings.EqualFold(stripUnit(tok), "pass") {
		return 0, true, nil
	}
	amount, err = ParseAmount(tok)
	return amount, false, err
}

// ParseBudget is the lenient budget parser used for team lists: anything
// that is not a valid amount counts as 0.
func ParseBudget(tok string) int {
	n, err := ParseAmount(tok)
	if err != nil {
		return 0
	}
	return n
}
