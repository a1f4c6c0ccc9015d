package engine

import "fmt"

// TeamEntry is one row of the draft ledger. Player is the player the team
// introduced; ClaimTm and Amt record who won that player and for how much.
type TeamEntry struct {
	IntroTm   string `json:"IntroTm"`
	ClaimTm   string `json:"ClaimTm"`
	Player    string `json:"Player"`
	Amt       int    `json:"Amt"`
	MoneyLeft int    `json:"MoneyLeft"`
}

// NewLedger builds a fresh ledger in the given order.
func NewLedger(specs []TeamSpec) ([]TeamEntry, error) {
	if len(specs) < 2 {
		return nil, fmt.Errorf("%w: at least two teams are required to start a draft", ErrInvalidConfiguration)
	}

	seen := make(map[string]bool, len(specs))
	ledger := make([]TeamEntry, 0, len(specs))
	for i, spec := range specs {
		if spec.Code == "" {
			return nil, fmt.Errorf("%w: team %d has no code", ErrInvalidConfiguration, i+1)
		}
		if seen[spec.Code] {
			return nil, fmt.Errorf("%w: team %s listed twice", ErrInvalidConfiguration, spec.Code)
		}
		if spec.Budget < 0 {
			return nil, fmt.Errorf("%w: team %s has a negative budget", ErrInvalidConfiguration, spec.Code)
		}
		seen[spec.Code] = true
		ledger = append(ledger, TeamEntry{IntroTm: spec.Code, MoneyLeft: spec.Budget})
	}
	return ledger, nil
}

func FindTeam(ledger []TeamEntry, code string) (int, bool) {
	for i, entry := range ledger {
		if entry.IntroTm == code {
			return i, true
		}
	}
	return -1, false
}

// PendingPlayer returns the index of the introduced player that has not been
// claimed yet.
func PendingPlayer(ledger []TeamEntry) (int, bool) {
	for i, entry := range ledger {
		if entry.Player != "" && entry.ClaimTm == "" {
			return i, true
		}
	}
	return -1, false
}

// ApplyWin stamps the pending player as won by winner for amount and charges
// the winner. It returns a new ledger and the player's name.
func ApplyWin(ledger []TeamEntry, winner string, amount int) ([]TeamEntry, string, error) {
	slot, ok := PendingPlayer(ledger)
	if !ok {
		return ledger, "", ErrNoActiveRound
	}
	w, ok := FindTeam(ledger, winner)
	if !ok {
		return ledger, "", &TeamError{Team: winner}
	}
	if ledger[w].MoneyLeft < amount {
		return ledger, "", &FundsError{Team: winner, Amount: amount, MoneyLeft: ledger[w].MoneyLeft}
	}

	out := make([]TeamEntry, len(ledger))
	copy(out, ledger)
	out[slot].ClaimTm = winner
	out[slot].Amt = amount
	out[w].MoneyLeft -= amount
	return out, out[slot].Player, nil
}

// Active reports whether a draft is loaded and at least one team's player
// has not been claimed yet.
func Active(ledger []TeamEntry) bool {
	for _, entry := range ledger {
		if entry.ClaimTm == "" {
			return true
		}
	}
	return false
}
