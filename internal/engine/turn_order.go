package engine

// Introductions follow ledger order. Bidding for a player starts with the
// team after the introducer and wraps around:
//
//	ledger        AA BB CC DD
//	CC introduces DD AA BB CC
//	DD introduces AA BB CC DD

// NextUnintroduced returns the first team that has not introduced a player.
// ok is false once every team has introduced.
func NextUnintroduced(ledger []TeamEntry) (string, bool) {
	for _, entry := range ledger {
		if entry.Player == "" {
			return entry.IntroTm, true
		}
	}
	return "", false
}

// BiddingOrder lists every team in the order it is asked to bid after
// introducer opens. introducer is always last.
func BiddingOrder(ledger []TeamEntry, introducer string) []string {
	start, ok := FindTeam(ledger, introducer)
	if !ok {
		return nil
	}
	order := make([]string, 0, len(ledger))
	for i := 1; i <= len(ledger); i++ {
		order = append(order, ledger[(start+i)%len(ledger)].IntroTm)
	}
	return order
}
