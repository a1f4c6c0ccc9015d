package engine

// RoundEntry is a team still contesting the current player and the last
// amount it bid (0 = no bid yet).
type RoundEntry struct {
	Tm  string `json:"Tm"`
	Amt int    `json:"Amt"`
}

// Round is the bidding queue. The front entry is on the clock and the last
// entry holds the standing bid. Bidding re-queues a team at the tail, passing
// removes it, and the round is over when one team is left.
type Round []RoundEntry

// StartRound builds the queue for a player introduced by introducer: ledger
// order rotated to start just after introducer, with introducer last holding
// the opening bid.
func StartRound(ledger []TeamEntry, introducer string, amount int) Round {
	order := BiddingOrder(ledger, introducer)
	if len(order) == 0 {
		return Round{}
	}

	r := make(Round, 0, len(order))
	for _, team := range order {
		r = append(r, RoundEntry{Tm: team})
	}
	r[len(r)-1].Amt = amount
	return r
}

// OnTheClock returns the team expected to act next.
func (r Round) OnTheClock() (string, bool) {
	if len(r) == 0 {
		return "", false
	}
	return r[0].Tm, true
}

// StandingBid is the most recently placed bid, which every new bid must beat.
func (r Round) StandingBid() RoundEntry {
	if len(r) == 0 {
		return RoundEntry{}
	}
	return r[len(r)-1]
}

func (r Round) ApplyBid(team string, amount int) (Round, error) {
	if err := r.checkTurn(team); err != nil {
		return r, err
	}
	if current := r.StandingBid().Amt; amount <= current {
		return r, &BidError{Amount: amount, Current: current}
	}

	out := make(Round, 0, len(r))
	out = append(out, r[1:]...)
	out = append(out, RoundEntry{Tm: team, Amt: amount})
	return out, nil
}

func (r Round) ApplyPass(team string) (Round, error) {
	if err := r.checkTurn(team); err != nil {
		return r, err
	}

	out := make(Round, 0, len(r)-1)
	out = append(out, r[1:]...)
	return out, nil
}

// Resolved returns the winning entry once exactly one team remains.
func (r Round) Resolved() (RoundEntry, bool) {
	if len(r) != 1 {
		return RoundEntry{}, false
	}
	return r[0], true
}

func (r Round) checkTurn(team string) error {
	front, ok := r.OnTheClock()
	if !ok {
		return ErrNoActiveRound
	}
	if front != team {
		return &TurnError{Team: team, Expected: front}
	}
	return nil
}
