package engine

// StatusView is the read model behind the status message.
type StatusView struct {
	Phase           Phase
	NextToIntroduce string
	Player          string
	HighBid         int
	HighBidder      string
	OnTheClock      string
	NextUp          []string
}

type RecapView struct {
	Draft  []TeamEntry
	Round  Round
	Status StatusView
}

func Status(s State) (StatusView, error) {
	view := StatusView{Phase: DerivePhase(s)}

	switch view.Phase {
	case PhaseNoDraft:
		return view, ErrNoActiveDraft
	case PhaseAwaitingIntroduction:
		view.NextToIntroduce, _ = NextUnintroduced(s.Draft)
	case PhaseBidding:
		if i, ok := PendingPlayer(s.Draft); ok {
			view.Player = s.Draft[i].Player
		}
		standing := s.Round.StandingBid()
		view.HighBid = standing.Amt
		view.HighBidder = standing.Tm
		view.OnTheClock = s.Round[0].Tm
		for _, entry := range s.Round[1:] {
			view.NextUp = append(view.NextUp, entry.Tm)
		}
	}
	return view, nil
}

func Recap(s State) (RecapView, error) {
	if len(s.Draft) == 0 && len(s.Round) == 0 {
		return RecapView{}, ErrNoActiveDraft
	}
	status, _ := Status(s)
	c := s.Clone()
	return RecapView{Draft: c.Draft, Round: c.Round, Status: status}, nil
}
