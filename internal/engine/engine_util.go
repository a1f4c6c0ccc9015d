package engine

func NewEmptyState() State {
	return State{
		Draft: []TeamEntry{},
		Round: Round{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Draft:         make([]TeamEntry, len(s.Draft)),
		Round:         make(Round, len(s.Round)),
		LastChannelID: s.LastChannelID,
	}
	copy(out.Draft, s.Draft)
	copy(out.Round, s.Round)
	return out
}

// Normalize replaces nil slices so that an empty state always encodes as [].
func (s State) Normalize() State {
	if s.Draft == nil {
		s.Draft = []TeamEntry{}
	}
	if s.Round == nil {
		s.Round = Round{}
	}
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func FindEvent(events []Event, eventType EventType) (Event, bool) {
	for _, event := range events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}

func DerivePhase(s State) Phase {
	if len(s.Draft) == 0 {
		return PhaseNoDraft
	} else if len(s.Round) > 0 {
		return PhaseBidding
	} else if _, ok := NextUnintroduced(s.Draft); ok {
		return PhaseAwaitingIntroduction
	} else {
		return PhaseComplete
	}
}
