package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidConfiguration = errors.New("invalid draft configuration")
var ErrNoActiveDraft = errors.New("no draft in progress")
var ErrOutOfTurn = errors.New("out of turn")
var ErrDraftAlreadyComplete = errors.New("draft already complete")
var ErrUnknownTeam = errors.New("unknown team")
var ErrEmptyPlayerName = errors.New("player name cannot be empty")
var ErrInvalidAmount = errors.New("invalid amount")
var ErrBidTooLow = errors.New("bid too low")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrNoActiveRound = errors.New("no player is up for bidding")
var ErrRoundInProgress = errors.New("bidding round in progress")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseNoDraft              Phase = "no_draft"
	PhaseAwaitingIntroduction Phase = "awaiting_introduction"
	PhaseBidding              Phase = "bidding"
	PhaseComplete             Phase = "complete"
)

// State is the whole persisted snapshot.
type State struct {
	Draft         []TeamEntry `json:"draft"`
	Round         Round       `json:"round"`
	LastChannelID ChannelID   `json:"last_channel_id"`
}

type TeamSpec struct {
	Code   string
	Budget int
}

// Command is one of StartDraft, Introduce or Bid.
type Command interface {
	Channel() ChannelID
	isCommand()
}

type StartDraft struct {
	ChannelID ChannelID
	Teams     []TeamSpec
}

type Introduce struct {
	ChannelID ChannelID
	Team      string
	Player    string
	Amount    string // raw token, e.g. "10k"
}

type Bid struct {
	ChannelID ChannelID
	Team      string
	Amount    string // raw token, "12k" or "pass"
}

func (c StartDraft) Channel() ChannelID { return c.ChannelID }
func (c Introduce) Channel() ChannelID  { return c.ChannelID }
func (c Bid) Channel() ChannelID        { return c.ChannelID }

func (StartDraft) isCommand() {}
func (Introduce) isCommand()  {}
func (Bid) isCommand()        {}

/*
	StartDraft -> DraftStarted
	Introduce  -> PlayerIntroduced -> TurnAdvanced
	Bid        -> BidPlaced | TeamPassed -> TurnAdvanced
	           -> BidPlaced | TeamPassed -> RoundWon (-> DraftCompleted)
*/

type EventType string

const (
	EvtDraftStarted     EventType = "DraftStarted"
	EvtPlayerIntroduced EventType = "PlayerIntroduced"
	EvtBidPlaced        EventType = "BidPlaced"
	EvtTeamPassed       EventType = "TeamPassed"
	EvtTurnAdvanced     EventType = "TurnAdvanced"
	EvtRoundWon         EventType = "RoundWon"
	EvtDraftCompleted   EventType = "DraftCompleted"
)

type Event struct {
	Type   EventType
	Team   string
	Player string
	Amount int
}

// Apply validates cmd against s and returns the resulting state. s is never
// modified; on error the returned state is s.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch c := cmd.(type) {
	case StartDraft:
		return applyStartDraft(s, c)
	case Introduce:
		return applyIntroduce(s, c)
	case Bid:
		return applyBid(s, c)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyStartDraft(s State, c StartDraft) ([]Event, State, error) {
	ledger, err := NewLedger(c.Teams)
	if err != nil {
		return nil, s, err
	}

	newState := State{
		Draft:         ledger,
		Round:         Round{},
		LastChannelID: c.ChannelID,
	}
	return []Event{{Type: EvtDraftStarted}}, newState, nil
}

func applyIntroduce(s State, c Introduce) ([]Event, State, error) {
	if len(s.Draft) == 0 {
		return nil, s, ErrNoActiveDraft
	}
	if len(s.Round) > 0 {
		return nil, s, ErrRoundInProgress
	}

	idx, ok := FindTeam(s.Draft, c.Team)
	if !ok {
		return nil, s, &TeamError{Team: c.Team}
	}
	next, ok := NextUnintroduced(s.Draft)
	if !ok {
		return nil, s, ErrDraftAlreadyComplete
	}
	if next != c.Team {
		return nil, s, &TurnError{Team: c.Team, Expected: next, Introducing: true}
	}

	player := strings.TrimSpace(c.Player)
	if player == "" {
		return nil, s, ErrEmptyPlayerName
	}

	amount, err := ParseAmount(c.Amount)
	if err != nil {
		return nil, s, err
	}
	if s.Draft[idx].MoneyLeft < amount {
		return nil, s, &FundsError{Team: c.Team, Amount: amount, MoneyLeft: s.Draft[idx].MoneyLeft}
	}

	newState := s.Clone()
	newState.Draft[idx].Player = player
	newState.Round = StartRound(newState.Draft, c.Team, amount)
	newState.LastChannelID = c.ChannelID

	events := []Event{
		{Type: EvtPlayerIntroduced, Team: c.Team, Player: player, Amount: amount},
		{Type: EvtTurnAdvanced, Team: newState.Round[0].Tm},
	}
	return events, newState, nil
}

func applyBid(s State, c Bid) ([]Event, State, error) {
	if len(s.Draft) == 0 {
		return nil, s, ErrNoActiveDraft
	}
	if len(s.Round) == 0 {
		return nil, s, ErrNoActiveRound
	}

	idx, ok := FindTeam(s.Draft, c.Team)
	if !ok {
		return nil, s, &TeamError{Team: c.Team}
	}
	if front := s.Round[0].Tm; front != c.Team {
		return nil, s, &TurnError{Team: c.Team, Expected: front}
	}

	amount, pass, err := ParseBid(c.Amount)
	if err != nil {
		return nil, s, err
	}

	var (
		round  Round
		events []Event
	)
	if pass {
		round, err = s.Round.ApplyPass(c.Team)
		events = append(events, Event{Type: EvtTeamPassed, Team: c.Team})
	} else {
		round, err = s.Round.ApplyBid(c.Team, amount)
		if err == nil && s.Draft[idx].MoneyLeft < amount {
			err = &FundsError{Team: c.Team, Amount: amount, MoneyLeft: s.Draft[idx].MoneyLeft}
		}
		events = append(events, Event{Type: EvtBidPlaced, Team: c.Team, Amount: amount})
	}
	if err != nil {
		return nil, s, err
	}

	newState := s.Clone()
	newState.Round = round
	newState.LastChannelID = c.ChannelID

	winner, ok := round.Resolved()
	if !ok {
		events = append(events, Event{Type: EvtTurnAdvanced, Team: round[0].Tm})
		return events, newState, nil
	}

	ledger, player, err := ApplyWin(newState.Draft, winner.Tm, winner.Amt)
	if err != nil {
		return nil, s, err
	}
	newState.Draft = ledger
	newState.Round = Round{}

	events = append(events, Event{Type: EvtRoundWon, Team: winner.Tm, Player: player, Amount: winner.Amt})
	if _, more := NextUnintroduced(newState.Draft); !more {
		events = append(events, Event{Type: EvtDraftCompleted})
	}
	return events, newState, nil
}

// TeamError reports a team code that is not in the ledger.
type TeamError struct {
	Team string
}

func (e *TeamError) Error() string {
	return fmt.Sprintf("unknown team: %q is not in the draft", e.Team)
}

func (e *TeamError) Unwrap() error { return ErrUnknownTeam }

// TurnError reports an action by a team that is not on the clock.
type TurnError struct {
	Team        string
	Expected    string
	Introducing bool
}

func (e *TurnError) Error() string {
	if e.Introducing {
		return fmt.Sprintf("out of turn: it's not %s's turn to introduce a player, next to introduce: %s", e.Team, e.Expected)
	}
	return fmt.Sprintf("out of turn: it's not %s's turn to bid, on the clock: %s", e.Team, e.Expected)
}

func (e *TurnError) Unwrap() error { return ErrOutOfTurn }

// BidError reports a bid that does not beat the standing bid.
type BidError struct {
	Amount  int
	Current int
}

func (e *BidError) Error() string {
	return fmt.Sprintf("bid too low: %d must be higher than the current bid of %d", e.Amount, e.Current)
}

func (e *BidError) Unwrap() error { return ErrBidTooLow }

// FundsError reports an amount above a team's remaining budget.
type FundsError struct {
	Team      string
	Amount    int
	MoneyLeft int
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %s has %d left, cannot spend %d", e.Team, e.MoneyLeft, e.Amount)
}

func (e *FundsError) Unwrap() error { return ErrInsufficientFunds }

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidConfiguration, "InvalidConfiguration"},
	{ErrNoActiveDraft, "NoActiveDraft"},
	{ErrOutOfTurn, "OutOfTurn"},
	{ErrDraftAlreadyComplete, "DraftAlreadyComplete"},
	{ErrUnknownTeam, "UnknownTeam"},
	{ErrEmptyPlayerName, "EmptyPlayerName"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrBidTooLow, "BidTooLow"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrNoActiveRound, "NoActiveRound"},
	{ErrRoundInProgress, "RoundInProgress"},
	{ErrUnsupportedCommand, "UnsupportedCommand"},
}

// ReasonCode returns the rejection category of err, or "" for errors that
// are not engine rejections.
func ReasonCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return ""
}
