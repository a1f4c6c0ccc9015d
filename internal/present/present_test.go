package present

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DoyleJ11/fa-bid-backend/internal/command"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

func bidding() engine.State {
	return engine.State{
		Draft: []engine.TeamEntry{
			{IntroTm: "AA", Player: "Babe Ruth", MoneyLeft: 100},
			{IntroTm: "BB", MoneyLeft: 100},
			{IntroTm: "CC", MoneyLeft: 100},
		},
		Round: engine.Round{{Tm: "CC"}, {Tm: "AA", Amt: 10}, {Tm: "BB", Amt: 15}},
	}
}

func TestStatus(t *testing.T) {
	p := New("!")

	cases := []struct {
		name string
		s    engine.State
		want string
	}{
		{"no draft", engine.NewEmptyState(), "❌ No draft in progress. Use !startdraft to begin."},
		{
			"awaiting introduction",
			engine.State{Draft: []engine.TeamEntry{{IntroTm: "AA", Player: "X", ClaimTm: "BB"}, {IntroTm: "BB"}}},
			"📝 Next to introduce a player: **BB**",
		},
		{
			"complete",
			engine.State{Draft: []engine.TeamEntry{{IntroTm: "AA", Player: "X", ClaimTm: "AA"}, {IntroTm: "BB", Player: "Y", ClaimTm: "BB"}}},
			RoundComplete,
		},
		{
			"bidding",
			bidding(),
			"⏰ **Babe Ruth** currently at **15k** to **BB**\nOn the clock: **CC**\nNext up: **AA, BB**",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Status(tc.s))
		})
	}
}

func TestRecap(t *testing.T) {
	p := New("!")

	s := bidding()
	s.Draft[1] = engine.TeamEntry{IntroTm: "BB", ClaimTm: "CC", Player: "Ty Cobb", Amt: 20, MoneyLeft: 100}
	s.Draft[2].MoneyLeft = 80

	want := strings.Join([]string{
		"```text",
		"DRAFT:",
		"Intro  Claim  Player     Amt  Left",
		"----------------------------------",
		"AA     -      Babe Ruth    -  100k",
		"BB     CC     Ty Cobb    20k  100k",
		"CC     -      -            -   80k",
		"",
		"ROUND:",
		"#  Team  Last Bid",
		"-----------------",
		"1  CC           -",
		"2  AA         10k",
		"3  BB         15k",
		"```",
	}, "\n")
	assert.Equal(t, want, p.Recap(s))
}

func TestRecap_NoRound(t *testing.T) {
	p := New("!")
	s := engine.State{Draft: []engine.TeamEntry{{IntroTm: "AA", MoneyLeft: 5}, {IntroTm: "BB", MoneyLeft: 5}}}

	out := p.Recap(s)
	assert.Contains(t, out, "(no player up for bidding)")
	assert.Equal(t, fmt.Sprintf(NoDraft, "!"), p.Recap(engine.NewEmptyState()))
}

func TestTable_WideRunes(t *testing.T) {
	lines := Table([][]string{{"Player", "Amt"}, {"大谷翔平", "1k"}, {"Ruth", "10k"}}, 1)

	assert.Equal(t, []string{
		"Player    Amt",
		"-------------",
		"大谷翔平   1k",
		"Ruth      10k",
	}, lines)
}

func TestRoundWon(t *testing.T) {
	got := New("!").RoundWon(engine.Event{Type: engine.EvtRoundWon, Team: "BB", Player: "Babe Ruth", Amount: 15})
	assert.Equal(t, "💵 **BB** wins **Babe Ruth** for **$15k**!", got)
}

func TestRejection(t *testing.T) {
	p := New("$")

	cases := []struct {
		err  error
		want string
	}{
		{&engine.TurnError{Team: "BB", Expected: "AA", Introducing: true}, "❌ It's not BB's turn to introduce a player. Next to introduce: AA"},
		{&engine.TurnError{Team: "AA", Expected: "BB"}, "❌ It's not AA's turn to bid. On the clock to bid: BB"},
		{&engine.BidError{Amount: 10, Current: 10}, "❌ Bid amount must be higher than the current bid of 10k."},
		{&engine.FundsError{Team: "AA", Amount: 50, MoneyLeft: 40}, "❌ AA only has 40k left and cannot spend 50k."},
		{&engine.TeamError{Team: "ZZ"}, "❌ Team 'ZZ' is not in the draft."},
		{engine.ErrNoActiveDraft, "❌ No draft in progress. Use $startdraft to begin."},
		{engine.ErrEmptyPlayerName, "❌ Player name cannot be empty."},
		{engine.ErrNoActiveRound, "❌ A player must be introduced before bidding can begin."},
		{engine.ErrInvalidAmount, "❌ Invalid amount format. Use a number followed by 'k' (e.g., 1k)."},
		{fmt.Errorf("%w: team AA listed twice", engine.ErrInvalidConfiguration), "❌ Invalid team list: team AA listed twice"},
		{fmt.Errorf("%w: $bid TEAM AMOUNT|pass", command.ErrUsage), "❌ Usage: $bid TEAM AMOUNT|pass"},
		{fmt.Errorf("%w: $dance", command.ErrUnknownCommand), "❓ Unknown command. Try $drafthelp."},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, p.Rejection(tc.err))
		})
	}
}

func TestHelp_UsesPrefix(t *testing.T) {
	help := New("?").Help()
	assert.Contains(t, help, "`?bid OO 12k`")
	assert.NotContains(t, help, "{p}")
	assert.NotContains(t, help, "`!")
}
