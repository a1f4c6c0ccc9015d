// Package present renders draft state and command outcomes as chat text.
package present

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/DoyleJ11/fa-bid-backend/internal/command"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

const (
	NoDraft       = "❌ No draft in progress. Use %sstartdraft to begin."
	RoundComplete = "🧢 Free agent bidding round complete ⚾"
	PersistFailed = "⚠️ The draft could not be saved, so that command was not applied. Please try again."
)

// Presenter holds the command prefix so messages can quote commands back.
type Presenter struct {
	Prefix string
}

func New(prefix string) Presenter {
	if prefix == "" {
		prefix = command.DefaultPrefix
	}
	return Presenter{Prefix: prefix}
}

// Status renders the current draft status.
func (p Presenter) Status(s engine.State) string {
	view, err := engine.Status(s)
	if err != nil {
		return fmt.Sprintf(NoDraft, p.Prefix)
	}
	return p.StatusView(view)
}

func (p Presenter) StatusView(view engine.StatusView) string {
	switch view.Phase {
	case engine.PhaseAwaitingIntroduction:
		return fmt.Sprintf("📝 Next to introduce a player: **%s**", view.NextToIntroduce)
	case engine.PhaseComplete:
		return RoundComplete
	case engine.PhaseBidding:
		var b strings.Builder
		fmt.Fprintf(&b, "⏰ **%s** currently at **%s** to **%s**\n", view.Player, Amount(view.HighBid), view.HighBidder)
		fmt.Fprintf(&b, "On the clock: **%s**", view.OnTheClock)
		if len(view.NextUp) > 0 {
			fmt.Fprintf(&b, "\nNext up: **%s**", strings.Join(view.NextUp, ", "))
		}
		return b.String()
	default:
		return fmt.Sprintf(NoDraft, p.Prefix)
	}
}

// Recap renders the ledger and the current round as fixed-width tables.
func (p Presenter) Recap(s engine.State) string {
	view, err := engine.Recap(s)
	if err != nil {
		return fmt.Sprintf(NoDraft, p.Prefix)
	}

	var b strings.Builder
	b.WriteString("```text\nDRAFT:\n")
	for _, line := range Table(DraftRows(view.Draft), 3, 4) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nROUND:\n")
	if len(view.Round) == 0 {
		b.WriteString("(no player up for bidding)\n")
	} else {
		for _, line := range Table(RoundRows(view.Round), 0, 2) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	b.WriteString("```")
	return b.String()
}

// RoundWon announces the winner of a bidding round.
func (p Presenter) RoundWon(ev engine.Event) string {
	return fmt.Sprintf("💵 **%s** wins **%s** for **$%s**!", ev.Team, ev.Player, Amount(ev.Amount))
}

func (p Presenter) DraftStarted(s engine.State) string {
	codes := make([]string, 0, len(s.Draft))
	for _, e := range s.Draft {
		codes = append(codes, e.IntroTm)
	}
	return fmt.Sprintf("✅ Draft started with %d teams: %s", len(codes), strings.Join(codes, ", "))
}

// Rejection explains why a command was refused.
func (p Presenter) Rejection(err error) string {
	var (
		turnErr  *engine.TurnError
		bidErr   *engine.BidError
		fundsErr *engine.FundsError
		teamErr  *engine.TeamError
	)

	switch {
	case errors.As(err, &turnErr):
		if turnErr.Introducing {
			return fmt.Sprintf("❌ It's not %s's turn to introduce a player. Next to introduce: %s", turnErr.Team, turnErr.Expected)
		}
		return fmt.Sprintf("❌ It's not %s's turn to bid. On the clock to bid: %s", turnErr.Team, turnErr.Expected)
	case errors.As(err, &bidErr):
		return fmt.Sprintf("❌ Bid amount must be higher than the current bid of %s.", Amount(bidErr.Current))
	case errors.As(err, &fundsErr):
		return fmt.Sprintf("❌ %s only has %s left and cannot spend %s.", fundsErr.Team, Amount(fundsErr.MoneyLeft), Amount(fundsErr.Amount))
	case errors.As(err, &teamErr):
		return fmt.Sprintf("❌ Team '%s' is not in the draft.", teamErr.Team)
	case errors.Is(err, engine.ErrNoActiveDraft):
		return fmt.Sprintf(NoDraft, p.Prefix)
	case errors.Is(err, engine.ErrRoundInProgress):
		return "❌ A player cannot be introduced until the current player bidding is finished."
	case errors.Is(err, engine.ErrNoActiveRound):
		return "❌ A player must be introduced before bidding can begin."
	case errors.Is(err, engine.ErrDraftAlreadyComplete):
		return "❌ A player cannot be introduced. The draft is already complete."
	case errors.Is(err, engine.ErrEmptyPlayerName):
		return "❌ Player name cannot be empty."
	case errors.Is(err, engine.ErrInvalidAmount):
		return "❌ Invalid amount format. Use a number followed by 'k' (e.g., 1k)."
	case errors.Is(err, engine.ErrInvalidConfiguration):
		return "❌ Invalid team list: " + detail(err, engine.ErrInvalidConfiguration)
	case errors.Is(err, command.ErrUsage):
		return "❌ Usage: " + detail(err, command.ErrUsage)
	case errors.Is(err, command.ErrUnknownCommand):
		return fmt.Sprintf("❓ Unknown command. Try %sdrafthelp.", p.Prefix)
	default:
		return "⚠️ Something went wrong: " + err.Error()
	}
}

func (p Presenter) Help() string {
	lines := []string{
		"**Free agent bidding commands**",
		"`{p}startdraft TT 250, OO 250, MN 250` start a draft; teams introduce in this order",
		"`{p}introduce TT Player Name 10k` introduce a player with an opening bid",
		"`{p}bid OO 12k` raise the current bid, or `{p}bid OO pass` to drop out",
		"`{p}draftstatus` show who is on the clock",
		"`{p}draftrecap` show every team's claim and the current round",
		"`{p}drafthelp` show this message",
	}
	return strings.ReplaceAll(strings.Join(lines, "\n"), "{p}", p.Prefix)
}

// Amount formats a whole-thousands amount, e.g. 12 -> "12k".
func Amount(n int) string {
	return fmt.Sprintf("%dk", n)
}

func amountOrDash(n int) string {
	if n == 0 {
		return "-"
	}
	return Amount(n)
}

// DraftRows returns the ledger as table rows, header first.
func DraftRows(ledger []engine.TeamEntry) [][]string {
	rows := [][]string{{"Intro", "Claim", "Player", "Amt", "Left"}}
	for _, e := range ledger {
		rows = append(rows, []string{
			e.IntroTm,
			dashIfEmpty(e.ClaimTm),
			dashIfEmpty(e.Player),
			amountOrDash(e.Amt),
			Amount(e.MoneyLeft),
		})
	}
	return rows
}

// RoundRows returns the bidding queue as table rows, header first.
func RoundRows(round engine.Round) [][]string {
	rows := [][]string{{"#", "Team", "Last Bid"}}
	for i, e := range round {
		rows = append(rows, []string{fmt.Sprint(i + 1), e.Tm, amountOrDash(e.Amt)})
	}
	return rows
}

// Table lays rows out in columns sized by display width. Columns listed in
// right are right-aligned. A dashed rule follows the header row.
func Table(rows [][]string, right ...int) []string {
	if len(rows) == 0 {
		return nil
	}
	alignRight := make(map[int]bool, len(right))
	for _, c := range right {
		alignRight[c] = true
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, cell := range row {
			if w := runewidth.StringWidth(cell); c < len(widths) && w > widths[c] {
				widths[c] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		cells := make([]string, len(widths))
		for c := range widths {
			var cell string
			if c < len(row) {
				cell = row[c]
			}
			if alignRight[c] {
				cells[c] = runewidth.FillLeft(cell, widths[c])
			} else {
				cells[c] = runewidth.FillRight(cell, widths[c])
			}
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		lines = append(lines, line)
		if i == 0 {
			lines = append(lines, strings.Repeat("-", runewidth.StringWidth(line)))
		}
	}
	return lines
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
