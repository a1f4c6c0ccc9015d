// Package command turns chat text such as "!bid TT 12k" into typed requests.
// It does no validation beyond splitting the text; the engine decides whether
// a request is legal.
package command

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

var ErrNotCommand = errors.New("not a command")
var ErrUnknownCommand = errors.New("unknown command")
var ErrUsage = errors.New("missing arguments")

const DefaultPrefix = "!"

const (
	VerbStartDraft = "startdraft"
	VerbIntroduce  = "introduce"
	VerbBid        = "bid"
	VerbStatus     = "draftstatus"
	VerbRecap      = "draftrecap"
	VerbHelp       = "drafthelp"
)

// Request is one of Mutate, Status, Recap or Help.
type Request interface{ isRequest() }

// Mutate carries a command for the draft engine.
type Mutate struct {
	Cmd engine.Command
}

type Status struct{}

type Recap struct{}

type Help struct{}

func (Mutate) isRequest() {}
func (Status) isRequest() {}
func (Recap) isRequest()  {}
func (Help) isRequest()   {}

type Decoder struct {
	Prefix string
}

func NewDecoder(prefix string) Decoder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Decoder{Prefix: prefix}
}

func (d Decoder) Decode(channel engine.ChannelID, text string) (Request, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, d.Prefix) {
		return nil, ErrNotCommand
	}
	text = strings.TrimPrefix(text, d.Prefix)

	verb, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	switch strings.ToLower(verb) {
	case VerbStartDraft:
		teams, err := ParseTeams(args)
		if err != nil {
			return nil, err
		}
		return Mutate{Cmd: engine.StartDraft{ChannelID: channel, Teams: teams}}, nil

	case VerbIntroduce:
		if args == "" {
			return nil, fmt.Errorf("%w: %s%s TEAM Player Name AMOUNT", ErrUsage, d.Prefix, VerbIntroduce)
		}
		team, player, amount := splitIntroduce(args)
		return Mutate{Cmd: engine.Introduce{ChannelID: channel, Team: team, Player: player, Amount: amount}}, nil

	case VerbBid:
		fields := strings.Fields(args)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: %s%s TEAM AMOUNT|pass", ErrUsage, d.Prefix, VerbBid)
		}
		return Mutate{Cmd: engine.Bid{ChannelID: channel, Team: fields[0], Amount: fields[len(fields)-1]}}, nil

	case VerbStatus:
		return Status{}, nil
	case VerbRecap:
		return Recap{}, nil
	case VerbHelp:
		return Help{}, nil
	default:
		return nil, fmt.Errorf("%w: %s%s", ErrUnknownCommand, d.Prefix, verb)
	}
}

// ParseTeams parses "TT 250, OO 250k, MN". A missing or unreadable budget is
// 0, matching the older bot, which silently funded such teams with nothing.
func ParseTeams(args string) ([]engine.TeamSpec, error) {
	if strings.TrimSpace(args) == "" {
		return nil, nil
	}

	items := strings.Split(args, ",")
	teams := make([]engine.TeamSpec, 0, len(items))
	for _, item := range items {
		fields := strings.Fields(item)
		switch len(fields) {
		case 0:
			teams = append(teams, engine.TeamSpec{})
		case 1:
			teams = append(teams, engine.TeamSpec{Code: fields[0]})
		case 2:
			teams = append(teams, engine.TeamSpec{Code: fields[0], Budget: engine.ParseBudget(fields[1])})
		default:
			return nil, fmt.Errorf("%w: %q should be a team code and a budget", engine.ErrInvalidConfiguration, strings.TrimSpace(item))
		}
	}
	return teams, nil
}

// splitIntroduce splits "TT Player Name 10k": the team is the first word, the
// amount the last, and the player everything between.
func splitIntroduce(args string) (team, player, amount string) {
	first := strings.Index(args, " ")
	last := strings.LastIndex(args, " ")
	if first == -1 {
		return args, "", ""
	}
	team = args[:first]
	amount = strings.TrimSpace(args[last+1:])
	if last > first {
		player = norm.NFC.String(strings.TrimSpace(args[first+1 : last]))
	}
	return team, player, amount
}
