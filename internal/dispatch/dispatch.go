// Package dispatch connects chat text to the lobby and renders the replies.
// Every transport (Discord, console, HTTP, MCP) goes through a Dispatcher.
package dispatch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/command"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/lobby"
	"github.com/DoyleJ11/fa-bid-backend/internal/present"
	"github.com/DoyleJ11/fa-bid-backend/internal/types"
)

type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeInfo     Outcome = "info"
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

const ReminderHeader = "⏰ Reminder: the draft is waiting on you."

// Draft is the part of the lobby the dispatcher needs.
type Draft interface {
	Apply(ctx context.Context, cmd engine.Command) (lobby.Result, error)
	View(ctx context.Context) (lobby.View, error)
}

// Sender delivers text to a channel. The hub implements it.
type Sender interface {
	Send(ctx context.Context, channel engine.ChannelID, text string) error
}

// Reply is what a transport should show for one incoming message.
type Reply struct {
	Outcome Outcome
	Reason  string
	Lines   []string
	Version int
}

// Wire converts r to its JSON form.
func (r Reply) Wire() types.CommandReply {
	lines := r.Lines
	if lines == nil {
		lines = []string{}
	}
	return types.CommandReply{Outcome: string(r.Outcome), Reason: r.Reason, Lines: lines, Version: r.Version}
}

type Dispatcher struct {
	draft   Draft
	decoder command.Decoder
	present present.Presenter
	log     *zap.Logger
}

func New(draft Draft, prefix string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		draft:   draft,
		decoder: command.NewDecoder(prefix),
		present: present.New(prefix),
		log:     logger.Named("dispatch"),
	}
}

func (d *Dispatcher) Presenter() present.Presenter { return d.present }

// Handle decodes text from channel and runs it. The returned error is only
// set when the lobby could not be reached; rejections are reported in Reply.
func (d *Dispatcher) Handle(ctx context.Context, channel engine.ChannelID, text string) (Reply, error) {
	req, err := d.decoder.Decode(channel, text)
	if err != nil {
		if errors.Is(err, command.ErrNotCommand) {
			return Reply{Outcome: OutcomeIgnored}, nil
		}
		return d.rejected(err), nil
	}

	switch r := req.(type) {
	case command.Help:
		return Reply{Outcome: OutcomeInfo, Lines: []string{d.present.Help()}}, nil

	case command.Status:
		v, err := d.draft.View(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Outcome: OutcomeInfo, Lines: []string{d.present.Status(v.State)}, Version: v.Version}, nil

	case command.Recap:
		v, err := d.draft.View(ctx)
		if err != nil {
			return Reply{}, err
		}
		lines := []string{d.present.Recap(v.State)}
		if engine.DerivePhase(v.State) != engine.PhaseNoDraft {
			lines = append(lines, d.present.Status(v.State))
		}
		return Reply{Outcome: OutcomeInfo, Lines: lines, Version: v.Version}, nil

	case command.Mutate:
		return d.mutate(ctx, r.Cmd)
	}

	return d.rejected(engine.ErrUnsupportedCommand), nil
}

func (d *Dispatcher) mutate(ctx context.Context, cmd engine.Command) (Reply, error) {
	res, err := d.draft.Apply(ctx, cmd)
	if err != nil {
		return Reply{}, err
	}

	if res.Err != nil {
		if errors.Is(res.Err, lobby.ErrPersist) {
			d.log.Error("command not applied", zap.Error(res.Err))
			return Reply{Outcome: OutcomeFailed, Reason: "PersistFailed", Lines: []string{present.PersistFailed}, Version: res.Version}, nil
		}
		reply := d.rejected(res.Err)
		reply.Version = res.Version
		return reply, nil
	}

	return Reply{Outcome: OutcomeAccepted, Lines: d.Announce(res.Events, res.State), Version: res.Version}, nil
}

// Announce renders the messages for a successful command.
func (d *Dispatcher) Announce(events []engine.Event, s engine.State) []string {
	var lines []string
	if engine.ContainsEvent(events, engine.EvtDraftStarted) {
		lines = append(lines, d.present.DraftStarted(s), d.present.Recap(s))
	}
	if won, ok := engine.FindEvent(events, engine.EvtRoundWon); ok {
		lines = append(lines, d.present.RoundWon(won), d.present.Recap(s))
	}
	return append(lines, d.present.Status(s))
}

func (d *Dispatcher) rejected(err error) Reply {
	reason := engine.ReasonCode(err)
	switch {
	case reason != "":
	case errors.Is(err, command.ErrUnknownCommand):
		reason = "UnknownCommand"
	case errors.Is(err, command.ErrUsage):
		reason = "Usage"
	}
	return Reply{Outcome: OutcomeRejected, Reason: reason, Lines: []string{d.present.Rejection(err)}}
}

// Reminder sends the idle reminder through a Sender. It implements
// lobby.Notifier.
type Reminder struct {
	Sender    Sender
	Presenter present.Presenter
}

func (r Reminder) Remind(ctx context.Context, channel engine.ChannelID, s engine.State) error {
	return r.Sender.Send(ctx, channel, ReminderHeader+"\n"+r.Presenter.Status(s))
}
