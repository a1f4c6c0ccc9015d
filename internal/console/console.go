// Package console is a terminal front end for the draft. Lines typed on
// stdin are handled as if posted in the "console" channel.
package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/httpapi"
	"github.com/DoyleJ11/fa-bid-backend/internal/present"
)

const Channel engine.ChannelID = "console"

type Handler interface {
	Handle(ctx context.Context, channel engine.ChannelID, text string) (dispatch.Reply, error)
}

type Console struct {
	in      io.Reader
	out     io.Writer
	handler Handler
	viewer  httpapi.Viewer
	log     *zap.Logger

	mu sync.Mutex // serialises writes to out
}

func New(in io.Reader, out io.Writer, h Handler, v httpapi.Viewer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{in: in, out: out, handler: h, viewer: v, log: logger.Named("console")}
}

// Run reads commands until in is exhausted, "quit" is typed, or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	c.print(pterm.DefaultHeader.Sprint("Free agent bidding"))
	c.print(pterm.Info.Sprintln("Type draft commands (e.g. !drafthelp), \"board\" for the tables, or \"quit\"."))

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			if done := c.handle(ctx, strings.TrimSpace(line)); done {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) (quit bool) {
	switch strings.ToLower(line) {
	case "":
		return false
	case "quit", "exit":
		return true
	case "board":
		c.board(ctx)
		return false
	}

	reply, err := c.handler.Handle(ctx, Channel, line)
	if err != nil {
		c.print(pterm.Error.Sprintln(err.Error()))
		return false
	}

	printer := pterm.Info
	switch reply.Outcome {
	case dispatch.OutcomeIgnored:
		c.print(pterm.Warning.Sprintln("Not a draft command. Try !drafthelp."))
		return false
	case dispatch.OutcomeAccepted:
		printer = pterm.Success
	case dispatch.OutcomeRejected, dispatch.OutcomeFailed:
		printer = pterm.Error
	}
	for _, l := range reply.Lines {
		c.print(printer.Sprintln(Plain(l)))
	}
	return false
}

func (c *Console) board(ctx context.Context) {
	v, err := c.viewer.View(ctx)
	if err != nil {
		c.print(pterm.Error.Sprintln(err.Error()))
		return
	}
	if engine.DerivePhase(v.State) == engine.PhaseNoDraft {
		c.print(pterm.Warning.Sprintln("No draft in progress."))
		return
	}

	draft, err := pterm.DefaultTable.WithHasHeader().WithData(present.DraftRows(v.State.Draft)).Srender()
	if err != nil {
		c.print(pterm.Error.Sprintln(err.Error()))
		return
	}
	c.print(pterm.DefaultSection.Sprint("Draft") + draft + "\n")

	if len(v.State.Round) > 0 {
		round, err := pterm.DefaultTable.WithHasHeader().WithData(present.RoundRows(v.State.Round)).Srender()
		if err == nil {
			c.print(pterm.DefaultSection.Sprint("Round") + round + "\n")
		}
	}
}

// Handles claims the console channel.
func (c *Console) Handles(channel engine.ChannelID) bool { return channel == Channel }

func (c *Console) Deliver(ctx context.Context, channel engine.ChannelID, text string) error {
	c.print(pterm.Warning.Sprintln(Plain(text)))
	return nil
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, s); err != nil {
		c.log.Debug("write failed", zap.Error(err))
	}
}

// Plain strips chat markdown that reads badly in a terminal.
func Plain(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "```text\n", "")
	s = strings.ReplaceAll(s, "\n```", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
