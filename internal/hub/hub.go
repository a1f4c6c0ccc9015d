package hub

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

var ErrNoSink = errors.New("no sink handles channel")
var ErrClosed = errors.New("hub closed")

// Sink is an outbound transport: Discord, the console, and so on.
type Sink interface {
	Handles(channel engine.ChannelID) bool
	Deliver(ctx context.Context, channel engine.ChannelID, text string) error
}

type HubMsg interface{ isHubMsg() }

type AddSink struct {
	Name string
	Sink Sink
}

type RemoveSink struct {
	Name string
}

// Notify sends text to every sink that handles Channel. Reply, if set, gets
// the combined delivery error.
type Notify struct {
	Channel engine.ChannelID
	Text    string
	Reply   chan error
}

type ListSinks struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (AddSink) isHubMsg()     {}
func (RemoveSink) isHubMsg()  {}
func (Notify) isHubMsg()      {}
func (ListSinks) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	sinks  map[string]Sink
	order  []string
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		sinks:  make(map[string]Sink),
		log:    logger.Named("hub"),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case AddSink:
				if _, ok := h.sinks[msg.Name]; !ok {
					h.order = append(h.order, msg.Name)
				}
				h.sinks[msg.Name] = msg.Sink

			case RemoveSink:
				if _, ok := h.sinks[msg.Name]; !ok {
					break
				}
				delete(h.sinks, msg.Name)
				for i, name := range h.order {
					if name == msg.Name {
						h.order = append(h.order[:i], h.order[i+1:]...)
						break
					}
				}

			case ListSinks:
				msg.Reply <- append([]string(nil), h.order...)

			case Notify:
				targets := h.route(msg.Channel)
				if len(targets) == 0 {
					h.log.Warn("dropping notice", zap.String("channel", msg.Channel.String()))
					if msg.Reply != nil {
						msg.Reply <- ErrNoSink
					}
					break
				}
				// Deliveries do network I/O; keep the loop free.
				go h.deliver(targets, msg)

			case ShutdownHub:
				clear(h.sinks)
				h.order = nil
				h.cancel()
			}
		}
	}
}

func (h *Hub) route(channel engine.ChannelID) map[string]Sink {
	targets := make(map[string]Sink)
	for _, name := range h.order {
		if s := h.sinks[name]; s.Handles(channel) {
			targets[name] = s
		}
	}
	return targets
}

func (h *Hub) deliver(targets map[string]Sink, msg Notify) {
	var err error
	for name, s := range targets {
		if derr := s.Deliver(h.ctx, msg.Channel, msg.Text); derr != nil {
			h.log.Warn("delivery failed", zap.String("sink", name), zap.String("channel", msg.Channel.String()), zap.Error(derr))
			err = multierr.Append(err, derr)
		}
	}
	if msg.Reply != nil {
		msg.Reply <- err
	}
}

// Send routes text to channel and waits for delivery.
func (h *Hub) Send(ctx context.Context, channel engine.ChannelID, text string) error {
	reply := make(chan error, 1)
	select {
	case h.inbox <- Notify{Channel: channel, Text: text, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrClosed
	}
}
