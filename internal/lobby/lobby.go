package lobby

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/reminder"
	"github.com/DoyleJ11/fa-bid-backend/internal/store"
)

// ErrPersist wraps a failed snapshot write. The command was not applied.
var ErrPersist = errors.New("could not save draft")
var ErrClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	Cmd   engine.Command
	Reply chan Result // buffered; may be nil
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Reminding  bool
}

// Result is the outcome of one command. Err is nil on success, an engine
// rejection, or ErrPersist.
type Result struct {
	Events  []engine.Event
	State   engine.State
	Version int
	Err     error
}

// Notifier delivers the idle reminder to the channel that last acted.
type Notifier interface {
	Remind(ctx context.Context, channel engine.ChannelID, s engine.State) error
}

type Config struct {
	Store            store.Store
	Notifier         Notifier
	ReminderInterval time.Duration
	ReminderOptions  []reminder.Option
	Logger           *zap.Logger
}

// Lobby is the single writer for the draft snapshot. Every command and read
// goes through the inbox and is handled by one goroutine, so validation,
// mutation and the snapshot write never interleave.
type Lobby struct {
	inbox    chan Msg
	state    engine.State
	version  int
	clients  map[string]chan Snapshot
	store    store.Store
	notifier Notifier
	reminder *reminder.Scheduler
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewLobby(parent context.Context, initial engine.State, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Lobby{
		inbox:    make(chan Msg, 64), // Small buffer
		state:    initial.Normalize(),
		version:  0,
		clients:  make(map[string]chan Snapshot),
		store:    cfg.Store,
		notifier: cfg.Notifier,
		log:      logger.Named("lobby"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	opts := append([]reminder.Option{reminder.WithLogger(logger)}, cfg.ReminderOptions...)
	l.reminder = reminder.New(cfg.ReminderInterval, l.draftActive, l.remind, opts...)
	if engine.Active(l.state.Draft) {
		l.log.Info("resuming draft reminder", zap.Duration("interval", l.reminder.Interval()))
		l.reminder.Start()
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: l.version, State: l.state.Clone()}

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case FromClient:
				res := l.handle(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state.Clone(),
					Reminding:  l.reminder.Running(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handle(cmd engine.Command) Result {
	events, next, err := engine.Apply(l.state, cmd)
	if err != nil {
		l.log.Debug("command rejected",
			zap.String("command", fmt.Sprintf("%T", cmd)),
			zap.String("channel", cmd.Channel().String()),
			zap.Error(err))
		return Result{State: l.state.Clone(), Version: l.version, Err: err}
	}

	if err := l.store.Save(l.ctx, next); err != nil {
		l.log.Error("snapshot write failed, command dropped", zap.Error(err))
		return Result{State: l.state.Clone(), Version: l.version, Err: fmt.Errorf("%w: %w", ErrPersist, err)}
	}

	l.state = next
	l.version++
	l.broadcast(Snapshot{Version: l.version, State: l.state.Clone()})
	l.schedule(events)

	return Result{Events: events, State: l.state.Clone(), Version: l.version}
}

// schedule keeps the idle reminder in step with the draft: armed when a
// draft starts, reset on every action, stopped once the draft is complete.
func (l *Lobby) schedule(events []engine.Event) {
	switch {
	case engine.ContainsEvent(events, engine.EvtDraftCompleted):
		l.reminder.Stop()
	case engine.ContainsEvent(events, engine.EvtDraftStarted):
		l.reminder.Start()
	default:
		l.reminder.Restart()
	}
}

func (l *Lobby) shutdown() {
	l.reminder.Stop()
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby goroutine has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Apply submits cmd and waits for its result.
func (l *Lobby) Apply(ctx context.Context, cmd engine.Command) (Result, error) {
	reply := make(chan Result, 1)
	if err := l.send(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return Result{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-l.done:
		return Result{}, ErrClosed
	}
}

// View returns a consistent copy of the current snapshot.
func (l *Lobby) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-l.done:
		return View{}, ErrClosed
	}
}

func (l *Lobby) send(ctx context.Context, m Msg) error {
	select {
	case l.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

func (l *Lobby) draftActive() bool {
	ctx, cancel := context.WithTimeout(l.ctx, 5*time.Second)
	defer cancel()
	v, err := l.View(ctx)
	if err != nil {
		return false
	}
	return engine.Active(v.State.Draft)
}

func (l *Lobby) remind(ctx context.Context) error {
	if l.notifier == nil {
		return nil
	}
	v, err := l.View(ctx)
	if err != nil {
		return err
	}
	if v.State.LastChannelID == "" {
		return errors.New("no channel recorded for reminder")
	}
	return l.notifier.Remind(ctx, v.State.LastChannelID, v.State)
}
