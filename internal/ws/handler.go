package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/lobby"
	"github.com/DoyleJ11/fa-bid-backend/internal/types"
)

// Lobby is what the stream needs: subscription through the inbox.
type Lobby interface {
	Inbox() chan<- lobby.Msg
}

type Options struct {
	OriginPatterns []string
	ReadTimeout    time.Duration
	Logger         *zap.Logger
}

// Handler streams a StateSnapshot after every accepted command. Clients can
// also send {"type":"Command","channel_id":"...","text":"!bid TT 5k"} and get
// a Reply back.
func Handler(lb Lobby, d *dispatch.Dispatcher, opts Options) http.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ws")
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()
		log := logger.With(zap.String("client", clientID))

		select {
		case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
		case <-r.Context().Done():
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-time.After(time.Second):
			}
		}()
		log.Debug("client joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				state := snap.State
				msg := types.ServerMessage{
					Type:    "StateSnapshot",
					Version: snap.Version,
					Phase:   engine.DerivePhase(state),
					State:   &state,
				}
				if err := write(writeCtx, conn, msg); err != nil {
					log.Debug("write failed", zap.Error(err))
					return
				}
			}
			// Lobby closed our outbox (slow client or shutdown).
			conn.Close(websocket.StatusGoingAway, "stream closed")
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}
			if cm.Type != "Command" {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "unknown type"})
				continue
			}

			channel := cm.ChannelID
			if channel == "" {
				channel = engine.ChannelID("ws:" + clientID)
			}
			reply, err := d.Handle(r.Context(), channel, cm.Text)
			if err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
				return
			}
			wire := reply.Wire()
			_ = write(r.Context(), conn, types.ServerMessage{Type: "Reply", Version: reply.Version, Reply: &wire})
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
