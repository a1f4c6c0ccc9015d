package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/lobby"
	"github.com/DoyleJ11/fa-bid-backend/internal/types"
)

// DefaultChannel is used for POST /commands bodies without a channel_id.
const DefaultChannel engine.ChannelID = "http"

// Viewer reads the current snapshot. *lobby.Lobby implements it.
type Viewer interface {
	View(ctx context.Context) (lobby.View, error)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func PostCommand(d *dispatch.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CommandRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "missing text", http.StatusBadRequest)
			return
		}
		if req.ChannelID == "" {
			req.ChannelID = DefaultChannel
		}

		reply, err := d.Handle(r.Context(), req.ChannelID, req.Text)
		if err != nil {
			unavailable(w, logger, err)
			return
		}

		status := http.StatusOK
		switch reply.Outcome {
		case dispatch.OutcomeRejected:
			status = http.StatusUnprocessableEntity
		case dispatch.OutcomeFailed:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, reply.Wire())
	}
}

func GetDraft(v Viewer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := v.View(r.Context())
		if err != nil {
			unavailable(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, types.DraftView{
			Version:   view.Version,
			Phase:     engine.DerivePhase(view.State),
			State:     view.State,
			Reminding: view.Reminding,
		})
	}
}

func GetStatus(v Viewer, d *dispatch.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := v.View(r.Context())
		if err != nil {
			unavailable(w, logger, err)
			return
		}
		status, _ := engine.Status(view.State)
		writeJSON(w, http.StatusOK, types.NewStatusView(status, d.Presenter().Status(view.State)))
	}
}

func GetRecap(v Viewer, d *dispatch.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := v.View(r.Context())
		if err != nil {
			unavailable(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(d.Presenter().Recap(view.State) + "\n"))
	}
}

func unavailable(w http.ResponseWriter, logger *zap.Logger, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logger.Warn("lobby unavailable", zap.Error(err))
	http.Error(w, "draft unavailable", http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
