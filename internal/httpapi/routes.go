package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/ws"
)

// Lobby is satisfied by *lobby.Lobby.
type Lobby interface {
	Viewer
	ws.Lobby
}

type Deps struct {
	Lobby      Lobby
	Dispatcher *dispatch.Dispatcher
	MCP        http.Handler // optional
	WS         ws.Options
	Logger     *zap.Logger
}

func SetupRoutes(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Post("/commands", PostCommand(deps.Dispatcher, logger))
	r.Route("/draft", func(r chi.Router) {
		r.Get("/", GetDraft(deps.Lobby, logger))
		r.Get("/status", GetStatus(deps.Lobby, deps.Dispatcher, logger))
		r.Get("/recap", GetRecap(deps.Lobby, deps.Dispatcher, logger))
	})

	wsOpts := deps.WS
	if wsOpts.Logger == nil {
		wsOpts.Logger = logger
	}
	r.Get("/ws", ws.Handler(deps.Lobby, deps.Dispatcher, wsOpts))

	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
		r.Handle("/mcp/*", deps.MCP)
	}
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
