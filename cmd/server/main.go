package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/fa-bid-backend/internal/config"
	"github.com/DoyleJ11/fa-bid-backend/internal/console"
	"github.com/DoyleJ11/fa-bid-backend/internal/discord"
	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/httpapi"
	"github.com/DoyleJ11/fa-bid-backend/internal/hub"
	"github.com/DoyleJ11/fa-bid-backend/internal/lobby"
	"github.com/DoyleJ11/fa-bid-backend/internal/mcpapi"
	"github.com/DoyleJ11/fa-bid-backend/internal/present"
	"github.com/DoyleJ11/fa-bid-backend/internal/store"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exiting", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) (err error) {
	st, err := store.Open(ctx, cfg.StoreOptions(), logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()
	if fs, ok := st.(*store.FileStore); ok {
		logger.Info("draft file", zap.String("path", fs.Path()))
	}

	initial, err := st.Load(ctx)
	if err != nil {
		return err
	}

	h := hub.NewHub(ctx, logger)
	lb := lobby.NewLobby(ctx, initial, lobby.Config{
		Store:            st,
		Notifier:         dispatch.Reminder{Sender: h, Presenter: present.New(cfg.CommandPrefix)},
		ReminderInterval: cfg.ReminderInterval,
		Logger:           logger,
	})
	d := dispatch.New(lb, cfg.CommandPrefix, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.DiscordToken != "" {
		bot, err := discord.New(cfg.DiscordToken, d, logger)
		if err != nil {
			return err
		}
		h.Inbox() <- hub.AddSink{Name: "discord", Sink: bot}
		g.Go(func() error {
			defer func() { h.Inbox() <- hub.RemoveSink{Name: "discord"} }()
			return bot.Run(gctx)
		})
	}

	if cfg.Console {
		c := console.New(os.Stdin, os.Stdout, d, lb, logger)
		h.Inbox() <- hub.AddSink{Name: "console", Sink: c}
		g.Go(func() error {
			defer func() { h.Inbox() <- hub.RemoveSink{Name: "console"} }()
			if err := c.Run(gctx); err != nil {
				return err
			}
			// quit on the console stops the process
			return errConsoleQuit
		})
	}

	if cfg.HTTPAddr != "" {
		mcpServer := mcpapi.NewServer(lb, d, version)
		srv := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: httpapi.SetupRoutes(httpapi.Deps{
				Lobby:      lb,
				Dispatcher: d,
				MCP:        mcpapi.Handler(mcpServer),
				Logger:     logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	sinks := make(chan []string, 1)
	h.Inbox() <- hub.ListSinks{Reply: sinks}

	logger.Info("draft bot started",
		zap.String("store", string(cfg.StoreKind)),
		zap.Strings("sinks", <-sinks),
		zap.Duration("reminder_interval", cfg.ReminderInterval),
		zap.Bool("discord", cfg.DiscordToken != ""),
		zap.Bool("console", cfg.Console))

	runErr := g.Wait()
	if errors.Is(runErr, errConsoleQuit) {
		runErr = nil
	}

	lb.Inbox() <- lobby.Shutdown{}
	<-lb.Done()
	h.Inbox() <- hub.ShutdownHub{}
	<-h.Done()

	logger.Info("draft bot stopped")
	return runErr
}

var errConsoleQuit = errors.New("console closed")
