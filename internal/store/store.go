package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

// Store persists the whole draft snapshot. Save is synchronous; a nil error
// means the snapshot is durable.
type Store interface {
	Load(ctx context.Context) (engine.State, error)
	Save(ctx context.Context, s engine.State) error
	Close() error
}

type Kind string

const (
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
)

type Options struct {
	Kind        Kind
	Path        string // file store
	DatabaseURL string // postgres store
}

func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	switch opts.Kind {
	case KindFile, "":
		return NewFileStore(opts.Path, logger), nil
	case KindPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}

// Encode renders s as the snapshot document:
//
//	{"draft": [...], "round": [...], "last_channel_id": "..."}
func Encode(s engine.State) ([]byte, error) {
	b, err := json.MarshalIndent(s.Normalize(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func Decode(b []byte) (engine.State, error) {
	var s engine.State
	if err := json.Unmarshal(b, &s); err != nil {
		return engine.NewEmptyState(), err
	}
	return s.Normalize(), nil
}
