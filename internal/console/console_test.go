package console

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/lobby"
)

type memStore struct {
	mu   sync.Mutex
	last engine.State
}

func (m *memStore) Load(ctx context.Context) (engine.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, nil
}

func (m *memStore) Save(ctx context.Context, s engine.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = s.Clone()
	return nil
}

func (m *memStore) Close() error { return nil }

func run(t *testing.T, input string) string {
	t.Helper()
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := zaptest.NewLogger(t)
	lb := lobby.NewLobby(ctx, engine.NewEmptyState(), lobby.Config{
		Store:            &memStore{},
		ReminderInterval: time.Hour,
		Logger:           logger,
	})

	var out bytes.Buffer
	c := New(strings.NewReader(input), &out, dispatch.New(lb, "!", logger), lb, logger)
	require.NoError(t, c.Run(ctx))
	return out.String()
}

func TestRun_CommandsAndBoard(t *testing.T) {
	out := run(t, strings.Join([]string{
		"!startdraft AA 100, BB 100",
		"!introduce BB Ty Cobb 5k",
		"!introduce AA Babe Ruth 10k",
		"hello",
		"board",
		"quit",
		"!bid BB 20k",
	}, "\n"))

	assert.Contains(t, out, "Draft started with 2 teams: AA, BB")
	assert.Contains(t, out, "It's not BB's turn to introduce a player")
	assert.Contains(t, out, "Babe Ruth currently at 10k to AA")
	assert.Contains(t, out, "Not a draft command")
	assert.Contains(t, out, "Intro")
	assert.Contains(t, out, "Last Bid")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "20k to BB", "input after quit must be ignored")
}

func TestDeliver(t *testing.T) {
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, nil, nil, zaptest.NewLogger(t))

	assert.True(t, c.Handles(Channel))
	assert.False(t, c.Handles("123"))
	require.NoError(t, c.Deliver(context.Background(), Channel, "⏰ **AA** is up"))
	assert.Contains(t, out.String(), "⏰ AA is up")
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "DRAFT:\nrow", Plain("```text\nDRAFT:\nrow\n```"))
	assert.Equal(t, "!bid OO 12k raise", Plain("`!bid OO 12k` raise"))
}
