package hub

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

type recordSink struct {
	prefix string
	fail   error

	mu  sync.Mutex
	got []string
}

func (s *recordSink) Handles(channel engine.ChannelID) bool {
	return strings.HasPrefix(string(channel), s.prefix)
}

func (s *recordSink) Deliver(ctx context.Context, channel engine.ChannelID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, string(channel)+":"+text)
	return s.fail
}

func (s *recordSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, zaptest.NewLogger(t))
}

func TestHub_RoutesToMatchingSink(t *testing.T) {
	h := newTestHub(t)
	discord := &recordSink{prefix: "1"}
	console := &recordSink{prefix: "console"}

	h.Inbox() <- AddSink{Name: "discord", Sink: discord}
	h.Inbox() <- AddSink{Name: "console", Sink: console}

	ctx := context.Background()
	require.NoError(t, h.Send(ctx, "123", "hello"))
	require.NoError(t, h.Send(ctx, "console", "hi"))

	assert.Equal(t, []string{"123:hello"}, discord.delivered())
	assert.Equal(t, []string{"console:hi"}, console.delivered())
}

func TestHub_NoSink(t *testing.T) {
	h := newTestHub(t)
	err := h.Send(context.Background(), "nowhere", "x")
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestHub_DeliveryErrorsAreReturned(t *testing.T) {
	h := newTestHub(t)
	boom := errors.New("boom")
	h.Inbox() <- AddSink{Name: "a", Sink: &recordSink{prefix: "c", fail: boom}}
	h.Inbox() <- AddSink{Name: "b", Sink: &recordSink{prefix: "c"}}

	err := h.Send(context.Background(), "c1", "x")
	assert.ErrorIs(t, err, boom)
}

func TestHub_AddRemoveList(t *testing.T) {
	h := newTestHub(t)
	h.Inbox() <- AddSink{Name: "discord", Sink: &recordSink{prefix: "1"}}
	h.Inbox() <- AddSink{Name: "console", Sink: &recordSink{prefix: "console"}}
	h.Inbox() <- AddSink{Name: "discord", Sink: &recordSink{prefix: "2"}}
	h.Inbox() <- RemoveSink{Name: "console"}

	reply := make(chan []string, 1)
	h.Inbox() <- ListSinks{Reply: reply}
	assert.Equal(t, []string{"discord"}, <-reply)
}

func TestHub_Shutdown(t *testing.T) {
	h := newTestHub(t)
	h.Inbox() <- ShutdownHub{}

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatalf("hub did not stop")
	}
	assert.ErrorIs(t, h.Send(context.Background(), "c1", "x"), ErrClosed)
}
