package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

func sampleState() engine.State {
	return engine.State{
		Draft: []engine.TeamEntry{
			{IntroTm: "AA", ClaimTm: "BB", Player: "Babe Ruth", Amt: 15, MoneyLeft: 100},
			{IntroTm: "BB", Player: "Lou Gehrig", MoneyLeft: 85},
			{IntroTm: "CC", MoneyLeft: 0},
		},
		Round:         engine.Round{{Tm: "CC", Amt: 0}, {Tm: "AA", Amt: 3}, {Tm: "BB", Amt: 4}},
		LastChannelID: "1187654321098765432",
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "draft-bot-data.json")
	fs := NewFileStore(path, zap.NewNop())

	want := sampleState()
	require.NoError(t, fs.Save(ctx, want))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_ResaveIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "draft.json")
	fs := NewFileStore(path, zap.NewNop())

	require.NoError(t, fs.Save(ctx, sampleState()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := fs.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, fs.Save(ctx, loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFileStore_MissingOrCorruptYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		name    string
		content *string
	}{
		{name: "missing"},
		{name: "corrupt", content: ptr("{not json")},
		{name: "wrong shape", content: ptr(`{"draft": "oops"}`)},
		{name: "empty file", content: ptr("")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			if tc.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tc.content), 0o644))
			}
			got, err := NewFileStore(path, zap.NewNop()).Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, engine.PhaseNoDraft, engine.DerivePhase(got))
			assert.NotNil(t, got.Draft)
			assert.NotNil(t, got.Round)
		})
	}
}

func TestFileStore_LoadsLegacyDocument(t *testing.T) {
	// Written by the earlier bot: compact JSON, numeric channel id, no round.
	legacy := `{"draft": [{"IntroTm": "TT", "ClaimTm": "", "Player": "", "Amt": 0, "MoneyLeft": 250}, ` +
		`{"IntroTm": "OO", "ClaimTm": "", "Player": "", "Amt": 0, "MoneyLeft": 250}], ` +
		`"round": [], "last_channel_id": 998877}`
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	got, err := NewFileStore(path, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Draft, 2)
	assert.Equal(t, engine.ChannelID("998877"), got.LastChannelID)
	assert.Equal(t, engine.PhaseAwaitingIntroduction, engine.DerivePhase(got))
}

func TestFileStore_SaveFailsWhenUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The parent "directory" is a regular file.
	fs := NewFileStore(filepath.Join(blocker, "draft.json"), zap.NewNop())
	assert.Error(t, fs.Save(context.Background(), sampleState()))
}

func TestEncode_EmptyStateUsesArrays(t *testing.T) {
	b, err := Encode(engine.State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"draft": [], "round": [], "last_channel_id": ""}`, string(b))
}

func TestPostgresRows_RoundTrip(t *testing.T) {
	want := sampleState()
	teams, round, meta := toRows(want)

	require.Len(t, teams, 3)
	assert.Equal(t, 2, teams[2].Position)
	assert.Equal(t, metaID, meta.ID)

	assert.Equal(t, want, fromRows(teams, round, meta))
	assert.Equal(t, engine.NewEmptyState(), fromRows(nil, nil, metaRow{}))
}

func ptr(s string) *string { return &s }
