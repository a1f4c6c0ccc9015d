package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		tok     string
		want    int
		wantErr bool
	}{
		{tok: "1", want: 1},
		{tok: "1k", want: 1},
		{tok: "20K", want: 20},
		{tok: " 7k ", want: 7},
		{tok: "0", want: 0},
		{tok: "007", want: 7},
		{tok: "", wantErr: true},
		{tok: "k", wantErr: true},
		{tok: "1kk", wantErr: true},
		{tok: "-5", wantErr: true},
		{tok: "+5", wantErr: true},
		{tok: "1.5k", wantErr: true},
		{tok: "pass", wantErr: true},
		{tok: "99999999999999999999999", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.tok, func(t *testing.T) {
			got, err := ParseAmount(tc.tok)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseBid_Pass(t *testing.T) {
	for _, tok := range []string{"pass", "PASS", "Pass", "passk", "PASSK"} {
		amount, pass, err := ParseBid(tok)
		assert.NoError(t, err, tok)
		assert.True(t, pass, tok)
		assert.Zero(t, amount, tok)
	}

	amount, pass, err := ParseBid("12k")
	assert.NoError(t, err)
	assert.False(t, pass)
	assert.Equal(t, 12, amount)

	_, _, err = ParseBid("passed")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseBudget_IsLenient(t *testing.T) {
	assert.Equal(t, 250, ParseBudget("250"))
	assert.Equal(t, 250, ParseBudget("250k"))
	assert.Equal(t, 0, ParseBudget(""))
	assert.Equal(t, 0, ParseBudget("lots"))
}
