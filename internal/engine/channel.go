package engine

import (
	"bytes"
	"encoding/json"
)

// ChannelID identifies the chat channel that last acted on the draft.
type ChannelID string

// UnmarshalJSON also accepts bare numbers, which is how older snapshot files
// stored Discord channel IDs.
func (c *ChannelID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*c = ChannelID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ChannelID(s)
	return nil
}

func (c ChannelID) String() string { return string(c) }
