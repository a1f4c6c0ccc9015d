package types

import "github.com/DoyleJ11/fa-bid-backend/internal/engine"

// ClientMessage is what a websocket client may send. Only "Command" is
// understood.
type ClientMessage struct {
	Type      string           `json:"type"`
	ChannelID engine.ChannelID `json:"channel_id,omitempty"`
	Text      string           `json:"text,omitempty"`
}

type ServerMessage struct {
	Type    string        `json:"type"` // "StateSnapshot" | "Reply" | "Error"
	Version int           `json:"version,omitempty"`
	Phase   engine.Phase  `json:"phase,omitempty"`
	State   *engine.State `json:"state,omitempty"`
	Reply   *CommandReply `json:"reply,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type CommandRequest struct {
	ChannelID engine.ChannelID `json:"channel_id"`
	Text      string           `json:"text"`
}

type CommandReply struct {
	Outcome string   `json:"outcome"`
	Reason  string   `json:"reason,omitempty"`
	Lines   []string `json:"lines"`
	Version int      `json:"version"`
}

type DraftView struct {
	Version   int          `json:"version"`
	Phase     engine.Phase `json:"phase"`
	State     engine.State `json:"state"`
	Reminding bool         `json:"reminding"`
}

type StatusView struct {
	Phase           engine.Phase `json:"phase"`
	NextToIntroduce string       `json:"next_to_introduce,omitempty"`
	Player          string       `json:"player,omitempty"`
	HighBid         int          `json:"high_bid,omitempty"`
	HighBidder      string       `json:"high_bidder,omitempty"`
	OnTheClock      string       `json:"on_the_clock,omitempty"`
	NextUp          []string     `json:"next_up,omitempty"`
	Text            string       `json:"text"`
}

func NewStatusView(v engine.StatusView, text string) StatusView {
	return StatusView{
		Phase:           v.Phase,
		NextToIntroduce: v.NextToIntroduce,
		Player:          v.Player,
		HighBid:         v.HighBid,
		HighBidder:      v.HighBidder,
		OnTheClock:      v.OnTheClock,
		NextUp:          v.NextUp,
		Text:            text,
	}
}
