package types

// Client -> Server (websocket, /ws)
// Command:
//   channel_id: string // optional; defaults to "ws:<client id>"
//   text: string       // e.g. "!bid TT 12k"
//
// Server -> Client
// StateSnapshot (sent on join and after every accepted command):
//   version: number
//   phase: "no_draft" | "awaiting_introduction" | "bidding" | "complete"
//   state:
//     draft: { IntroTm, ClaimTm, Player, Amt, MoneyLeft }[]
//     round: { Tm, Amt }[]     // front is on the clock, last holds the standing bid
//     last_channel_id: string
//
// Reply (answer to a Command):
//   version: number
//   reply: { outcome: "ignored" | "info" | "accepted" | "rejected" | "failed",
//            reason: string, lines: string[], version: number }
//
// Error:
//   error: string
//
// HTTP
//   POST /commands    { channel_id, text } -> Reply.reply
//   GET  /draft       { version, phase, state }
//   GET  /draft/status
//   GET  /draft/recap text/plain
