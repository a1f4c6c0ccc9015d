// Package discord runs the draft as a Discord bot and delivers reminders to
// Discord channels.
package discord

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

// MaxMessageLen is Discord's limit on message content.
const MaxMessageLen = 2000

var ErrNoToken = errors.New("discord token is empty")

// Handler runs chat text. *dispatch.Dispatcher implements it.
type Handler interface {
	Handle(ctx context.Context, channel engine.ChannelID, text string) (dispatch.Reply, error)
}

type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Bot struct {
	session *discordgo.Session
	send    sender
	handler Handler
	log     *zap.Logger
	timeout time.Duration
}

func New(token string, h Handler, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	b := &Bot{session: s, send: s, handler: h, log: logger.Named("discord"), timeout: 10 * time.Second}
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("connected", zap.String("user", r.User.Username))
	})
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessage(m)
	})
	return b, nil
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return err
	}
	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) onMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	reply, err := b.handler.Handle(ctx, engine.ChannelID(m.ChannelID), m.Content)
	if err != nil {
		b.log.Error("command failed", zap.String("channel", m.ChannelID), zap.Error(err))
		return
	}
	for _, line := range reply.Lines {
		if err := b.Deliver(ctx, engine.ChannelID(m.ChannelID), line); err != nil {
			b.log.Warn("send failed", zap.String("channel", m.ChannelID), zap.Error(err))
			return
		}
	}
}

// Handles reports whether channel looks like a Discord snowflake.
func (b *Bot) Handles(channel engine.ChannelID) bool {
	s := string(channel)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (b *Bot) Deliver(ctx context.Context, channel engine.ChannelID, text string) error {
	for _, chunk := range Split(text, MaxMessageLen) {
		if _, err := b.send.ChannelMessageSend(string(channel), chunk, discordgo.WithContext(ctx)); err != nil {
			return err
		}
	}
	return nil
}

// Split breaks text into pieces of at most limit runes, preferring line
// breaks. An open ``` block is closed and reopened across pieces.
func Split(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		inCode bool
	)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		out := strings.TrimSuffix(cur.String(), "\n")
		if inCode {
			out += "\n```"
		}
		chunks = append(chunks, out)
		cur.Reset()
		if inCode {
			cur.WriteString("```text\n")
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		// Reserve room for a closing fence.
		if utf8.RuneCountInString(cur.String())+utf8.RuneCountInString(line)+4 > limit {
			flush()
		}
		for utf8.RuneCountInString(line) > limit-12 {
			r := []rune(line)
			cur.WriteString(string(r[:limit-12]))
			line = string(r[limit-12:])
			flush()
		}
		cur.WriteString(line)
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
		}
	}
	if cur.Len() > 0 {
		chunks = append(chunks, strings.TrimSuffix(cur.String(), "\n"))
	}
	return chunks
}
