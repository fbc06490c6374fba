// Package bot owns the Discord session and translates operator
// commands into checker operations.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lowlimit/podbot/app/checker"
)

type Bot struct {
	session   *discordgo.Session
	checker   *checker.Checker
	channelID string
}

func New(session *discordgo.Session, checkerSvc *checker.Checker, channelID string) *Bot {
	return &Bot{
		session:   session,
		checker:   checkerSvc,
		channelID: channelID,
	}
}

// Start registers the gateway handlers and opens the connection.
func (b *Bot) Start() error {
	b.session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Discord session ready", "user", r.User.Username)

	if _, err := s.ChannelMessageSend(b.channelID, "Episode watcher is online."); err != nil {
		slog.Warn("Failed to send startup notice", "error", err)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.ChannelID != b.channelID {
		return
	}

	cmd, ok := parseCommand(m.Content)
	if !ok {
		return
	}

	slog.Info("Operator command received", "command", string(cmd.kind), "user", m.Author.Username)

	// Checks can take many seconds; never block the gateway handler.
	go b.execute(cmd)
}

func (b *Bot) execute(cmd command) {
	switch cmd.kind {
	case cmdCheckAll:
		b.runCheck(checker.ModeFull)
	case cmdCheckFeed:
		b.runCheck(checker.ModeFeed)
	case cmdCheckPage:
		b.runCheck(checker.ModePage)
	case cmdClearLedger:
		if err := b.checker.ClearLedger(); err != nil {
			b.reply("Failed to clear the announce ledger: " + err.Error())
			return
		}
		b.reply("Announce ledger cleared.")
	case cmdStatus:
		b.reply(b.statusMessage())
	case cmdAnnounce:
		if err := b.checker.AnnounceManual(cmd.title, cmd.url); err != nil {
			b.reply("Manual announcement failed: " + err.Error())
			return
		}
	}
}

func (b *Bot) runCheck(mode checker.Mode) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := b.checker.Run(ctx, mode); err != nil {
		b.reply("Check failed: " + err.Error())
	}
}

func (b *Bot) statusMessage() string {
	status := b.checker.Status()
	return fmt.Sprintf("Last podcast check: %s\nLast Patreon check: %s\nTracked episodes: %d",
		status.LastPodcastCheck.Format(time.RFC1123),
		status.LastPatreonCheck.Format(time.RFC1123),
		status.SeenEpisodes)
}

func (b *Bot) reply(content string) {
	if _, err := b.session.ChannelMessageSend(b.channelID, content); err != nil {
		slog.Warn("Failed to send reply", "error", err)
	}
}
