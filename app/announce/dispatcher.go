// Package announce turns newly discovered episodes into Discord
// discussion threads.
package announce

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lowlimit/podbot/app/episode"
	"github.com/lowlimit/podbot/app/show"
)

// Discord caps thread names at 100 characters.
const maxThreadNameLen = 100

// ChatClient is the narrow slice of the chat platform the dispatcher
// needs. Implemented by DiscordClient; tests substitute a fake.
type ChatClient interface {
	CreateThread(channelID, name, reason string) (threadID string, err error)
	SendMessage(channelID, content string) error
}

type Dispatcher struct {
	client    ChatClient
	channelID string
	show      *show.Config
}

func NewDispatcher(client ChatClient, channelID string, showCfg *show.Config) *Dispatcher {
	return &Dispatcher{
		client:    client,
		channelID: channelID,
		show:      showCfg,
	}
}

// Announce creates a discussion thread for the episode and posts its
// opening message. Returns the thread ID on success. On failure nothing
// is recorded anywhere, so the episode stays eligible for the next
// cycle.
func (d *Dispatcher) Announce(ep episode.Episode) (string, error) {
	name := threadName(ep.Title)

	threadID, err := d.client.CreateThread(d.channelID, name, "New episode discussion")
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}

	if err := d.client.SendMessage(threadID, d.message(ep)); err != nil {
		return "", fmt.Errorf("failed to post thread message: %w", err)
	}

	slog.Info("Episode announced", "source", ep.Source, "title", ep.Title, "thread_id", threadID)

	return threadID, nil
}

func (d *Dispatcher) message(ep episode.Episode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", ep.Title)

	if ep.URL != "" {
		fmt.Fprintf(&b, "\n%s\n", ep.URL)
		return b.String()
	}

	// No resolvable link: point at the show's platform pages instead.
	b.WriteString("\nAvailable now on all platforms.\n")
	if d.show.Links.Apple != "" {
		fmt.Fprintf(&b, "\n**Apple Podcasts**\n%s\n", d.show.Links.Apple)
	}
	if d.show.Links.Spotify != "" {
		fmt.Fprintf(&b, "\n**Spotify**\n%s\n", d.show.Links.Spotify)
	}
	if d.show.Links.Patreon != "" {
		fmt.Fprintf(&b, "\n**Patreon**\n%s\n", d.show.Links.Patreon)
	}

	return b.String()
}

func threadName(title string) string {
	runes := []rune(title)
	if len(runes) <= maxThreadNameLen {
		return title
	}
	return string(runes[:maxThreadNameLen])
}
