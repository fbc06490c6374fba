package announce

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lowlimit/podbot/app/episode"
	"github.com/lowlimit/podbot/app/show"
)

type fakeChat struct {
	threads    []string
	messages   []string
	failCreate bool
	failSend   bool
}

func (f *fakeChat) CreateThread(channelID, name, reason string) (string, error) {
	if f.failCreate {
		return "", fmt.Errorf("missing permissions")
	}
	f.threads = append(f.threads, name)
	return fmt.Sprintf("thread-%d", len(f.threads)), nil
}

func (f *fakeChat) SendMessage(channelID, content string) error {
	if f.failSend {
		return fmt.Errorf("rate limited")
	}
	f.messages = append(f.messages, content)
	return nil
}

func newTestDispatcher(chat ChatClient) *Dispatcher {
	return NewDispatcher(chat, "channel-1", show.Default())
}

func TestAnnounceWithURL(t *testing.T) {
	chat := &fakeChat{}
	d := newTestDispatcher(chat)

	threadID, err := d.Announce(episode.Episode{
		Source: episode.SourceFeed,
		Title:  "Ep 12",
		URL:    "https://x/ep12",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if threadID == "" {
		t.Error("Expected a thread ID")
	}

	if len(chat.threads) != 1 || chat.threads[0] != "Ep 12" {
		t.Errorf("Expected thread named after episode, got: %v", chat.threads)
	}
	if len(chat.messages) != 1 {
		t.Fatalf("Expected one message, got: %d", len(chat.messages))
	}
	if !strings.Contains(chat.messages[0], "**Ep 12**") {
		t.Errorf("Expected bold title in message, got: %s", chat.messages[0])
	}
	if !strings.Contains(chat.messages[0], "https://x/ep12") {
		t.Errorf("Expected episode URL in message, got: %s", chat.messages[0])
	}
}

func TestAnnounceWithoutURL(t *testing.T) {
	chat := &fakeChat{}
	d := newTestDispatcher(chat)

	_, err := d.Announce(episode.Episode{
		Source: episode.SourcePage,
		Title:  "Bonus hand review",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	msg := chat.messages[0]
	if !strings.Contains(msg, "all platforms") {
		t.Errorf("Expected platform notice, got: %s", msg)
	}
	if !strings.Contains(msg, show.Default().Links.Apple) {
		t.Errorf("Expected Apple link, got: %s", msg)
	}
	if !strings.Contains(msg, show.Default().Links.Spotify) {
		t.Errorf("Expected Spotify link, got: %s", msg)
	}
}

func TestAnnounceTruncatesThreadName(t *testing.T) {
	chat := &fakeChat{}
	d := newTestDispatcher(chat)

	long := strings.Repeat("a", 150)
	if _, err := d.Announce(episode.Episode{Title: long, URL: "https://x"}); err != nil {
		t.Fatal(err)
	}

	if got := len([]rune(chat.threads[0])); got != maxThreadNameLen {
		t.Errorf("Expected thread name truncated to %d, got: %d", maxThreadNameLen, got)
	}
}

func TestAnnounceCreateFailure(t *testing.T) {
	chat := &fakeChat{failCreate: true}
	d := newTestDispatcher(chat)

	if _, err := d.Announce(episode.Episode{Title: "Ep 12"}); err == nil {
		t.Error("Expected error when thread creation fails")
	}
	if len(chat.messages) != 0 {
		t.Error("Expected no message after failed thread creation")
	}
}

func TestAnnounceSendFailure(t *testing.T) {
	chat := &fakeChat{failSend: true}
	d := newTestDispatcher(chat)

	if _, err := d.Announce(episode.Episode{Title: "Ep 12"}); err == nil {
		t.Error("Expected error when message send fails")
	}
}
