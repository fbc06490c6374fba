package announce

import (
	"github.com/bwmarrin/discordgo"
)

// Threads cannot be created without an auto-archive duration; 7 days is
// the platform maximum and the closest available to "never".
const threadAutoArchiveMinutes = 10080

// DiscordClient adapts a discordgo session to the ChatClient interface.
type DiscordClient struct {
	session *discordgo.Session
}

func NewDiscordClient(session *discordgo.Session) *DiscordClient {
	return &DiscordClient{session: session}
}

func (c *DiscordClient) CreateThread(channelID, name, reason string) (string, error) {
	thread, err := c.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: threadAutoArchiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	}, discordgo.WithAuditLogReason(reason))
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (c *DiscordClient) SendMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}
