package cfg

type Cfg struct {
	// Discord configuration
	DiscordToken string
	ChannelID    string

	// Content sources
	FeedURL string
	PageURL string

	// Scheduling
	CheckIntervalMinutes int

	// Persistence
	LedgerPath string
	DBPath     string
	ShowConfig string

	// HTTP API
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
