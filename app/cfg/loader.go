package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Discord configuration
	DiscordToken string `long:"discord-token" env:"DISCORD_BOT_TOKEN" description:"Discord bot token (required)" required:"true"`
	ChannelID    string `long:"channel-id" env:"CHANNEL_ID" description:"Discord channel for episode threads (required)" required:"true"`

	// Content sources
	FeedURL string `long:"feed-url" env:"PODCAST_RSS_URL" description:"Podcast RSS feed URL (required)" required:"true"`
	PageURL string `long:"page-url" env:"PATREON_PAGE_URL" default:"https://www.patreon.com/lowlimitcashgames" description:"Patreon creator page URL"`

	// Scheduling
	CheckIntervalMinutes int `long:"check-interval" env:"CHECK_INTERVAL" default:"10" description:"Minutes between content checks"`

	// Persistence
	LedgerPath string `long:"ledger-path" env:"LEDGER_PATH" default:"last_checked.json" description:"Path to the announce ledger file"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"podbot.db" description:"Path to the announcement archive database"`
	ShowConfig string `long:"show-config" env:"SHOW_CONFIG" description:"Path to the YAML show profile (optional)"`

	// HTTP API
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the trigger endpoint (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Podbot/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DiscordToken:         raw.DiscordToken,
		ChannelID:            raw.ChannelID,
		FeedURL:              raw.FeedURL,
		PageURL:              raw.PageURL,
		CheckIntervalMinutes: raw.CheckIntervalMinutes,
		LedgerPath:           raw.LedgerPath,
		DBPath:               raw.DBPath,
		ShowConfig:           raw.ShowConfig,
		Port:                 raw.Port,
		APIAccessKey:         raw.APIAccessKey,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if cfg.CheckIntervalMinutes < 1 {
		return nil, fmt.Errorf("check interval must be at least 1 minute, got %d", cfg.CheckIntervalMinutes)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
