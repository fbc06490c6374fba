package show

// Config describes the show the bot watches: display name, the
// per-platform links included in announcement messages, and tuning for
// candidate normalization.
type Config struct {
	Name  string `yaml:"name"`
	Links Links  `yaml:"links"`

	// PlaceholderTitle is used when a source cannot recover a real title.
	PlaceholderTitle string `yaml:"placeholder_title"`

	// Thresholds are the minimum accepted title lengths per extraction
	// strategy. Lower-confidence strategies get stricter thresholds to
	// guard against junk tokens scraped from markup.
	Thresholds Thresholds `yaml:"thresholds"`
}

type Links struct {
	Apple   string `yaml:"apple"`
	Spotify string `yaml:"spotify"`
	Patreon string `yaml:"patreon"`
}

type Thresholds struct {
	Hydration int `yaml:"hydration"`
	Stream    int `yaml:"stream"`
}
