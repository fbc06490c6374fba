package show

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default profile for the Low Limit Cash Games show. Used whenever no
// profile file is configured or the configured file does not exist.
func Default() *Config {
	return &Config{
		Name: "Low Limit Cash Games",
		Links: Links{
			Apple:   "https://podcasts.apple.com/us/podcast/low-limit-cash-games/id1496651303",
			Spotify: "https://open.spotify.com/show/2ycOlKRTGA9ugMmIIjqjSE",
			Patreon: "https://www.patreon.com/lowlimitcashgames",
		},
		PlaceholderTitle: "New Patreon post",
		Thresholds: Thresholds{
			Hydration: 4,
			Stream:    6,
		},
	}
}

// Load reads a show profile from a YAML file, filling gaps with
// defaults. A missing file yields the full default profile; a present
// but invalid file is a startup error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Show profile not found, using defaults", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read show profile: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid show profile %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid show profile %s: %w", path, err)
	}

	slog.Debug("Show profile loaded", "path", path, "show", cfg.Name)

	return cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("show name is required")
	}
	for field, url := range map[string]string{
		"links.apple":   cfg.Links.Apple,
		"links.spotify": cfg.Links.Spotify,
		"links.patreon": cfg.Links.Patreon,
	} {
		if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s must be an absolute URL", field)
		}
	}
	if cfg.Thresholds.Hydration < 0 || cfg.Thresholds.Stream < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}
	return nil
}
