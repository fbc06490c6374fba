package show

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "show.yml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got: %v", err)
	}

	if cfg.Name != "Low Limit Cash Games" {
		t.Errorf("Expected default show name, got: %s", cfg.Name)
	}
	if cfg.Links.Apple == "" || cfg.Links.Spotify == "" {
		t.Error("Expected default platform links")
	}
	if cfg.PlaceholderTitle == "" {
		t.Error("Expected default placeholder title")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error for empty path, got: %v", err)
	}
	if cfg.Thresholds.Hydration == 0 {
		t.Error("Expected default hydration threshold")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yml")
	content := `name: Test Show
links:
  apple: https://podcasts.apple.com/test
placeholder_title: New test episode
thresholds:
  stream: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Name != "Test Show" {
		t.Errorf("Expected overridden name, got: %s", cfg.Name)
	}
	if cfg.Links.Apple != "https://podcasts.apple.com/test" {
		t.Errorf("Expected overridden Apple link, got: %s", cfg.Links.Apple)
	}
	// Unset fields keep defaults.
	if cfg.Links.Spotify != Default().Links.Spotify {
		t.Errorf("Expected default Spotify link preserved, got: %s", cfg.Links.Spotify)
	}
	if cfg.Thresholds.Stream != 8 {
		t.Errorf("Expected stream threshold 8, got: %d", cfg.Thresholds.Stream)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yml")
	if err := os.WriteFile(path, []byte("name: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadRejectsRelativeLink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yml")
	if err := os.WriteFile(path, []byte("links:\n  apple: not-a-url\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for non-absolute link")
	}
}
