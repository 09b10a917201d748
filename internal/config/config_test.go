package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGlobalConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	configDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "s2_api_key: test-key\ncrossref_mailto: dev@example.org\nsimilarity_threshold: 0.9\nmax_results: 25\n"
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.S2APIKey != "test-key" {
		t.Errorf("s2_api_key = %q", cfg.S2APIKey)
	}
	if cfg.CrossrefMailto != "dev@example.org" {
		t.Errorf("crossref_mailto = %q", cfg.CrossrefMailto)
	}
	if cfg.SimilarityThreshold != 0.9 {
		t.Errorf("similarity_threshold = %v", cfg.SimilarityThreshold)
	}
	if cfg.MaxResults != 25 {
		t.Errorf("max_results = %d", cfg.MaxResults)
	}
}

func TestLoadGlobalConfig_Missing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.S2APIKey != "" || cfg.MaxResults != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	in := &GlobalConfig{S2APIKey: "abc", MaxResults: 10}
	if err := in.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	ResetGlobalConfigCache()
	out, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.S2APIKey != "abc" || out.MaxResults != 10 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestGetS2APIKey_EnvPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("S2_API_KEY", "from-env")
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	if got := GetS2APIKey(); got != "from-env" {
		t.Errorf("key = %q", got)
	}
}

func TestGetDataDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	want := filepath.Join(dataHome, GlobalConfigDir)
	if got := GetDataDir(); got != want {
		t.Errorf("data dir = %q, want %q", got, want)
	}
	if got := PapersPath(); got != filepath.Join(want, PapersFile) {
		t.Errorf("papers path = %q", got)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandTilde("~/papers"); got != filepath.Join(home, "papers") {
		t.Errorf("expanded = %q", got)
	}
	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}
