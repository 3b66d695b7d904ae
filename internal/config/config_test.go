package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFlagBeatsEnv(t *testing.T) {
	t.Setenv("SPEECHLAB_API_KEY", "env-key")
	t.Setenv("SPEECHLAB_API_BASE_URL", "https://env.example.com/v1")

	cfg, err := Load([]string{"-api-key", "flag-key", "-base-url", "https://flag.example.com/v1"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "flag-key" {
		t.Errorf("api key = %q, want flag value", cfg.APIKey)
	}
	if cfg.BaseURL != "https://flag.example.com/v1" {
		t.Errorf("base url = %q, want flag value", cfg.BaseURL)
	}
}

func TestLoadEnvBeatsDotenv(t *testing.T) {
	dir := t.TempDir()
	dotenv := "SPEECHLAB_API_KEY=file-key\nSPEECHLAB_API_BASE_URL=https://file.example.com/v1\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	t.Setenv("SPEECHLAB_API_KEY", "env-key")
	os.Unsetenv("SPEECHLAB_API_BASE_URL")
	defer os.Unsetenv("SPEECHLAB_API_BASE_URL")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("api key = %q, want env value over .env", cfg.APIKey)
	}
	if cfg.BaseURL != "https://file.example.com/v1" {
		t.Errorf("base url = %q, want .env value", cfg.BaseURL)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	t.Setenv("SPEECHLAB_API_KEY", "k")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Errorf("base url = %q, want default", cfg.BaseURL)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.HTTPTimeout)
	}
	if cfg.S3.Enabled() || cfg.Telegram.Enabled() {
		t.Error("optional integrations should be off by default")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPEECHLAB_API_KEY", "")

	if _, err := Load(nil); err == nil {
		t.Fatal("want error when SPEECHLAB_API_KEY is missing")
	}
}

func TestResolveOrder(t *testing.T) {
	t.Setenv("DUBKIT_TEST_KEY", "from-env")

	if got := resolve("from-flag", "DUBKIT_TEST_KEY", "fallback"); got != "from-flag" {
		t.Errorf("resolve = %q, want flag", got)
	}
	if got := resolve("", "DUBKIT_TEST_KEY", "fallback"); got != "from-env" {
		t.Errorf("resolve = %q, want env", got)
	}
	if got := resolve("", "DUBKIT_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("resolve = %q, want fallback", got)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
