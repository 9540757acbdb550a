package runtime

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

const testConfig = `
[cellar]
name = "demo"
log_level = "debug"
journal_file = "/tmp/demo/journal.db"
refresh_interval = "30s"
env = ["REGION", "eu-1"]

["source/etcd"]
endpoints = ["127.0.0.1:2379"]
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("demo.toml", testConfig)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "demo" {
		t.Errorf("Name: got %q, want demo", cfg.Name)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: got %v, want debug", cfg.LogLevel)
	}
	if cfg.JournalFile != "/tmp/demo/journal.db" {
		t.Errorf("JournalFile: got %q", cfg.JournalFile)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval: got %v", cfg.RefreshInterval)
	}
	if cfg.Env["REGION"] != "eu-1" {
		t.Errorf("Env: got %v", cfg.Env)
	}
	if _, ok := cfg.Sections["source/etcd"]; !ok {
		t.Error("source/etcd section not cached")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := ParseConfig("demo.toml", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "demo" {
		t.Errorf("Name: got %q, want the file basename", cfg.Name)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: got %v, want info", cfg.LogLevel)
	}
	if !strings.HasSuffix(cfg.JournalFile, "journal.db") {
		t.Errorf("JournalFile: got %q", cfg.JournalFile)
	}
}

func TestParseConfigBadLogLevel(t *testing.T) {
	if _, err := ParseConfig("demo.toml", "[cellar]\nlog_level = \"chatty\"\n"); err == nil {
		t.Error("invalid log level should fail")
	}
}

func TestParseConfigOddEnv(t *testing.T) {
	if _, err := ParseConfig("demo.toml", "[cellar]\nenv = [\"KEY\"]\n"); err == nil {
		t.Error("odd env list should fail")
	}
}

func TestParseConfigSectionUnknownKeys(t *testing.T) {
	sections := map[string]string{"s": "nope = 1\n"}
	var dst struct{ Yep int }
	if err := ParseConfigSection("s", "", sections, &dst); err == nil {
		t.Error("unknown key should fail")
	}
}

type validated struct {
	N int
}

func (v *validated) Validate() error {
	if v.N < 0 {
		return errNegative
	}
	return nil
}

var errNegative = &negativeError{}

type negativeError struct{}

func (*negativeError) Error() string { return "n must not be negative" }

func TestParseConfigSectionValidate(t *testing.T) {
	sections := map[string]string{"s": "n = -1\n"}
	var dst validated
	if err := ParseConfigSection("s", "", sections, &dst); err == nil {
		t.Error("Validate failure should propagate")
	}
}
