package runtime

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mizuchi-dev/cellar/internal/env"
)

// Config is the parsed [cellar] section of a deployment's TOML config,
// plus the raw text of every other section for consumers to parse
// themselves (see ParseConfigSection).
type Config struct {
	Name            string
	LogLevel        slog.Level
	JournalFile     string
	RefreshInterval time.Duration
	Env             map[string]string

	Sections map[string]string
}

// ParseConfig parses the full config text, extracts the [cellar] section
// and caches the raw text of every other section in Sections for later
// ParseConfigSection calls.
func ParseConfig(file string, input string) (*Config, error) {
	var sections map[string]toml.Primitive
	_, err := toml.Decode(input, &sections)
	if err != nil {
		return nil, err
	}

	config := &Config{Sections: make(map[string]string)}
	for k, v := range sections {
		var buf strings.Builder
		err := toml.NewEncoder(&buf).Encode(v)
		if err != nil {
			return nil, fmt.Errorf("encoding section %q: %v", k, err)
		}
		config.Sections[k] = buf.String()
	}

	if err := extractCellar(file, config); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseConfigSection parses one cached section into dst. An unknown key in
// the section is an error; a missing section is not. If dst has a
// Validate method it is run after decoding.
func ParseConfigSection(key, shortKey string, sections map[string]string, dst any) error {
	section, ok := sections[key]
	if shortKey != "" {
		if shortKeySection, ok2 := sections[shortKey]; ok2 {
			if ok {
				return fmt.Errorf("conflicting sections %q and %q", key, shortKey)
			}
			key, section, ok = shortKey, shortKeySection, ok2
		}
	}
	if !ok {
		return nil
	}

	md, err := toml.Decode(section, dst)
	if err != nil {
		return err
	}

	if unknown := md.Undecoded(); len(unknown) > 0 {
		return fmt.Errorf("section %q has unknown keys %v", key, unknown)
	}

	if x, ok := dst.(interface{ Validate() error }); ok {
		if err := x.Validate(); err != nil {
			return fmt.Errorf("section %q is invalid: %w", key, err)
		}
	}

	return nil
}

func extractCellar(file string, config *Config) error {
	const cellarKey = "github.com/mizuchi-dev/cellar"
	const shortCellarKey = "cellar"

	type cellarConfig struct {
		Name            string   `toml:"name"`
		JournalFile     string   `toml:"journal_file"`
		RefreshInterval string   `toml:"refresh_interval"`
		LogLevel        string   `toml:"log_level"`
		Env             []string `toml:"env"`
	}

	parsed := &cellarConfig{}
	if err := ParseConfigSection(cellarKey, shortCellarKey, config.Sections, parsed); err != nil {
		return err
	}

	config.Name = parsed.Name
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	config.JournalFile = parsed.JournalFile
	if config.JournalFile == "" {
		journal, err := DefaultJournalFile()
		if err != nil {
			return err
		}
		config.JournalFile = journal
	} else if !filepath.IsAbs(config.JournalFile) {
		journal, err := filepath.Abs(filepath.Join(filepath.Dir(file), config.JournalFile))
		if err != nil {
			return err
		}
		config.JournalFile = journal
	}

	if parsed.RefreshInterval != "" {
		d, err := time.ParseDuration(parsed.RefreshInterval)
		if err != nil {
			return fmt.Errorf("invalid refresh interval: %w", err)
		}
		config.RefreshInterval = d
	}

	kvs, err := env.Parse(parsed.Env)
	if err != nil {
		return err
	}
	config.Env = kvs

	logLevel, err := parseLogLevel(parsed.LogLevel)
	if err != nil {
		return err
	}
	config.LogLevel = logLevel

	return nil
}

func parseLogLevel(logLevel string) (slog.Level, error) {
	cl := logLevel
	l := slog.LevelInfo
	logLevel = strings.ToLower(logLevel)
	switch logLevel {
	case "debug":
		l = slog.LevelDebug
	case "info", "":
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	case "fatal":
		l = slog.LevelError + 1
	default:
		return 0, fmt.Errorf("invalid log level: %q", cl)
	}

	return l, nil
}
