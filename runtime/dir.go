package runtime

import (
	"os"
	"path/filepath"
)

// DataDir returns the per-user data directory, creating it if needed.
// XDG_DATA_HOME is honored; the fallback is ~/.local/share.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	regDir := filepath.Join(dataDir, "cellar")
	if err := os.MkdirAll(regDir, 0700); err != nil {
		return "", err
	}

	return regDir, nil
}

// DefaultJournalFile returns the journal location used when the config
// names none.
func DefaultJournalFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}
