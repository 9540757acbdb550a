package runtime

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDataDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	dir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(base, "cellar") {
		t.Errorf("got %q, want it under %q", dir, base)
	}
}

func TestDefaultJournalFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	file, err := DefaultJournalFile()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(file, filepath.Join("cellar", "journal.db")) {
		t.Errorf("got %q", file)
	}
}
