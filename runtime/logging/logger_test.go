package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestLogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewLogHandler(&buf, Options{
		App:       "cellar",
		Component: "journal",
	}, slog.LevelInfo))

	logger.Info("journal opened", "file", "/tmp/journal.db")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if record["app"] != "cellar" {
		t.Errorf("app: got %v", record["app"])
	}
	if record["component"] != "journal" {
		t.Errorf("component: got %v", record["component"])
	}
	if record["msg"] != "journal opened" {
		t.Errorf("msg: got %v", record["msg"])
	}
	if record["file"] != "/tmp/journal.db" {
		t.Errorf("file: got %v", record["file"])
	}
	if record["source"] == nil {
		t.Error("source attr missing")
	}
	if _, err := time.Parse(time.DateTime, record["time"].(string)); err != nil {
		t.Errorf("time format: %v", err)
	}
}

func TestLogHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewLogHandler(&buf, Options{App: "cellar"}, slog.LevelWarn))

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record emitted below level: %s", buf.String())
	}

	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record missing")
	}
}
