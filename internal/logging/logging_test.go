package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}

func TestInitJSON(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	var buf bytes.Buffer
	Init(Config{Level: zerolog.InfoLevel, Output: &buf})
	l := log.With().Str("component", "workspace").Logger()
	l.Info().Int("files", 3).Msg("lint finished")
	log.Debug().Msg("hidden")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("not a single JSON line: %q", buf.String())
	}
	if entry["component"] != "workspace" || entry["message"] != "lint finished" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestSetupFileAndEnv(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()
	t.Setenv(EnvLevel, "debug")

	path := filepath.Join(t.TempDir(), "weblint.log")
	closeLog, err := Setup(Options{File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug().Msg("from env level")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "from env level") {
		t.Fatalf("log file = %q", data)
	}
	if _, err := Setup(Options{Level: "nope"}); err == nil {
		t.Fatal("expected error for bad level")
	}
}
