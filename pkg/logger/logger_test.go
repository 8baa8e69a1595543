package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := LevelFromEnv(tc.in); got != tc.want {
				t.Fatalf("LevelFromEnv(%q) = %v; want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewJSON_FiltersByLevelAndWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewJSON(&buf, slog.LevelWarn)

	log.Info("dropped")
	log.Warn("kept", "difficulty", 8)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "kept" || rec["level"] != "WARN" || rec["difficulty"] != float64(8) {
		t.Fatalf("record = %v", rec)
	}
}
