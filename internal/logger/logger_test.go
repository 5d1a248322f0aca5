package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// capture redirects stdout around fn and returns what was written.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevels_IncludeTagAndMessage(t *testing.T) {
	out := capture(t, func() {
		Info("SCAN", "starting")
		Success("SCAN", "done")
		Warn("DATA", "stale cache")
		Error("DB", "open failed")
	})
	for _, want := range []string{"SCAN", "DATA", "DB", "starting", "done", "stale cache", "open failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBanner_NoPanic(t *testing.T) {
	out := capture(t, func() {
		Banner("v1.0.0")
		Banner("")
	})
	if !strings.Contains(out, "v1.0.0") || !strings.Contains(out, "dev") {
		t.Errorf("banner output = %q", out)
	}
}

func TestSectionAndStats(t *testing.T) {
	out := capture(t, func() {
		Section("Results")
		Stats("Opportunities", 42)
	})
	if !strings.Contains(out, "Results") || !strings.Contains(out, "42") {
		t.Errorf("section/stats output = %q", out)
	}
}
