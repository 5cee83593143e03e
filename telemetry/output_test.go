package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/fieldsim/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("", "run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager when output is disabled")
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager should discard writes, got %v", err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Errorf("nil manager should discard writes, got %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager Close should be a no-op, got %v", err)
	}
}

func TestOutputManager_HeaderWrittenOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEnd: i * 10, Rabbits: i}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "run_id,window_end,season,rabbits") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "abc,10,") {
		t.Errorf("expected run id stamped on rows, got %q", lines[1])
	}
}

func TestOutputManager_BookmarksAndConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir, "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer om.Close()

	if err := om.WriteBookmark(Bookmark{Type: BookmarkExtinction, Step: 7, Description: "fox died out"}); err != nil {
		t.Fatalf("write bookmark: %v", err)
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config should load back: %v", err)
	}
}
