package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLevelsWriteTheirOwnPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.Info("partida")
	log.Warnf("atenção %d", 1)
	log.Error("falhou")
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for i, prefix := range []string{"INFO: ", "WARN: ", "ERROR: "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
}

func TestConcurrentLevelsKeepPrefixesStraight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); log.Info("info-line") }()
		go func() { defer wg.Done(); log.Warn("warn-line") }()
		go func() { defer wg.Done(); log.Error("error-line") }()
	}
	wg.Wait()
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		switch {
		case strings.HasPrefix(line, "INFO: ") && strings.HasSuffix(line, "info-line"):
		case strings.HasPrefix(line, "WARN: ") && strings.HasSuffix(line, "warn-line"):
		case strings.HasPrefix(line, "ERROR: ") && strings.HasSuffix(line, "error-line"):
		default:
			t.Errorf("mismatched level and message: %q", line)
		}
	}
}
