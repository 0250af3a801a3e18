package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasker.log")

	log, err := New("info", false, path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	log.Debug("hidden")
	log.With(String("slug", "resp-to-emai-AbCdEf")).Info("task created", Int("tags", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %s", out)
	}
	if !strings.Contains(out, "task created") || !strings.Contains(out, "resp-to-emai-AbCdEf") {
		t.Errorf("log output missing entry or field: %s", out)
	}
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false", lvl)
		}
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true")
	}
}

func TestNop(t *testing.T) {
	log := NewNop()
	log.Error("ignored", Error(os.ErrNotExist))
	log.With(Strings("tags", []string{"Work"})).Warn("ignored", Time("at", time.Now()))
}
