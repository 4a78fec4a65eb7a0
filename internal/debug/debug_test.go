package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEnableReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	done := make(chan error, 1)
	go func() { done <- Enable(path) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Enable: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Enable did not return")
	}
	defer Close()

	if !IsEnabled() {
		t.Error("logging should be enabled")
	}

	Log("hello %d", 42)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Debug logging enabled") {
		t.Error("enable marker missing from the log")
	}
	if !strings.Contains(string(data), "hello 42") {
		t.Error("logged line missing from the log")
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	Close()
	Log("dropped")
	if IsEnabled() {
		t.Error("logging should be off after Close")
	}
}
