package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetLogFile_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kumpel.log")
	if err := SetLogFile(path); err != nil {
		t.Fatalf("set log file: %v", err)
	}
	defer Close()

	InfoCF("test", "Hallo Logdatei", map[string]interface{}{"answer": 42})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	if entry["message"] != "Hallo Logdatei" {
		t.Fatalf("expected message field, got %v", entry["message"])
	}
	if entry["component"] != "test" {
		t.Fatalf("expected component test, got %v", entry["component"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp field, entry was %v", entry)
	}
	if entry["answer"] != float64(42) {
		t.Fatalf("expected extra field answer=42, got %v", entry["answer"])
	}
}

func TestClose_StopsFileMirroring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kumpel.log")
	if err := SetLogFile(path); err != nil {
		t.Fatalf("set log file: %v", err)
	}
	InfoC("test", "vor dem Schliessen")
	Close()
	InfoC("test", "nach dem Schliessen")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "vor dem Schliessen") {
		t.Fatalf("expected first message in file, got %q", content)
	}
	if strings.Contains(content, "nach dem Schliessen") {
		t.Fatalf("expected no messages after Close, got %q", content)
	}
}
