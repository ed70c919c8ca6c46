package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSinkWritesJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := New(dir)

	l.Info("request %s handled", "/index.html")
	l.Warn("slow host %s", "example")
	l.Error("bind failed")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	name := filepath.Join(dir, time.Now().Format("2006-01-02")+".log.json")
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var records []record
	d := json.NewDecoder(bytes.NewReader(data))
	for d.More() {
		var r record
		if err := d.Decode(&r); err != nil {
			t.Fatalf("Failed to decode log record: %v", err)
		}
		records = append(records, r)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].Level != "info" || records[0].Message != "request /index.html handled" {
		t.Errorf("Unexpected first record %+v", records[0])
	}
	if records[1].Level != "warn" {
		t.Errorf("Expected warn level, got %s", records[1].Level)
	}
	if records[2].Level != "error" || records[2].Message != "bind failed" {
		t.Errorf("Unexpected third record %+v", records[2])
	}
	if _, err := time.Parse(time.RFC3339Nano, records[0].Time); err != nil {
		t.Errorf("Record time is not RFC 3339: %v", err)
	}
}

func TestConsoleOnly(t *testing.T) {
	l := New("")
	l.Info("no file sink")
	l.Warn("still fine")
	if err := l.Close(); err != nil {
		t.Errorf("Close on a console-only logger failed: %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Close(); err != nil {
		t.Fatalf("First Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
