package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggerWritesNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLogger(path, 8)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	if err := l.Log(Entry{Action: ActionSecretWrite, Key: "token", Actor: "daemon"}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := l.Log(Entry{Action: ActionFileRead, Path: "/tmp/doc.json"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not valid JSON: %v", scanner.Text(), err)
		}
		lines = append(lines, e)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Action != ActionSecretWrite || lines[0].Key != "token" {
		t.Errorf("first entry = %+v", lines[0])
	}
	if lines[1].Action != ActionFileRead || lines[1].Path != "/tmp/doc.json" {
		t.Errorf("second entry = %+v", lines[1])
	}
	if lines[0].Timestamp.IsZero() {
		t.Error("timestamp was not defaulted")
	}
}

func TestLoggerAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	l1, err := NewLogger(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	l1.Log(Entry{Action: ActionSecretWrite, Key: "first"})
	l1.Close()

	l2, err := NewLogger(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	l2.Log(Entry{Action: ActionSecretWrite, Key: "second"})
	l2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	count := 0
	for scanner.Scan() {
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 lines after reopen, got %d", count)
	}
}

func TestLoggerRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLogger(path, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	keys := []string{"a", "b", "c", "d", "e", "f"}
	for _, k := range keys {
		l.Log(Entry{Action: ActionSecretRead, Key: k})
	}

	recent := l.Recent(10)
	if len(recent) != 4 {
		t.Fatalf("expected ring capacity of 4, got %d", len(recent))
	}
	want := []string{"c", "d", "e", "f"}
	for i, k := range want {
		if recent[i].Key != k {
			t.Errorf("recent[%d].Key = %q, want %q", i, recent[i].Key, k)
		}
	}

	last2 := l.Recent(2)
	if len(last2) != 2 || last2[0].Key != "e" || last2[1].Key != "f" {
		t.Errorf("Recent(2) = %v", last2)
	}
}
