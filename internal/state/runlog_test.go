package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAppendRunRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "run-log.json")

	rec := RunRecord{
		Type:      "daily",
		Collected: map[string]int{"arxiv": 12},
		IssueURL:  "https://github.com/org/repo/issues/1",
	}
	if err := AppendRunRecord(path, rec); err != nil {
		t.Fatalf("AppendRunRecord returned error: %v", err)
	}
	if err := AppendRunRecord(path, RunRecord{Type: "weekly"}); err != nil {
		t.Fatalf("second append returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}

	var records []RunRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("parse run log: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Type != "daily" || records[1].Type != "weekly" {
		t.Fatalf("unexpected order: %s, %s", records[0].Type, records[1].Type)
	}
	if records[0].Date == "" {
		t.Fatal("expected date to be filled in")
	}
	if records[1].Email == nil || records[1].Errors == nil {
		t.Fatal("expected email and errors defaults")
	}
}

func TestAppendRunRecordCap(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run-log.json")

	seed := make([]RunRecord, maxRunRecords)
	for i := range seed {
		seed[i] = RunRecord{Type: "daily", Date: "old"}
	}
	raw, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	if err := AppendRunRecord(path, RunRecord{Type: "weekly", Date: "new"}); err != nil {
		t.Fatalf("AppendRunRecord returned error: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	var records []RunRecord
	if err := json.Unmarshal(out, &records); err != nil {
		t.Fatalf("parse run log: %v", err)
	}
	if len(records) != maxRunRecords {
		t.Fatalf("expected %d records after cap, got %d", maxRunRecords, len(records))
	}
	if last := records[len(records)-1]; last.Date != "new" {
		t.Fatalf("expected newest record kept, got %s", last.Date)
	}
}

func TestAppendRunRecordReplacesCorruptLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run-log.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write corrupt log: %v", err)
	}

	if err := AppendRunRecord(path, RunRecord{Type: "daily"}); err != nil {
		t.Fatalf("AppendRunRecord returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	var records []RunRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("parse run log: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}
