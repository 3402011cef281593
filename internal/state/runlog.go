package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Keep only the newest run records so the log file stays bounded.
const maxRunRecords = 200

// RunRecord summarizes one pipeline run for auditing.
type RunRecord struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Collected   map[string]int  `json:"collected"`
	AfterDedup  map[string]int  `json:"after_dedup"`
	AfterFilter map[string]int  `json:"after_filter"`
	IssueURL    string          `json:"issue_url"`
	Email       map[string]bool `json:"email"`
	Errors      []string        `json:"errors"`
}

// AppendRunRecord appends a record to the JSON run log at path, creating the
// file if needed and dropping the oldest entries past the cap. An unreadable
// existing log is replaced rather than treated as fatal.
func AppendRunRecord(path string, rec RunRecord) error {
	if rec.Date == "" {
		rec.Date = time.Now().UTC().Format(time.RFC3339)
	}
	if rec.Email == nil {
		rec.Email = map[string]bool{"en": false, "cn": false}
	}
	if rec.Errors == nil {
		rec.Errors = []string{}
	}

	var records []RunRecord
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, &records)
	}

	records = append(records, rec)
	if len(records) > maxRunRecords {
		records = records[len(records)-maxRunRecords:]
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run log: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create run log dir: %w", err)
		}
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}

	return nil
}
