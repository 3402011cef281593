package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TrendDigest/internal/domain"
)

func TestFilterUnseenSuppressesDuplicates(t *testing.T) {
	t.Parallel()

	store := NewDedupStore(filepath.Join(t.TempDir(), "seen.json"), 30, nil)

	items := []domain.Item{
		&domain.Paper{ID: "2401.00001", Origin: "arxiv"},
		&domain.Paper{ID: "2401.00002", Origin: "arxiv"},
		&domain.Paper{ID: "2401.00001", Origin: "arxiv"},
	}

	unseen := store.FilterUnseen(items)
	if len(unseen) != 2 {
		t.Fatalf("expected 2 unseen items, got %d", len(unseen))
	}

	// A second pass with the same batch finds nothing new.
	if again := store.FilterUnseen(items); len(again) != 0 {
		t.Fatalf("expected 0 on repeat, got %d", len(again))
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	t.Parallel()

	store := NewDedupStore(filepath.Join(t.TempDir(), "seen.json"), 30, nil)

	store.MarkSeen("arxiv:2401.00001")
	store.MarkSeen("arxiv:2401.00001")

	if n := len(store.data["arxiv"]); n != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}
	if !store.IsSeen("arxiv:2401.00001") {
		t.Fatal("expected IsSeen true")
	}
	if store.IsSeen("arxiv:2401.99999") {
		t.Fatal("expected IsSeen false for unknown id")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "seen.json")

	store := NewDedupStore(path, 30, nil)
	store.MarkSeen("arxiv:2401.00001")
	store.MarkSeen("github:release:org/repo:v1.0.0")
	if err := store.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded := NewDedupStore(path, 30, nil)
	if !reloaded.IsSeen("arxiv:2401.00001") {
		t.Fatal("arxiv record lost across reload")
	}
	if !reloaded.IsSeen("github:release:org/repo:v1.0.0") {
		t.Fatal("github record lost across reload")
	}
}

func TestSaveRetentionBoundary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -30)

	store := NewDedupStore(path, 30, nil)
	store.now = func() time.Time { return now }
	store.data["arxiv"] = []SeenRecord{
		{ID: "arxiv:fresh", SeenAt: cutoff.Add(time.Second).Format(time.RFC3339)},
		{ID: "arxiv:exact", SeenAt: cutoff.Format(time.RFC3339)},
		{ID: "arxiv:stale", SeenAt: cutoff.Add(-time.Second).Format(time.RFC3339)},
		{ID: "arxiv:garbled", SeenAt: "not-a-timestamp"},
	}

	if err := store.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	kept := store.data["arxiv"]
	if len(kept) != 1 || kept[0].ID != "arxiv:fresh" {
		t.Fatalf("expected only the fresh record kept, got %+v", kept)
	}
}

func TestCorruptStoreColdStart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := NewDedupStore(path, 30, nil)
	if store.IsSeen("arxiv:anything") {
		t.Fatal("corrupt store should start empty")
	}

	store.MarkSeen("arxiv:2401.00001")
	if err := store.Save(); err != nil {
		t.Fatalf("Save over corrupt file: %v", err)
	}
}

func TestUnknownBucketsCarriedThrough(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")
	now := time.Now().UTC().Format(time.RFC3339)
	seed := map[string][]SeenRecord{
		"hackernews": {{ID: "hackernews:123", SeenAt: now}},
	}
	raw, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	store := NewDedupStore(path, 30, nil)
	store.MarkSeen("arxiv:2401.00001")
	if err := store.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded := NewDedupStore(path, 30, nil)
	if !reloaded.IsSeen("hackernews:123") {
		t.Fatal("unrecognized bucket dropped on save")
	}
}

func TestRetentionDefault(t *testing.T) {
	t.Parallel()

	store := NewDedupStore(filepath.Join(t.TempDir(), "seen.json"), 0, nil)
	if store.retentionDays != 30 {
		t.Fatalf("expected default retention 30, got %d", store.retentionDays)
	}
}
