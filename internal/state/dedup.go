package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TrendDigest/internal/domain"
)

// SeenRecord is one persisted seen-ID entry inside a source bucket.
type SeenRecord struct {
	ID     string `json:"id"`
	SeenAt string `json:"seen_at"`
}

// DedupStore keeps per-source buckets of seen item IDs with timestamps so the
// same item is never published twice within the retention window.
//
// The store is single-writer: one run loads it, filters against it, and saves
// it once at the end. Buckets it does not recognize are carried through
// untouched so older store files stay readable.
type DedupStore struct {
	path          string
	retentionDays int
	data          map[string][]SeenRecord
	logger        *slog.Logger
	now           func() time.Time
}

// NewDedupStore loads the store at path. A missing or corrupt file is a cold
// start, never an error.
func NewDedupStore(path string, retentionDays int, logger *slog.Logger) *DedupStore {
	if retentionDays <= 0 {
		retentionDays = 30
	}

	s := &DedupStore{
		path:          path,
		retentionDays: retentionDays,
		data:          map[string][]SeenRecord{},
		logger:        logger,
		now:           time.Now,
	}
	s.load()
	return s
}

func (s *DedupStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("cannot read dedup store, starting fresh", "path", s.path, "error", err)
		}
		return
	}

	var data map[string][]SeenRecord
	if err := json.Unmarshal(raw, &data); err != nil {
		s.warn("corrupt dedup store, starting fresh", "path", s.path, "error", err)
		return
	}

	s.data = data
	if s.data == nil {
		s.data = map[string][]SeenRecord{}
	}
}

// Save prunes expired records and persists the store. Pruning on every save
// keeps the file from growing without bound.
func (s *DedupStore) Save() error {
	s.prune()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dedup store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dedup store dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write dedup store: %w", err)
	}

	return nil
}

func (s *DedupStore) prune() {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)

	for bucket, records := range s.data {
		kept := records[:0]
		for _, rec := range records {
			seenAt, err := time.Parse(time.RFC3339, rec.SeenAt)
			if err != nil || !seenAt.After(cutoff) {
				continue
			}
			kept = append(kept, rec)
		}
		if pruned := len(records) - len(kept); pruned > 0 {
			s.debug("pruned expired records", "bucket", bucket, "count", pruned)
		}
		s.data[bucket] = kept
	}
}

// IsSeen reports whether uniqueID is already recorded in its bucket.
func (s *DedupStore) IsSeen(uniqueID string) bool {
	for _, rec := range s.data[bucketOf(uniqueID)] {
		if rec.ID == uniqueID {
			return true
		}
	}
	return false
}

// MarkSeen records uniqueID with the current UTC timestamp. Marking an
// already-seen ID is a no-op.
func (s *DedupStore) MarkSeen(uniqueID string) {
	if s.IsSeen(uniqueID) {
		return
	}

	bucket := bucketOf(uniqueID)
	s.data[bucket] = append(s.data[bucket], SeenRecord{
		ID:     uniqueID,
		SeenAt: s.now().UTC().Format(time.RFC3339),
	})
}

// FilterUnseen returns only items not seen before and marks them seen as it
// goes, so a duplicate ID later in the same batch is suppressed too.
func (s *DedupStore) FilterUnseen(items []domain.Item) []domain.Item {
	unseen := make([]domain.Item, 0, len(items))
	for _, item := range items {
		uid := item.UniqueID()
		if s.IsSeen(uid) {
			continue
		}
		s.MarkSeen(uid)
		unseen = append(unseen, item)
	}

	s.debug("dedup filter", "in", len(items), "unseen", len(unseen))
	return unseen
}

func bucketOf(uniqueID string) string {
	if idx := strings.Index(uniqueID, ":"); idx >= 0 {
		return uniqueID[:idx]
	}
	return uniqueID
}

func (s *DedupStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *DedupStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
