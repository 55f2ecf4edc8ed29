// Package cache provides the content-addressed file store that maps a
// canonical stage input to a previously computed structured result.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/canon"
)

// Cache types partition entries per stage so identical underlying text
// never collides across unrelated stages.
const (
	TypeResume             = "resume"
	TypeJobDescription     = "job_description"
	TypeSemanticMatches    = "semantic_matches"
	TypeKeywordGaps        = "keyword_gaps"
	TypeTailoredExperience = "tailored_experience"
	TypeTailoredProject    = "tailored_project"
	TypeTailoredSkills     = "tailored_skills"
	TypeCoverLetter        = "cover_letter"
)

// Store is a content-addressed key-value store holding one JSON document
// per entry on durable local storage. Entries are created on first miss,
// read on every subsequent call with identical inputs, never updated in
// place and never expired.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore creates the cache directory if needed and returns a Store
// rooted there.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// entryPath returns the file path for a cache type and canonical string:
// {cache_type}_{digest}.json under the store root.
func (s *Store) entryPath(cacheType, canonical string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", cacheType, canon.Digest(canonical)))
}

// Get returns the stored document for the canonical input, or ok=false on
// a miss. A corrupt entry is logged and treated as a miss, never as an
// error: the caller simply recomputes.
func (s *Store) Get(cacheType, canonical string) (json.RawMessage, bool) {
	path := s.entryPath(cacheType, canonical)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to read cache entry, treating as miss",
				zap.String("path", path), zap.Error(err))
		}
		return nil, false
	}

	if !json.Valid(data) {
		s.log.Warn("corrupt cache entry, treating as miss", zap.String("path", path))
		return nil, false
	}

	s.log.Debug("cache hit", zap.String("cache_type", cacheType), zap.String("path", path))
	return json.RawMessage(data), true
}

// Put stores a document for the canonical input. Writes are best-effort:
// a failure is logged and swallowed because losing a cache write must not
// abort an otherwise-successful pipeline run. Concurrent writers to the
// same key are not coordinated; the last writer wins, which is acceptable
// since identical keys imply value-equivalent documents.
func (s *Store) Put(cacheType, canonical string, document any) {
	path := s.entryPath(cacheType, canonical)

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		s.log.Warn("failed to encode cache entry, discarding",
			zap.String("path", path), zap.Error(err))
		return
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Warn("failed to write cache entry, discarding",
			zap.String("path", path), zap.Error(err))
		return
	}

	s.log.Debug("cache write", zap.String("cache_type", cacheType), zap.String("path", path))
}

// MostRecent scans all entries of a cache type and returns the most
// recently modified document. The standalone render path uses this to
// discover the latest resume structuring without an index file.
func (s *Store) MostRecent(cacheType string) (json.RawMessage, error) {
	pattern := filepath.Join(s.dir, cacheType+"_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache for %s entries: %w", cacheType, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no cached %s entries found in %s", cacheType, s.dir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil || !json.Valid(data) {
			s.log.Warn("skipping unreadable cache entry", zap.String("path", path))
			continue
		}
		return json.RawMessage(data), nil
	}

	return nil, fmt.Errorf("no readable %s entries found in %s", cacheType, s.dir)
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// WriteDocument stores an arbitrary named JSON document under the store
// root (e.g. the final tailored resume consumed by the render command).
func (s *Store) WriteDocument(name string, document any) error {
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("document name must not contain path separators: %q", name)
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}
	return nil
}

// ReadDocument loads a named JSON document previously written with
// WriteDocument.
func (s *Store) ReadDocument(name string) (json.RawMessage, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("document %s is not valid JSON", name)
	}
	return json.RawMessage(data), nil
}
