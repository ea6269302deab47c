package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Camalot9/picasaweb-go/internal/logger"
)

// FileStore caches response bodies as files under a single directory, one
// file per URL. Freshness is judged from the file's modification time, so
// the store survives process restarts with no index to maintain.
//
// The store is fail-soft: the first filesystem error disables it for the
// rest of its lifetime and is logged once as a warning. A disabled store
// behaves like Nop, it never turns an unwritable disk into a request error.
type FileStore struct {
	dir     string
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time
	enabled bool
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) FileOption {
	return func(s *FileStore) { s.ttl = ttl }
}

// WithLogger sets the logger used for the disable warning.
func WithLogger(log logger.Logger) FileOption {
	return func(s *FileStore) { s.log = log }
}

// WithClock injects the time source. Tests use it to age entries without
// sleeping.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) { s.now = now }
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// created on first write, not here.
func NewFileStore(dir string, opts ...FileOption) *FileStore {
	s := &FileStore{
		dir:     dir,
		ttl:     DefaultTTL,
		log:     logger.Nop(),
		now:     time.Now,
		enabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether the store is still accepting reads and writes.
func (s *FileStore) Enabled() bool { return s.enabled }

func (s *FileStore) path(url string) string {
	return filepath.Join(s.dir, SanitizeKey(url))
}

// Get returns the cached body for url. Entries older than the TTL are
// misses but stay on disk until a write overwrites them or the janitor
// sweeps them.
func (s *FileStore) Get(_ context.Context, url string) (string, bool) {
	if !s.enabled {
		return "", false
	}
	path := s.path(url)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if s.now().Sub(info.ModTime()) > s.ttl {
		return "", false
	}
	body, err := os.ReadFile(path)
	if err != nil {
		s.disable(err)
		return "", false
	}
	return string(body), true
}

// Put stores body under url. Empty bodies are skipped so that a failed
// fetch can never mask a previously cached good response.
func (s *FileStore) Put(_ context.Context, url, body string) {
	if !s.enabled || body == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.disable(err)
		return
	}
	if err := os.WriteFile(s.path(url), []byte(body), 0o644); err != nil {
		s.disable(err)
	}
}

// Invalidate removes the entry for url. A missing entry is not an error.
func (s *FileStore) Invalidate(_ context.Context, url string) {
	if !s.enabled {
		return
	}
	_ = os.Remove(s.path(url))
}

// Flush removes every cached entry.
func (s *FileStore) Flush(_ context.Context) error {
	if !s.enabled {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Sweep deletes entries past their TTL and returns how many were removed.
// The read path never deletes, so this is the only reclaim mechanism.
func (s *FileStore) Sweep(_ context.Context) (int, error) {
	if !s.enabled {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	cutoff := s.now().Add(-s.ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *FileStore) disable(err error) {
	s.enabled = false
	s.log.Warn("response cache disabled after filesystem error",
		logger.String("dir", s.dir),
		logger.Error(err))
}
