package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is how long a cached response body stays fresh.
const DefaultTTL = 2 * time.Hour

// Store is a response cache keyed by request URL. Implementations treat a
// stale or unreadable entry as a miss; expired entries are not proactively
// purged on the read path.
type Store interface {
	// Get returns the cached body for url, or ok=false on a miss.
	Get(ctx context.Context, url string) (string, bool)
	// Put stores body under url. Empty bodies are never stored.
	Put(ctx context.Context, url, body string)
	// Invalidate drops the entry for url if present.
	Invalidate(ctx context.Context, url string)
	// Flush drops every entry.
	Flush(ctx context.Context) error
}

// keyReplacer maps the characters that are unsafe in file names. Every
// backend uses the same mapping so that a URL always lands on the same key
// regardless of the backend in use.
var keyReplacer = strings.NewReplacer(
	"<", ".",
	">", ".",
	":", ".",
	`"`, ".",
	"/", ".",
	`\`, ".",
	"|", ".",
	"?", ".",
	"*", ".",
)

// SanitizeKey turns a request URL into a stable cache key.
func SanitizeKey(url string) string {
	return keyReplacer.Replace(url)
}

// Nop is a Store that caches nothing. Useful when a caller wants caching
// off without branching at every call site.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool) { return "", false }
func (Nop) Put(context.Context, string, string)        {}
func (Nop) Invalidate(context.Context, string)         {}
func (Nop) Flush(context.Context) error                { return nil }
