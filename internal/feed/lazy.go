package feed

import "context"

// Lazy is a field that is either resolved to a value or resolvable through
// a fetch callback captured at construction. Once resolved the value never
// changes and the callback is never invoked again.
type Lazy[T any] struct {
	fetch    func(ctx context.Context) (T, error)
	value    T
	resolved bool
}

// NewLazy returns an unresolved Lazy backed by fetch.
func NewLazy[T any](fetch func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{fetch: fetch}
}

// Resolved returns a Lazy already holding v.
func Resolved[T any](v T) *Lazy[T] {
	return &Lazy[T]{value: v, resolved: true}
}

// IsResolved reports whether the value is available without fetching.
func (l *Lazy[T]) IsResolved() bool {
	return l != nil && l.resolved
}

// Resolve returns the value, invoking the fetch callback on first access.
// A nil Lazy, or an unresolved one with no callback, yields the zero value.
// A fetch error leaves the field unresolved so the next access retries.
func (l *Lazy[T]) Resolve(ctx context.Context) (T, error) {
	var zero T
	if l == nil {
		return zero, nil
	}
	if l.resolved {
		return l.value, nil
	}
	if l.fetch == nil {
		return zero, nil
	}
	v, err := l.fetch(ctx)
	if err != nil {
		return zero, err
	}
	l.value = v
	l.resolved = true
	return l.value, nil
}
