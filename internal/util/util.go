// Package util holds small helpers shared across the swarm engine: canonical
// JSON serialization for cache keys and payload bounding primitives.
package util

import "encoding/json"

// MarshalCanonical serializes v into the canonical byte form used for cache
// key digests. Object keys are emitted in sorted order (encoding/json sorts
// map keys) while arrays keep their semantic order, so two payloads that
// differ only in field ordering digest identically.
func MarshalCanonical(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Truncate shortens s to at most n runes, appending an ellipsis marker when
// truncation occurred. n <= 0 returns the empty string.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Head returns the first n elements of s, or s itself when shorter. The
// returned slice aliases s; callers must not mutate it.
func Head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}
