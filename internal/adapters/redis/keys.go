// Package redis provides Redis-based adapters for sessions, authorization records and pending redirects.
package redis

import "strings"

// keyspace builds namespaced Redis keys ("<prefix>:<part>:<part>").
type keyspace string

func (k keyspace) key(parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(string(k), ":"))
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// ErrNotFound is returned when a session is not found.
var ErrNotFound error = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }
