package cache

import "fmt"

// SnapshotKey holds the last good snapshot fetched from a job source.
func SnapshotKey(source string) string {
	return fmt.Sprintf("snapshot:%s", source)
}

// RateLimitKey counts one API key's requests against one route pattern.
func RateLimitKey(keyPrefix, route string) string {
	return fmt.Sprintf("ratelimit:%s:%s", keyPrefix, route)
}
