package util

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// OrDefault returns def when s is empty
func OrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// HashKey returns a stable, non-reversible key for client identifiers (safe for logs)
func HashKey(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}
