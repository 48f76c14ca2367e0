// Package env reads the few bootstrap variables consulted before configuration loads.
package env

import "os"

// First returns the first non-empty value among keys, or fallback when none is set.
// Keys are checked in order, so a SECOSHA_ prefixed name can shadow a generic one.
func First(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}
