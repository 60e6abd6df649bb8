package env

import "os"

// Get returns the environment variable's value, or fallback when it is
// unset or empty.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
