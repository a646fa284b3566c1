package env

import (
	"os"
	"strings"
)

// Get reads key from the environment, falling back when the variable is
// unset or blank.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return fallback
}
