// Package envkit centralises process-environment access: dotenv
// bootstrapping and lookup helpers used by the configuration layer.
package envkit

import (
	"os"
	"strings"
)

// Lookup returns the trimmed value of the named environment variable.
// A variable that is set but blank counts as absent.
func Lookup(name string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return "", false
	}
	return val, true
}

// Missing reports which of the given environment variables are absent or
// empty, preserving the order in which they were requested.
func Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	if _, err := os.Stat(p); err == nil {
		return true
	}
	return false
}
