package store

import (
	"fmt"
	"strings"
)

// Scheme returns the backend name encoded in a storage DSN.
func Scheme(dsn string) (string, error) {
	idx := strings.Index(dsn, "://")
	if idx <= 0 {
		return "", fmt.Errorf("storage dsn %q has no scheme", dsn)
	}
	scheme := strings.ToLower(dsn[:idx])
	switch scheme {
	case "memory", "sqlite", "redis", "rediss":
		return scheme, nil
	case "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported storage scheme: %s", scheme)
	}
}
