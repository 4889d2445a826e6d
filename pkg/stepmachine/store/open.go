package store

import (
	"context"
	"fmt"
	"strings"
)

// Open constructs a store by backend name, for config-driven callers.
//
// Supported backends and the meaning of location:
//
//	"file"     location is the file path; empty uses DefaultPath()
//	"memory"   location is ignored
//	"sqlite"   location is "<db-path>#<key>", or just the path with the
//	           key defaulting to "default"
//	"postgres" location is "<dsn>#<key>", or just the DSN with the key
//	           defaulting to "default"
func Open(ctx context.Context, backend, location string) (Store, error) {
	switch strings.ToLower(backend) {
	case "file", "":
		path := location
		if path == "" {
			var err error
			path, err = DefaultPath()
			if err != nil {
				return nil, err
			}
		}
		return NewFileStore(path), nil

	case "memory":
		return NewMemoryStore(), nil

	case "sqlite":
		path, key := splitLocation(location)
		if path == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return NewSQLiteStore(path, key)

	case "postgres":
		dsn, key := splitLocation(location)
		if dsn == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		return NewPostgresStore(ctx, dsn, key)

	default:
		return nil, fmt.Errorf("unknown store backend: %q", backend)
	}
}

// splitLocation separates a "<target>#<key>" location into its parts.
func splitLocation(location string) (target, key string) {
	if i := strings.LastIndex(location, "#"); i >= 0 {
		return location[:i], location[i+1:]
	}
	return location, "default"
}
