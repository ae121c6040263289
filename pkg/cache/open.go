package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string // file
	URL        string // redis, mongo
	Database   string // mongo
	Collection string // mongo
}

// Open creates the backend named by opts.Backend. An empty name selects
// [BackendFile].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileCache(opts.Dir)
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		return NewRedisCache(ctx, opts.URL)
	case BackendMongo:
		return NewMongoCache(ctx, opts.URL, opts.Database, opts.Collection)
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}
