// Package cache stores evaluation results so repeated runs over the same
// inputs skip parsing, validation and evaluation.
//
// # Backends
//
// Every backend implements [Cache]:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [MemoryCache]: an in-process map (server default, tests)
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] selects a backend from [Options].
//
// # Keys
//
// A [Keyer] derives keys from content hashes, never from file names, so
// renaming an input keeps its cache entry and editing it invalidates the
// entry. [ScopedKeyer] prefixes keys for shared backends.
//
// # Retries
//
// Network backends verify their connection on open with [RetryWithBackoff].
// Only errors wrapped with [Retryable] are retried.
package cache
