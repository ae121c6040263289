//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// Run with a local Redis and MongoDB:
//
//	ARCEVAL_TEST_REDIS_URL=redis://localhost:6379/15 \
//	ARCEVAL_TEST_MONGO_URI=mongodb://localhost:27017 \
//	go test -tags integration ./pkg/cache/

func TestRedisCacheIntegration(t *testing.T) {
	url := os.Getenv("ARCEVAL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ARCEVAL_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestMongoCacheIntegration(t *testing.T) {
	uri := os.Getenv("ARCEVAL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ARCEVAL_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewMongoCache(ctx, uri, "arceval_test", "cache")
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}
