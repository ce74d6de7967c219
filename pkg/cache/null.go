package cache

import (
	"context"
	"time"
)

// NewNullCache returns a Cache that drops writes and always misses. The
// render command falls back to it for --no-cache or when the artifact
// directory cannot be created.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (nullCache) Delete(context.Context, string) error { return nil }

func (nullCache) Close() error { return nil }
