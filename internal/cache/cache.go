// Package cache holds short-lived upstream payloads so repeated requests do
// not hit rate-limited market APIs.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long an entry stays readable after it was stored.
const DefaultTTL = 300_000 * time.Millisecond

// Cache stores opaque payloads by key. A miss and an expired entry look the
// same to callers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}
