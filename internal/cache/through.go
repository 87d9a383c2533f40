// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/apex/log"
)

// Through is the read-through path the service layer funnels every cacheable
// call into. On a hit the stored JSON is decoded and returned without running
// compute. On a miss compute runs, and its result is cached for ttl before
// being returned. A compute error is returned as-is and nothing is cached.
func Through[T any](ctx context.Context, sc *ServiceCache, operation string, ttl time.Duration, compute func() (T, error), args ...any) (T, error) {
	key := DeriveKey(sc.service+"."+operation, args, nil)

	if raw, ok := sc.store.Get(ctx, key); ok {
		var out T
		err := json.Unmarshal(raw, &out)
		if err == nil {
			return out, nil
		}
		// The entry no longer decodes into the caller's type, most likely
		// written by an older build. Drop it and recompute.
		log.WithError(err).Warnf("discarding undecodable cache entry for %s.%s", sc.service, operation)
		sc.store.Delete(ctx, key)
	}

	out, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	if raw, err := json.Marshal(out); err == nil {
		sc.store.Set(ctx, key, raw, ttl)
	} else {
		log.WithError(err).Warnf("failed to encode %s.%s result for cache", sc.service, operation)
	}

	return out, nil
}
