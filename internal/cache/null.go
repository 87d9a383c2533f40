// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"time"
)

// NullStore is the cache when caching is off: every read misses and every
// write vanishes. Handing this to callers instead of a nil Store keeps the
// service layer free of enabled/disabled branches.
type NullStore struct{}

var _ Store = NullStore{}

func (NullStore) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NullStore) Set(context.Context, string, []byte, time.Duration) {}

func (NullStore) Delete(context.Context, string) bool { return false }

func (NullStore) Clear(context.Context) bool { return true }

func (NullStore) ExpireMatching(context.Context, string) int { return 0 }

func (NullStore) Vacuum(context.Context) bool { return true }

func (NullStore) Stats(context.Context) Summary { return Summary{ID: "cache"} }

func (NullStore) Close() error { return nil }
