// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"time"
)

// ServiceCache namespaces one service's operations inside a shared Store.
// Keys take the form "<service>.<operation>:<digest>", which is what lets
// Invalidate target a single operation or a whole service by prefix.
type ServiceCache struct {
	service string
	store   Store
}

func NewServiceCache(service string, store Store) *ServiceCache {
	return &ServiceCache{service: service, store: store}
}

// Name returns the service namespace this cache covers.
func (c *ServiceCache) Name() string {
	return c.service
}

func (c *ServiceCache) Get(ctx context.Context, operation string, args ...any) ([]byte, bool) {
	return c.store.Get(ctx, DeriveKey(c.service+"."+operation, args, nil))
}

func (c *ServiceCache) Set(ctx context.Context, operation string, value []byte, ttl time.Duration, args ...any) {
	c.store.Set(ctx, DeriveKey(c.service+"."+operation, args, nil), value, ttl)
}

// Invalidate drops every cached result for one operation, or for the whole
// service when operation is empty. The prefix is closed with the delimiter
// that follows it in stored keys, so "list" never claims "list_events".
func (c *ServiceCache) Invalidate(ctx context.Context, operation string) int {
	prefix := c.service + "."
	if operation != "" {
		prefix = c.service + "." + operation + ":"
	}
	return c.store.ExpireMatching(ctx, prefix)
}

// Stats reports the underlying store's summary tagged with this service.
func (c *ServiceCache) Stats(ctx context.Context) Summary {
	sum := c.store.Stats(ctx)
	sum.ID = c.service
	sum.Service = c.service
	return sum
}
