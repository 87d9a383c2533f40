// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceCache_RoundTripPerArgs(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("calendar", st)

	sc.Set(ctx, "get_event", []byte("alpha"), 0, "primary", "e1")
	sc.Set(ctx, "get_event", []byte("bravo"), 0, "primary", "e2")

	got, ok := sc.Get(ctx, "get_event", "primary", "e1")
	assert.True(t, ok)
	assert.Equal(t, []byte("alpha"), got)

	got, ok = sc.Get(ctx, "get_event", "primary", "e2")
	assert.True(t, ok)
	assert.Equal(t, []byte("bravo"), got)

	_, ok = sc.Get(ctx, "get_event", "primary", "e3")
	assert.False(t, ok)
}

func TestServiceCache_NamespaceIsolation(t *testing.T) {
	st, _ := newTestStore(t)
	calendar := NewServiceCache("calendar", st)
	gmail := NewServiceCache("gmail", st)

	calendar.Set(ctx, "list", []byte("events"), 0, 10)
	gmail.Set(ctx, "list", []byte("messages"), 0, 10)

	// Same operation and args, different service, different entry.
	got, ok := calendar.Get(ctx, "list", 10)
	assert.True(t, ok)
	assert.Equal(t, []byte("events"), got)

	got, ok = gmail.Get(ctx, "list", 10)
	assert.True(t, ok)
	assert.Equal(t, []byte("messages"), got)

	// Flushing calendar leaves gmail alone.
	assert.Equal(t, 1, calendar.Invalidate(ctx, "list"))

	_, ok = calendar.Get(ctx, "list", 10)
	assert.False(t, ok)
	_, ok = gmail.Get(ctx, "list", 10)
	assert.True(t, ok)
}

func TestServiceCache_InvalidateOperationBoundary(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("calendar", st)

	sc.Set(ctx, "list", []byte("a"), 0)
	sc.Set(ctx, "list_events", []byte("b"), 0)

	// "list" must not swallow "list_events".
	assert.Equal(t, 1, sc.Invalidate(ctx, "list"))

	_, ok := sc.Get(ctx, "list")
	assert.False(t, ok)
	_, ok = sc.Get(ctx, "list_events")
	assert.True(t, ok)
}

func TestServiceCache_InvalidateWholeService(t *testing.T) {
	st, _ := newTestStore(t)
	calendar := NewServiceCache("calendar", st)
	docs := NewServiceCache("docs", st)

	calendar.Set(ctx, "list_events", []byte("a"), 0)
	calendar.Set(ctx, "get_event", []byte("b"), 0, "e1")
	docs.Set(ctx, "list_documents", []byte("c"), 0)

	assert.Equal(t, 2, calendar.Invalidate(ctx, ""))

	_, ok := docs.Get(ctx, "list_documents")
	assert.True(t, ok)
}

func TestServiceCache_MultipleArgsShapeKeys(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("sheets", st)

	sc.Set(ctx, "read_range", []byte("grid"), 0, "sheet-1", "A1:B2")

	tests := []struct {
		name string
		args []any
		want bool
	}{
		{"exact args hit", []any{"sheet-1", "A1:B2"}, true},
		{"different range misses", []any{"sheet-1", "A1:C3"}, false},
		{"different sheet misses", []any{"sheet-2", "A1:B2"}, false},
		{"dropped arg misses", []any{"sheet-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := sc.Get(ctx, "read_range", tt.args...)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestServiceCache_StatsCarryServiceName(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("gmail", st)

	sc.Set(ctx, "list_messages", []byte("x"), time.Minute)

	sum := sc.Stats(ctx)
	assert.Equal(t, "gmail", sum.ID)
	assert.Equal(t, "gmail", sum.Service)
	assert.EqualValues(t, 1, sum.Sets)
}

func TestServiceCache_Name(t *testing.T) {
	sc := NewServiceCache("docs", NullStore{})
	assert.Equal(t, "docs", sc.Name())
}
