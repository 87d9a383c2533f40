// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeEvent struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

func TestThrough_ComputesOnceThenServesFromCache(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("calendar", st)

	calls := 0
	compute := func() ([]fakeEvent, error) {
		calls++
		return []fakeEvent{{ID: "e1", Summary: "standup"}}, nil
	}

	first, err := Through(ctx, sc, "list_events", time.Minute, compute, "primary", 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	second, err := Through(ctx, sc, "list_events", time.Minute, compute, "primary", 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls, "second call must be served from cache")
	assert.Equal(t, first, second)
}

func TestThrough_DistinctArgsComputeSeparately(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("calendar", st)

	calls := 0
	compute := func() ([]fakeEvent, error) {
		calls++
		return nil, nil
	}

	_, _ = Through(ctx, sc, "list_events", time.Minute, compute, "primary", 10)
	_, _ = Through(ctx, sc, "list_events", time.Minute, compute, "primary", 20)
	assert.Equal(t, 2, calls)
}

func TestThrough_DisabledComputesEveryTime(t *testing.T) {
	sc := NewServiceCache("calendar", NullStore{})

	calls := 0
	compute := func() (string, error) {
		calls++
		return "fresh", nil
	}

	for range 3 {
		got, err := Through(ctx, sc, "list_events", time.Minute, compute)
		assert.NoError(t, err)
		assert.Equal(t, "fresh", got)
	}
	assert.Equal(t, 3, calls, "a disabled cache is a transparent pass-through")
}

func TestThrough_ComputeErrorNotCached(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("gmail", st)

	boom := errors.New("rate limited")
	calls := 0
	compute := func() (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}

	_, err := Through(ctx, sc, "list_messages", time.Minute, compute)
	assert.ErrorIs(t, err, boom)

	// The failure must not have poisoned the cache.
	got, err := Through(ctx, sc, "list_messages", time.Minute, compute)
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestThrough_ExpiredEntryRecomputes(t *testing.T) {
	st, now := newTestStore(t)
	sc := NewServiceCache("calendar", st)

	calls := 0
	compute := func() (int, error) {
		calls++
		return calls, nil
	}

	got, _ := Through(ctx, sc, "list_events", 180*time.Second, compute)
	assert.Equal(t, 1, got)

	*now = now.Add(181 * time.Second)

	got, _ = Through(ctx, sc, "list_events", 180*time.Second, compute)
	assert.Equal(t, 2, got, "expired entry must trigger a recompute")
}

func TestThrough_DropsUndecodableEntry(t *testing.T) {
	st, _ := newTestStore(t)
	sc := NewServiceCache("calendar", st)

	// Seed the exact key with bytes that will not decode into an int.
	key := DeriveKey("calendar.list_events", []any{"primary"}, nil)
	st.Set(ctx, key, []byte(`{"shape":"wrong"}`), time.Hour)

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	got, err := Through(ctx, sc, "list_events", time.Minute, compute, "primary")
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)

	// The garbage was replaced, so the next call hits.
	got, err = Through(ctx, sc, "list_events", time.Minute, compute, "primary")
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}
