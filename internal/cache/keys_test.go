// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	args := []any{"primary", 10}
	kwargs := map[string]any{"show_declined": false, "timezone": "UTC"}

	k1 := DeriveKey("calendar.list_events", args, kwargs)
	k2 := DeriveKey("calendar.list_events", args, kwargs)
	assert.Equal(t, k1, k2)

	// Map insertion order must not leak into the key.
	reordered := map[string]any{"timezone": "UTC", "show_declined": false}
	k3 := DeriveKey("calendar.list_events", args, reordered)
	assert.Equal(t, k1, k3)
}

func TestDeriveKey_Shape(t *testing.T) {
	key := DeriveKey("gmail.list_messages", []any{"is:unread", 25}, nil)

	assert.True(t, strings.HasPrefix(key, "gmail.list_messages:"))
	digest := strings.TrimPrefix(key, "gmail.list_messages:")
	assert.Len(t, digest, 32)
	assert.NotContains(t, digest, ":")
}

func TestDeriveKey_Sensitivity(t *testing.T) {
	base := DeriveKey("calendar.list_events", []any{"primary", 10}, map[string]any{"tz": "UTC"})

	tests := []struct {
		name   string
		prefix string
		args   []any
		kwargs map[string]any
	}{
		{
			name:   "different positional arg",
			prefix: "calendar.list_events",
			args:   []any{"primary", 20},
			kwargs: map[string]any{"tz": "UTC"},
		},
		{
			name:   "different kwarg value",
			prefix: "calendar.list_events",
			args:   []any{"primary", 10},
			kwargs: map[string]any{"tz": "America/New_York"},
		},
		{
			name:   "extra kwarg",
			prefix: "calendar.list_events",
			args:   []any{"primary", 10},
			kwargs: map[string]any{"tz": "UTC", "q": "standup"},
		},
		{
			name:   "different prefix",
			prefix: "calendar.get_event",
			args:   []any{"primary", 10},
			kwargs: map[string]any{"tz": "UTC"},
		},
		{
			name:   "no arguments at all",
			prefix: "calendar.list_events",
			args:   nil,
			kwargs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, DeriveKey(tt.prefix, tt.args, tt.kwargs))
		})
	}
}

func TestDeriveKey_StringAndIntArgsDiffer(t *testing.T) {
	// "10" the string and 10 the number are different invocations.
	k1 := DeriveKey("sheets.read_range", []any{"10"}, nil)
	k2 := DeriveKey("sheets.read_range", []any{10}, nil)
	assert.NotEqual(t, k1, k2)
}

func TestDeriveKey_UnmarshalableArgFallsBack(t *testing.T) {
	// A func can't be JSON-encoded; the printed form stands in so the
	// derivation never fails outright.
	assert.NotPanics(t, func() {
		key := DeriveKey("x.y", []any{func() {}}, nil)
		assert.True(t, strings.HasPrefix(key, "x.y:"))
	})
}
