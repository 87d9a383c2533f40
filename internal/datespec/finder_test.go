// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package datespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var clock = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	midnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		spec string
		want time.Time
	}{
		{"today", "today", midnight},
		{"today upper", "TODAY", midnight},
		{"empty", "", midnight},
		{"tomorrow", "tomorrow", midnight.AddDate(0, 0, 1)},
		{"yesterday", "yesterday", midnight.AddDate(0, 0, -1)},
		{"plus seven", "+7", midnight.AddDate(0, 0, 7)},
		{"minus thirty", "-30", midnight.AddDate(0, 0, -30)},
		{"date only", "2026-04-01", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"date and time", "2026-04-01 09:30", time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)},
		{"t separator", "2026-04-01T09:30", time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)},
		{"rfc3339", "2026-04-01T09:30:00Z", time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)},
		{"padded", "  tomorrow  ", midnight.AddDate(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(clock, tt.spec)
			assert.NoError(t, err)
			assert.Len(t, got, 1)
			assert.True(t, tt.want.Equal(got[0]), "got %s", got[0])
		})
	}
}

func TestResolve_NoSpecsMeansToday(t *testing.T) {
	got, err := Resolve(clock)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got[0])
}

func TestResolve_MultipleSpecs(t *testing.T) {
	got, err := Resolve(clock, "today", "+7")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, got[1].After(got[0]))
}

func TestResolve_Garbage(t *testing.T) {
	_, err := Resolve(clock, "next blursday")
	assert.ErrorContains(t, err, "next blursday")
}

func TestWindow(t *testing.T) {
	lo, hi, err := Window(clock, "today", "", 7)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), lo)
	assert.Equal(t, time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC), hi)
}

func TestWindow_ExplicitEnd(t *testing.T) {
	lo, hi, err := Window(clock, "2026-03-01", "2026-03-10", 7)
	assert.NoError(t, err)
	assert.Equal(t, 9, int(hi.Sub(lo).Hours()/24))
}

func TestWindow_EndBeforeStart(t *testing.T) {
	_, _, err := Window(clock, "tomorrow", "yesterday", 7)
	assert.ErrorContains(t, err, "is not after")
}
