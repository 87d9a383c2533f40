// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package calendar

import (
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// A Monday morning, before working hours start.
var monday8am = time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)

func testAdvanced(t *testing.T, handler http.Handler) *Advanced {
	t.Helper()

	ca := NewAdvanced(testService(t, handler))
	ca.now = func() time.Time { return monday8am }
	return ca
}

func TestScheduleInsights(t *testing.T) {
	var calls int32
	var query string
	ca := testAdvanced(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "e1", "summary": "Team sync",
					"start": {"dateTime": "2026-03-16T09:00:00Z"},
					"end": {"dateTime": "2026-03-16T10:00:00Z"}},
				{"id": "e2", "summary": "Focus block",
					"start": {"dateTime": "2026-03-17T14:00:00Z"},
					"end": {"dateTime": "2026-03-17T16:00:00Z"}}
			]
		}`))
	}))

	insights, err := ca.ScheduleInsights(ctx, 7)
	assert.NoError(t, err)

	assert.Equal(t, 2, insights.TotalEvents)
	assert.Equal(t, "Monday", insights.BusiestDay)
	assert.Equal(t, 3.0, insights.MeetingHours)
	assert.Equal(t, map[string]int{"meetings": 1, "focus": 1}, insights.MeetingTypes)

	assert.Contains(t, query, "maxResults=100")
	assert.Contains(t, query, "timeMin=2026-03-16T08%3A00%3A00Z")
	assert.Contains(t, query, "timeMax=2026-03-23T08%3A00%3A00Z")

	// Second ask inside the TTL is served from cache.
	_, err = ca.ScheduleInsights(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A different window is a different key.
	_, err = ca.ScheduleInsights(ctx, 14)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAnalytics(t *testing.T) {
	var query string
	ca := testAdvanced(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "e1", "summary": "Standup",
					"start": {"dateTime": "2026-03-02T09:30:00Z"},
					"end": {"dateTime": "2026-03-02T09:45:00Z"},
					"recurringEventId": "r1"}
			]
		}`))
	}))

	analytics, err := ca.Analytics(ctx, 30)
	assert.NoError(t, err)

	assert.Equal(t, 1, analytics.TotalEvents)
	assert.Equal(t, 30, analytics.PeriodDays)
	assert.Equal(t, 1, analytics.RecurringEvents)
	assert.Equal(t, 1, analytics.Categories["meetings"])

	assert.Contains(t, query, "maxResults=500")
	assert.Contains(t, query, "timeMin=2026-02-14T08%3A00%3A00Z")
	assert.Contains(t, query, "timeMax=2026-03-16T08%3A00%3A00Z")
}

func TestOptimalSlots(t *testing.T) {
	// Monday morning is blocked out; Tuesday is wide open.
	ca := testAdvanced(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "e1", "summary": "Workshop",
					"start": {"dateTime": "2026-03-16T09:00:00Z"},
					"end": {"dateTime": "2026-03-16T12:00:00Z"}}
			]
		}`))
	}))

	slots, err := ca.OptimalSlots(ctx, 60, 2)
	assert.NoError(t, err)
	assert.Len(t, slots, 5)

	// Tuesday 9-11 outscore everything else, then Monday mid-afternoon.
	assert.Equal(t, "2026-03-17T09:00:00Z", slots[0].Start)
	assert.Equal(t, "2026-03-17T10:00:00Z", slots[1].Start)
	assert.Equal(t, "2026-03-17T11:00:00Z", slots[2].Start)
	assert.Equal(t, "2026-03-16T14:00:00Z", slots[3].Start)
	assert.Equal(t, "2026-03-16T15:00:00Z", slots[4].Start)

	assert.Equal(t, 1.0, slots[0].Confidence)
	assert.Equal(t, "Tuesday", slots[0].Day)
	assert.InDelta(t, 0.9, slots[3].Confidence, 0.0001)
}

func TestSmartCreate_TakesBestSlot(t *testing.T) {
	var createBody []byte
	var createQuery string
	ca := testAdvanced(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			createBody, _ = io.ReadAll(r.Body)
			createQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"id": "smart1", "summary": "Planning",
				"start": {"dateTime": "2026-03-16T09:00:00Z"},
				"end": {"dateTime": "2026-03-16T10:00:00Z"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"items": []}`))
	}))

	event, err := ca.SmartCreate(ctx, SmartCreateOptions{
		Title:     "Planning",
		Attendees: []string{"a@x.example"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "smart1", event.ID)

	// With an empty calendar the first Monday 9:00 slot wins outright.
	body := string(createBody)
	assert.Contains(t, body, `"dateTime":"2026-03-16T09:00:00Z"`)
	assert.Contains(t, body, "Suggested time slot (confidence 100%)")
	assert.Equal(t, "sendUpdates=all", createQuery)
}

func TestSmartCreate_FallsBackToTomorrowMorning(t *testing.T) {
	var createBody []byte
	ca := testAdvanced(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			createBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"id": "smart2", "summary": "Planning",
				"start": {"dateTime": "2026-03-17T10:00:00Z"},
				"end": {"dateTime": "2026-03-17T10:30:00Z"}}`))
			return
		}
		// One event swallows the whole week; no slot is free.
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "offsite", "summary": "Offsite",
					"start": {"dateTime": "2026-03-16T00:00:00Z"},
					"end": {"dateTime": "2026-03-23T00:00:00Z"}}
			]
		}`))
	}))

	_, err := ca.SmartCreate(ctx, SmartCreateOptions{Title: "Planning", DurationMinutes: 30})
	assert.NoError(t, err)

	body := string(createBody)
	assert.Contains(t, body, `"dateTime":"2026-03-17T10:00:00Z"`)
	assert.Contains(t, body, `"dateTime":"2026-03-17T10:30:00Z"`)
	assert.NotContains(t, body, "Suggested time slot")
}

func TestSmartCreate_ExpiresInsights(t *testing.T) {
	var listCalls int32
	ca := testAdvanced(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id": "smart3", "summary": "Planning",
				"start": {"dateTime": "2026-03-16T09:00:00Z"},
				"end": {"dateTime": "2026-03-16T10:00:00Z"}}`))
			return
		}
		atomic.AddInt32(&listCalls, 1)
		_, _ = w.Write([]byte(`{"items": []}`))
	}))

	_, err := ca.ScheduleInsights(ctx, 7)
	assert.NoError(t, err)
	before := atomic.LoadInt32(&listCalls)

	_, err = ca.SmartCreate(ctx, SmartCreateOptions{Title: "Planning"})
	assert.NoError(t, err)

	// The cached insights were invalidated by the create.
	_, err = ca.ScheduleInsights(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, before+2, atomic.LoadInt32(&listCalls))
}
