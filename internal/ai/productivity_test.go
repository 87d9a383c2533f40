// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeProductivity_Empty(t *testing.T) {
	r := AnalyzeProductivity(nil, nil, "week")

	assert.Equal(t, "week", r.Period)
	assert.Zero(t, r.Score)
	assert.Equal(t, []string{"No data available for analysis"}, r.Insights)
}

func TestAnalyzeProductivity(t *testing.T) {
	email := func(from, date string) EmailInfo {
		return EmailInfo{From: from, Date: date}
	}

	var emails []EmailInfo
	for i := 0; i < 6; i++ {
		emails = append(emails, email("alice@x.example", fmt.Sprintf("2026-03-16T09:%02d:00Z", i)))
	}
	for i := 0; i < 4; i++ {
		emails = append(emails, email("bob@x.example", fmt.Sprintf("2026-03-16T14:%02d:00Z", i)))
	}
	emails = append(emails,
		email("carol@x.example", "2026-03-16T10:00:00Z"),
		email("carol@x.example", "2026-03-17T10:30:00Z"))

	var events []EventInfo
	for day := 16; day < 22; day++ {
		events = append(events, event("Team meeting", at(day, 11), 1))
	}
	events = append(events, event("Birthday dinner", at(21, 19), 2))

	r := AnalyzeProductivity(emails, events, "week")

	assert.Equal(t, 12, r.EmailTotal)
	assert.Equal(t, 1.7, r.EmailsPerDay)
	assert.Equal(t, 7, r.EventTotal)
	assert.Equal(t, 6, r.Meetings)
	assert.Equal(t, 1, r.Personal)

	assert.Equal(t, SenderActivity{Sender: "alice@x.example", Count: 6}, r.TopSenders[0])

	// Emails at 9:00 and meetings at 11:00 tie; earlier hour wins.
	assert.Equal(t, []string{"9:00", "11:00", "14:00"}, r.PeakHours)

	assert.Contains(t, r.Insights, "Most communication with alice@x.example (6 emails)")
	assert.Contains(t, r.Insights, "Peak activity around 9:00")
	assert.Contains(t, r.Insights, "Balanced communication approach")

	assert.Equal(t, 80, r.Score)
	assert.Equal(t, []string{"Schedule important tasks during peak hours"}, r.Recommendations)
}

func TestAnalyzeProductivity_EmailHeavy(t *testing.T) {
	var emails []EmailInfo
	for i := 0; i < 60; i++ {
		emails = append(emails, EmailInfo{From: "list@x.example", Date: "2026-03-16T08:00:00Z"})
	}

	r := AnalyzeProductivity(emails, nil, "day")

	assert.Contains(t, r.Insights, "High email volume - consider batching responses")
	assert.Contains(t, r.Insights, "Email-heavy communication pattern")
	assert.Contains(t, r.Recommendations, "Schedule specific email checking times (2-3x per day)")
	assert.Contains(t, r.Recommendations, "Consider more direct communication methods")
}

func TestEmailHour(t *testing.T) {
	tests := []struct {
		date string
		hour int
		ok   bool
	}{
		{"2026-03-16T14:05:00Z", 14, true},
		{"Mon, 16 Mar 2026 09:15:22 +0000", 9, true},
		{"not a date", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			h, ok := emailHour(tt.date)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.hour, h)
			}
		})
	}
}

func TestPerDay(t *testing.T) {
	assert.Equal(t, 14.0, perDay(14, "day"))
	assert.Equal(t, 2.0, perDay(14, "week"))
	assert.Equal(t, 1.0, perDay(30, "month"))
}
