// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ai

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ProductivityReport correlates email and calendar activity over a period
// into a scored overview with recommendations.
type ProductivityReport struct {
	ID              string           `jsonapi:"primary,productivity-reports"`
	Period          string           `jsonapi:"attr,period"`
	Score           int              `jsonapi:"attr,productivity-score"`
	PeakHours       []string         `jsonapi:"attr,peak-hours"`
	EmailTotal      int              `jsonapi:"attr,email-total"`
	EmailsPerDay    float64          `jsonapi:"attr,emails-per-day"`
	TopSenders      []SenderActivity `jsonapi:"attr,top-senders"`
	EventTotal      int              `jsonapi:"attr,event-total"`
	Meetings        int              `jsonapi:"attr,meetings"`
	Personal        int              `jsonapi:"attr,personal"`
	Insights        []string         `jsonapi:"attr,insights"`
	Recommendations []string         `jsonapi:"attr,recommendations"`
}

// AnalyzeProductivity correlates a batch of emails with a batch of events.
// period is day, week, or month and only affects the per-day figures.
func AnalyzeProductivity(emails []EmailInfo, events []EventInfo, period string) *ProductivityReport {
	report := &ProductivityReport{
		ID:     period,
		Period: period,
	}

	if len(emails) == 0 && len(events) == 0 {
		report.Insights = []string{"No data available for analysis"}
		return report
	}

	hourActivity := map[int]int{}

	// Email side.
	report.EmailTotal = len(emails)
	senders := make([]string, 0, len(emails))
	for _, email := range emails {
		senders = append(senders, email.From)
		if h, ok := emailHour(email.Date); ok {
			hourActivity[h]++
		}
	}
	report.TopSenders = topCounts(senders, 5)
	report.EmailsPerDay = perDay(len(emails), period)

	// Calendar side.
	report.EventTotal = len(events)
	for _, event := range events {
		if !event.Start.IsZero() {
			hourActivity[event.Start.Hour()]++
		}

		title := strings.ToLower(event.Summary)
		switch {
		case containsAny(title, []string{"meeting", "call", "conference", "sync"}):
			report.Meetings++
		case containsAny(title, []string{"birthday", "personal", "holiday"}):
			report.Personal++
		}
	}

	report.PeakHours = peakHours(hourActivity, 3)
	report.Insights = productivityInsights(report)
	report.Score = overallScore(report)
	report.Recommendations = productivityRecommendations(report.Insights)

	return report
}

// emailHour digs an hour out of a Date header or an RFC 3339 stamp. The
// header formats in the wild are too varied to parse strictly, so this only
// commits when it finds an obvious HH: field.
func emailHour(date string) (int, bool) {
	if i := strings.IndexByte(date, 'T'); i >= 0 && len(date) > i+3 {
		if h, err := strconv.Atoi(date[i+1 : i+3]); err == nil && h < 24 {
			return h, true
		}
	}

	for _, field := range strings.Fields(date) {
		if len(field) >= 5 && field[2] == ':' {
			if h, err := strconv.Atoi(field[:2]); err == nil && h < 24 {
				return h, true
			}
		}
	}

	return 0, false
}

func perDay(total int, period string) float64 {
	switch period {
	case "week":
		return round1(float64(total) / 7)
	case "month":
		return round1(float64(total) / 30)
	}
	return float64(total)
}

func peakHours(activity map[int]int, n int) []string {
	type hc struct {
		hour  int
		count int
	}
	ranked := make([]hc, 0, len(activity))
	for h, c := range activity {
		ranked = append(ranked, hc{h, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].hour < ranked[j].hour
	})

	var out []string
	for _, r := range ranked {
		out = append(out, fmt.Sprintf("%d:00", r.hour))
		if len(out) == n {
			break
		}
	}
	return out
}

func productivityInsights(r *ProductivityReport) []string {
	var insights []string

	if r.EmailTotal > 50 {
		insights = append(insights, "High email volume - consider batching responses")
	}
	if len(r.TopSenders) > 0 {
		top := r.TopSenders[0]
		insights = append(insights, fmt.Sprintf("Most communication with %s (%d emails)", top.Sender, top.Count))
	}

	if r.Meetings > 10 {
		insights = append(insights, "Heavy meeting schedule - ensure focus time")
	}
	if r.Personal > 5 {
		insights = append(insights, "Good work-life balance with personal events")
	}

	if len(r.PeakHours) > 0 {
		insights = append(insights, "Peak activity around "+r.PeakHours[0])
	}

	switch {
	case r.EmailTotal > r.EventTotal*5:
		insights = append(insights, "Email-heavy communication pattern")
	case r.EventTotal > r.EmailTotal*2:
		insights = append(insights, "Meeting-heavy schedule")
	default:
		insights = append(insights, "Balanced communication approach")
	}

	return insights
}

func overallScore(r *ProductivityReport) int {
	score := 50

	if r.EmailTotal >= 10 && r.EmailTotal <= 30 {
		score += 10
	} else if r.EmailTotal > 50 {
		score -= 10
	}

	if r.Meetings >= 5 && r.Meetings <= 15 {
		score += 10
	} else if r.Meetings > 20 {
		score -= 15
	}

	if r.Personal > 0 {
		score += 5
	}

	if len(r.PeakHours) > 0 {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func productivityRecommendations(insights []string) []string {
	var recs []string

	text := strings.ToLower(strings.Join(insights, " "))

	if strings.Contains(text, "high email volume") {
		recs = append(recs,
			"Schedule specific email checking times (2-3x per day)",
			"Use email templates for common responses")
	}
	if strings.Contains(text, "heavy meeting schedule") {
		recs = append(recs,
			"Block focus time between meetings",
			"Evaluate if all meetings are necessary")
	}
	if strings.Contains(text, "peak activity") {
		recs = append(recs, "Schedule important tasks during peak hours")
	}
	if strings.Contains(text, "email-heavy") {
		recs = append(recs,
			"Consider more direct communication methods",
			"Use chat or calls for quick discussions")
	}
	if strings.Contains(text, "meeting-heavy") {
		recs = append(recs,
			"Send agendas in advance to reduce meeting time",
			"Consider async updates instead of meetings")
	}

	if len(recs) == 0 {
		recs = append(recs,
			"Maintain current productivity patterns",
			"Continue balancing email and meeting communication")
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
