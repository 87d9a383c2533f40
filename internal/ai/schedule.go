// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ai

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// EventInfo is the slice of a calendar event the analyzers need.
type EventInfo struct {
	Summary   string    `json:"summary"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Recurring bool      `json:"recurring"`
	Attendees int       `json:"attendees"`
}

// ScheduleInsights is the forward-looking read of a calendar window:
// where the load sits, how much focus time is left, and what to do about it.
type ScheduleInsights struct {
	ID               string         `jsonapi:"primary,schedule-insights"`
	TotalEvents      int            `jsonapi:"attr,total-events"`
	BusiestDay       string         `jsonapi:"attr,busiest-day"`
	PeakHour         int            `jsonapi:"attr,peak-hour"`
	MeetingDensity   float64        `jsonapi:"attr,meeting-density"`
	MeetingHours     float64        `jsonapi:"attr,total-meeting-hours"`
	FocusTime        float64        `jsonapi:"attr,focus-time-available"`
	MeetingTypes     map[string]int `jsonapi:"attr,meeting-types"`
	DayDistribution  map[string]int `jsonapi:"attr,day-distribution"`
	HourDistribution map[int]int    `jsonapi:"attr,hour-distribution"`
	Recommendations  []string       `jsonapi:"attr,recommendations"`
}

// AnalyzeSchedule inspects the events of the next days-sized window.
func AnalyzeSchedule(events []EventInfo, days int) *ScheduleInsights {
	id := fmt.Sprintf("next-%dd", days)

	if len(events) == 0 {
		return &ScheduleInsights{
			ID:              id,
			PeakHour:        -1,
			Recommendations: []string{"No events found in the specified period"},
		}
	}

	dayCounts := map[string]int{}
	hourCounts := map[int]int{}
	meetingTypes := map[string]int{}
	totalDuration := 0.0

	for _, event := range events {
		if !event.Start.IsZero() {
			dayCounts[event.Start.Weekday().String()]++
			hourCounts[event.Start.Hour()]++
		}

		summary := strings.ToLower(event.Summary)
		switch {
		case containsAny(summary, []string{"meeting", "call", "sync"}):
			meetingTypes["meetings"]++
		case containsAny(summary, []string{"focus", "work", "deep"}):
			meetingTypes["focus"]++
		default:
			meetingTypes["other"]++
		}

		if !event.Start.IsZero() && !event.End.IsZero() {
			totalDuration += event.End.Sub(event.Start).Hours()
		}
	}

	density := float64(len(events)) / float64(days)
	focusTime := math.Max(0, 8*float64(days)-totalDuration)

	return &ScheduleInsights{
		ID:               id,
		TotalEvents:      len(events),
		BusiestDay:       maxDayKey(dayCounts),
		PeakHour:         maxHourKey(hourCounts),
		MeetingDensity:   round1(density),
		MeetingHours:     round1(totalDuration),
		FocusTime:        round1(focusTime),
		MeetingTypes:     meetingTypes,
		DayDistribution:  dayCounts,
		HourDistribution: hourCounts,
		Recommendations:  scheduleRecommendations(dayCounts, meetingTypes, density, focusTime),
	}
}

func scheduleRecommendations(dayCounts map[string]int, meetingTypes map[string]int, density, focusTime float64) []string {
	var recs []string

	if density > 8 {
		recs = append(recs, "High meeting density. Consider blocking focus time.")
	} else if density < 3 {
		recs = append(recs, "Low meeting density - good for deep work.")
	}

	if focusTime < 10 {
		recs = append(recs, "Limited focus time available. Schedule deep work blocks.")
	} else if focusTime > 30 {
		recs = append(recs, "Excellent focus time availability.")
	}

	if meetingTypes["meetings"] > meetingTypes["focus"]*3 {
		recs = append(recs, "Consider balancing meetings with focus blocks.")
	}

	if len(dayCounts) > 0 {
		maxDay, sum := 0, 0
		for _, c := range dayCounts {
			sum += c
			if c > maxDay {
				maxDay = c
			}
		}
		avg := float64(sum) / float64(len(dayCounts))
		if float64(maxDay) > avg*2 {
			recs = append(recs, fmt.Sprintf("%s is overloaded - consider moving some events.", maxDayKey(dayCounts)))
		}
	}

	recs = append(recs,
		"Schedule important tasks during your peak hours",
		"Use the optimal-slot finder to place new meetings",
		"Regular calendar reviews improve productivity")

	if len(recs) > 6 {
		recs = recs[:6]
	}
	return recs
}

// CalendarAnalytics is the backward-looking read of a calendar period.
type CalendarAnalytics struct {
	ID                string         `jsonapi:"primary,calendar-analytics"`
	TotalEvents       int            `jsonapi:"attr,total-events"`
	PeriodDays        int            `jsonapi:"attr,period-days"`
	TotalHours        float64        `jsonapi:"attr,total-hours"`
	AvgEventsPerDay   float64        `jsonapi:"attr,avg-events-per-day"`
	AvgHoursPerDay    float64        `jsonapi:"attr,avg-hours-per-day"`
	RecurringEvents   int            `jsonapi:"attr,recurring-events"`
	EventsWithGuests  int            `jsonapi:"attr,events-with-attendees"`
	Categories        map[string]int `jsonapi:"attr,categories"`
	DayDistribution   map[string]int `jsonapi:"attr,day-distribution"`
	HourDistribution  map[int]int    `jsonapi:"attr,hour-distribution"`
	MonthDistribution map[string]int `jsonapi:"attr,month-distribution"`
	Insights          []string       `jsonapi:"attr,insights"`
	ProductivityScore int            `jsonapi:"attr,productivity-score"`
}

// Analytics inspects the events of the trailing periodDays window.
func Analytics(events []EventInfo, periodDays int) *CalendarAnalytics {
	id := fmt.Sprintf("last-%dd", periodDays)

	if len(events) == 0 {
		return &CalendarAnalytics{
			ID:         id,
			PeriodDays: periodDays,
			Insights:   []string{"No events found in the specified period"},
		}
	}

	totalDuration := 0.0
	recurring := 0
	withGuests := 0

	dayDist := map[string]int{}
	hourDist := map[int]int{}
	monthDist := map[string]int{}

	categories := map[string]int{
		"meetings":     0,
		"appointments": 0,
		"focus_time":   0,
		"personal":     0,
		"other":        0,
	}

	for _, event := range events {
		if !event.Start.IsZero() {
			dayDist[event.Start.Weekday().String()]++
			hourDist[event.Start.Hour()]++
			monthDist[event.Start.Month().String()]++
		}

		if !event.Start.IsZero() && !event.End.IsZero() {
			totalDuration += event.End.Sub(event.Start).Hours()
		}

		if event.Recurring {
			recurring++
		}
		if event.Attendees > 0 {
			withGuests++
		}

		summary := strings.ToLower(event.Summary)
		switch {
		case containsAny(summary, []string{"meeting", "call", "sync", "standup"}):
			categories["meetings"]++
		case containsAny(summary, []string{"appointment", "doctor", "interview"}):
			categories["appointments"]++
		case containsAny(summary, []string{"focus", "deep work", "block"}):
			categories["focus_time"]++
		case containsAny(summary, []string{"personal", "birthday", "holiday"}):
			categories["personal"]++
		default:
			categories["other"]++
		}
	}

	total := len(events)

	return &CalendarAnalytics{
		ID:                id,
		TotalEvents:       total,
		PeriodDays:        periodDays,
		TotalHours:        round1(totalDuration),
		AvgEventsPerDay:   round1(float64(total) / float64(periodDays)),
		AvgHoursPerDay:    round1(totalDuration / float64(periodDays)),
		RecurringEvents:   recurring,
		EventsWithGuests:  withGuests,
		Categories:        categories,
		DayDistribution:   dayDist,
		HourDistribution:  hourDist,
		MonthDistribution: monthDist,
		Insights: analyticsInsights(total, totalDuration, periodDays, recurring,
			withGuests, categories, dayDist),
		ProductivityScore: productivityScore(categories, totalDuration, periodDays, recurring, total),
	}
}

func analyticsInsights(total int, totalDuration float64, periodDays, recurring, withGuests int,
	categories map[string]int, dayDist map[string]int) []string {

	var insights []string

	avgDailyHours := totalDuration / float64(periodDays)
	if avgDailyHours > 6 {
		insights = append(insights, "High meeting load - consider blocking focus time")
	} else if avgDailyHours < 2 {
		insights = append(insights, "Light meeting schedule - good for deep work")
	}

	if float64(recurring) > float64(total)*0.5 {
		insights = append(insights, "Many recurring events - review for optimization")
	}

	if float64(withGuests) > float64(total)*0.7 {
		insights = append(insights, "Highly collaborative schedule")
	} else if float64(withGuests) < float64(total)*0.3 {
		insights = append(insights, "Mostly individual work scheduled")
	}

	if categories["meetings"] > categories["focus_time"]*3 {
		insights = append(insights, "Unbalanced schedule - add more focus blocks")
	}

	if len(dayDist) > 0 {
		maxDay, minDay := 0, math.MaxInt
		for _, c := range dayDist {
			if c > maxDay {
				maxDay = c
			}
			if c < minDay {
				minDay = c
			}
		}
		if maxDay > minDay*3 {
			insights = append(insights, fmt.Sprintf("%s is significantly busier than other days", maxDayKey(dayDist)))
		}
	}

	return insights
}

func productivityScore(categories map[string]int, totalHours float64, days, recurring, total int) int {
	score := 50

	meetings := categories["meetings"]
	focus := categories["focus_time"]
	if focus > 0 {
		ratio := float64(meetings) / float64(focus+meetings)
		if ratio >= 0.3 && ratio <= 0.7 {
			score += 20
		} else if ratio > 0.8 {
			score -= 15
		}
	}

	avgDaily := totalHours / float64(days)
	if avgDaily >= 3 && avgDaily <= 5 {
		score += 15
	} else if avgDaily > 8 {
		score -= 20
	}

	if total > 0 {
		recurringRatio := float64(recurring) / float64(total)
		if recurringRatio >= 0.2 && recurringRatio <= 0.4 {
			score += 10
		} else if recurringRatio > 0.6 {
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// SlotConfidence scores a candidate meeting start between 0 and 1. Morning
// and mid-afternoon starts on weekdays score well, lunchtime poorly.
func SlotConfidence(start time.Time) float64 {
	score := 0.5

	switch {
	case start.Hour() >= 9 && start.Hour() <= 11:
		score += 0.3
	case start.Hour() >= 14 && start.Hour() <= 16:
		score += 0.2
	}

	if wd := start.Weekday(); wd >= time.Monday && wd <= time.Friday {
		score += 0.2
	}

	if start.Hour() >= 12 && start.Hour() <= 13 {
		score -= 0.2
	}

	return math.Max(0, math.Min(1, score))
}

// maxDayKey returns the key with the highest count. Ties break toward the
// lexically smaller key so repeated runs agree.
func maxDayKey(counts map[string]int) string {
	best, bestCount := "", -1
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func maxHourKey(counts map[int]int) int {
	best, bestCount := -1, -1
	for h := 0; h < 24; h++ {
		if c, ok := counts[h]; ok && c > bestCount {
			best, bestCount = h, c
		}
	}
	return best
}
