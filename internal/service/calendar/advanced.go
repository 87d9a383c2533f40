// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/staranto/gwsctl/internal/ai"
	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/google"
)

// Insight results are dearer to compute than plain listings, so they get
// their own lifetimes.
const (
	insightsTTL  = 5 * time.Minute
	analyticsTTL = 10 * time.Minute
)

// Working hours for the slot finder.
const (
	workStart = 9
	workEnd   = 17
)

// Advanced layers the schedule heuristics over the plain calendar service.
// Its results cache under their own namespace so a smart create can expire
// insights without touching event listings.
type Advanced struct {
	svc *Service
	sc  *cache.ServiceCache
	now func() time.Time
}

func NewAdvanced(svc *Service) *Advanced {
	return &Advanced{
		svc: svc,
		sc:  svc.mgr.Service("calendar_advanced"),
		now: time.Now,
	}
}

// ScheduleInsights analyzes the primary calendar over the next days days.
func (ca *Advanced) ScheduleInsights(ctx context.Context, days int) (*ai.ScheduleInsights, error) {
	if days <= 0 {
		days = 7
	}

	out, err := cache.Through(ctx, ca.sc, "smart_schedule_insights", insightsTTL, func() (*ai.ScheduleInsights, error) {
		now := ca.now().UTC()
		events, err := ca.svc.fetchEvents(ctx, EventQuery{
			CalendarID: "primary",
			From:       now,
			To:         now.AddDate(0, 0, days),
			MaxResults: 100,
		})
		if err != nil {
			return nil, err
		}
		return ai.AnalyzeSchedule(analysisEvents(events), days), nil
	}, days)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "calendar", Operation: "analyze schedule", Resource: "primary calendar",
	})
}

// Analytics summarizes the trailing periodDays of the primary calendar.
func (ca *Advanced) Analytics(ctx context.Context, periodDays int) (*ai.CalendarAnalytics, error) {
	if periodDays <= 0 {
		periodDays = 30
	}

	out, err := cache.Through(ctx, ca.sc, "calendar_analytics", analyticsTTL, func() (*ai.CalendarAnalytics, error) {
		now := ca.now().UTC()
		events, err := ca.svc.fetchEvents(ctx, EventQuery{
			CalendarID: "primary",
			From:       now.AddDate(0, 0, -periodDays),
			To:         now,
			MaxResults: 500,
		})
		if err != nil {
			return nil, err
		}
		return ai.Analytics(analysisEvents(events), periodDays), nil
	}, periodDays)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "calendar", Operation: "compute analytics", Resource: "primary calendar",
	})
}

// Slot is a candidate meeting time, scored by how well it tends to work.
type Slot struct {
	ID         string  `jsonapi:"primary,slots"`
	Start      string  `jsonapi:"attr,start"`
	End        string  `jsonapi:"attr,end"`
	Day        string  `jsonapi:"attr,day"`
	Confidence float64 `jsonapi:"attr,confidence"`
}

// OptimalSlots scans working hours over the next days days and returns the
// five best free slots for a meeting of the given length. The whole window
// is fetched once and overlaps are checked locally.
func (ca *Advanced) OptimalSlots(ctx context.Context, durationMinutes, days int) ([]*Slot, error) {
	if durationMinutes <= 0 {
		durationMinutes = 60
	}
	if days <= 0 {
		days = 7
	}

	now := ca.now().UTC()
	busy, err := ca.svc.fetchEvents(ctx, EventQuery{
		CalendarID: "primary",
		From:       now,
		To:         now.AddDate(0, 0, days),
		MaxResults: 250,
	})
	if err != nil {
		return nil, google.Friendly(err, google.ErrorContext{
			Service: "calendar", Operation: "find optimal slots", Resource: "primary calendar",
		})
	}

	type window struct{ from, to time.Time }
	var taken []window
	for _, e := range busy {
		from, ok := parseStamp(e.Start)
		if !ok {
			continue
		}
		to, ok := parseStamp(e.End)
		if !ok {
			continue
		}
		taken = append(taken, window{from, to})
	}

	duration := time.Duration(durationMinutes) * time.Minute
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var slots []*Slot
	for offset := 0; offset < days; offset++ {
		for hour := workStart; hour < workEnd; hour++ {
			start := midnight.AddDate(0, 0, offset).Add(time.Duration(hour) * time.Hour)
			if start.Before(now) {
				continue
			}
			end := start.Add(duration)

			free := true
			for _, w := range taken {
				if start.Before(w.to) && w.from.Before(end) {
					free = false
					break
				}
			}
			if !free {
				continue
			}

			slots = append(slots, &Slot{
				ID:         stamp(start),
				Start:      stamp(start),
				End:        stamp(end),
				Day:        start.Weekday().String(),
				Confidence: ai.SlotConfidence(start),
			})
		}
	}

	// Equal scores keep chronological order.
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Confidence > slots[j].Confidence
	})
	if len(slots) > 5 {
		slots = slots[:5]
	}
	return slots, nil
}

// SmartCreateOptions shapes an event creation that picks its own time.
type SmartCreateOptions struct {
	Title           string
	Description     string
	DurationMinutes int
	Attendees       []string
}

// SmartCreate places a new event in the best free slot of the coming week,
// or tomorrow at 10:00 UTC when nothing scores. Attendees are notified.
func (ca *Advanced) SmartCreate(ctx context.Context, opts SmartCreateOptions) (*Event, error) {
	if opts.DurationMinutes <= 0 {
		opts.DurationMinutes = 60
	}

	create := EventCreateOptions{
		Summary:     opts.Title,
		Description: opts.Description,
		TimeZone:    "UTC",
		Attendees:   opts.Attendees,
		Notify:      true,
	}

	slots, err := ca.OptimalSlots(ctx, opts.DurationMinutes, 7)
	if err != nil {
		return nil, err
	}

	if len(slots) > 0 {
		best := slots[0]
		create.Start, _ = parseStamp(best.Start)
		create.End, _ = parseStamp(best.End)
		create.Description += fmt.Sprintf("\n\nSuggested time slot (confidence %.0f%%)", best.Confidence*100)
	} else {
		tomorrow := ca.now().UTC().AddDate(0, 0, 1)
		create.Start = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, time.UTC)
		create.End = create.Start.Add(time.Duration(opts.DurationMinutes) * time.Minute)
	}

	event, err := ca.svc.CreateEvent(ctx, "primary", create)
	if err != nil {
		return nil, err
	}

	ca.sc.Invalidate(ctx, "smart_schedule_insights")

	return event, nil
}

func analysisEvents(events []*Event) []ai.EventInfo {
	out := make([]ai.EventInfo, 0, len(events))
	for _, e := range events {
		info := ai.EventInfo{
			Summary:   e.Summary,
			Recurring: e.Recurring,
			Attendees: len(e.Attendees),
		}
		if t, ok := parseStamp(e.Start); ok {
			info.Start = t
		}
		if t, ok := parseStamp(e.End); ok {
			info.End = t
		}
		out = append(out, info)
	}
	return out
}

// parseStamp reads the two shapes events carry: RFC 3339 for timed events
// and a bare date for all-day ones.
func parseStamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
