// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package calendar talks to the Google Calendar v3 API, reading through the
// cache and invalidating the operations a write makes stale.
package calendar

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/config"
	"github.com/staranto/gwsctl/internal/google"
	"github.com/tidwall/gjson"
)

// Cache lifetimes. Event lists churn, so they expire faster than the
// default; everything else rides the manager's TTL.
const eventsTTL = 3 * time.Minute

const defaultMaxResults = 50

// ErrNoSummary is returned when an event or calendar is created without a
// title.
var ErrNoSummary = errors.New("a summary is required")

// ErrNoStart is returned when an event is created without a start time.
var ErrNoStart = errors.New("a start time is required")

// CalendarInfo is one entry of the user's calendar list.
type CalendarInfo struct {
	ID          string `jsonapi:"primary,calendars"`
	Summary     string `jsonapi:"attr,summary"`
	Description string `jsonapi:"attr,description,omitempty"`
	TimeZone    string `jsonapi:"attr,time-zone,omitempty"`
	AccessRole  string `jsonapi:"attr,access-role,omitempty"`
	Primary     bool   `jsonapi:"attr,primary"`
}

// Event is a calendar event flattened for display. Start and End hold the
// RFC 3339 stamp for timed events and a bare date for all-day ones.
type Event struct {
	ID          string   `jsonapi:"primary,events"`
	Summary     string   `jsonapi:"attr,summary"`
	Description string   `jsonapi:"attr,description,omitempty"`
	Location    string   `jsonapi:"attr,location,omitempty"`
	Start       string   `jsonapi:"attr,start"`
	End         string   `jsonapi:"attr,end"`
	AllDay      bool     `jsonapi:"attr,all-day"`
	Status      string   `jsonapi:"attr,status,omitempty"`
	Organizer   string   `jsonapi:"attr,organizer,omitempty"`
	Attendees   []string `jsonapi:"attr,attendees,omitempty"`
	Recurring   bool     `jsonapi:"attr,recurring"`
	Created     string   `jsonapi:"attr,created,omitempty"`
	Updated     string   `jsonapi:"attr,updated,omitempty"`
	Link        string   `jsonapi:"attr,link,omitempty"`
}

// EventQuery narrows an event listing. Zero values mean "no bound": an
// unset CalendarID falls back to the configured default calendar and an
// unset MaxResults to 50.
type EventQuery struct {
	CalendarID string
	From       time.Time
	To         time.Time
	Search     string
	MaxResults int
}

func (q *EventQuery) normalize() {
	if q.CalendarID == "" {
		q.CalendarID, _ = config.GetString("calendar.default_calendar", "primary")
	}
	if q.MaxResults <= 0 {
		q.MaxResults = defaultMaxResults
	}
}

// EventCreateOptions carries the fields of a new event. Summary and Start
// are required; a zero End is derived from the configured default duration.
// Notify asks the API to send invitations to the attendees.
type EventCreateOptions struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	Notify      bool
}

// EventUpdateOptions carries only the fields to change. Nil fields are left
// untouched on the server.
type EventUpdateOptions struct {
	Summary     *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
}

// Service answers calendar reads through the cache and pushes writes to the
// API.
type Service struct {
	client *google.Client
	mgr    *cache.Manager
	sc     *cache.ServiceCache
}

func New(client *google.Client, mgr *cache.Manager) *Service {
	return &Service{client: client, mgr: mgr, sc: mgr.Service("calendar")}
}

// Calendars lists the calendars on the user's calendar list.
func (cs *Service) Calendars(ctx context.Context) ([]*CalendarInfo, error) {
	out, err := cache.Through(ctx, cs.sc, "list_calendars", cs.mgr.TTL(), func() ([]*CalendarInfo, error) {
		return cs.fetchCalendars(ctx)
	})
	return out, google.Friendly(err, google.ErrorContext{
		Service: "calendar", Operation: "list calendars", Resource: "calendar list",
	})
}

func (cs *Service) fetchCalendars(ctx context.Context) ([]*CalendarInfo, error) {
	var calendars []*CalendarInfo

	pageToken := ""
	for {
		u := google.CalendarBase + "/users/me/calendarList?maxResults=250"
		if pageToken != "" {
			u += "&pageToken=" + url.QueryEscape(pageToken)
		}

		raw, err := cs.client.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		for _, item := range gjson.GetBytes(raw, "items").Array() {
			calendars = append(calendars, &CalendarInfo{
				ID:          item.Get("id").String(),
				Summary:     item.Get("summary").String(),
				Description: item.Get("description").String(),
				TimeZone:    item.Get("timeZone").String(),
				AccessRole:  item.Get("accessRole").String(),
				Primary:     item.Get("primary").Bool(),
			})
		}

		pageToken = gjson.GetBytes(raw, "nextPageToken").String()
		if pageToken == "" {
			return calendars, nil
		}
	}
}

// Events lists events matching the query, most imminent first.
func (cs *Service) Events(ctx context.Context, q EventQuery) ([]*Event, error) {
	q.normalize()

	args := []any{q.CalendarID, stamp(q.From), stamp(q.To), q.MaxResults, q.Search}
	out, err := cache.Through(ctx, cs.sc, "list_events", eventsTTL, func() ([]*Event, error) {
		return cs.fetchEvents(ctx, q)
	}, args...)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "calendar", Operation: "list events", Resource: "calendar " + q.CalendarID,
	})
}

func (cs *Service) fetchEvents(ctx context.Context, q EventQuery) ([]*Event, error) {
	v := url.Values{}
	v.Set("maxResults", strconv.Itoa(q.MaxResults))
	v.Set("singleEvents", "true")
	v.Set("orderBy", "startTime")
	if !q.From.IsZero() {
		v.Set("timeMin", stamp(q.From))
	}
	if !q.To.IsZero() {
		v.Set("timeMax", stamp(q.To))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}

	raw, err := cs.client.Get(ctx, eventsURL(q.CalendarID)+"?"+v.Encode())
	if err != nil {
		return nil, err
	}

	var events []*Event
	for _, item := range gjson.GetBytes(raw, "items").Array() {
		events = append(events, eventFromJSON(item))
	}
	return events, nil
}

// Event fetches a single event.
func (cs *Service) Event(ctx context.Context, calendarID, eventID string) (*Event, error) {
	out, err := cache.Through(ctx, cs.sc, "get_event", cs.mgr.TTL(), func() (*Event, error) {
		raw, err := cs.client.Get(ctx, eventsURL(calendarID)+"/"+url.PathEscape(eventID))
		if err != nil {
			return nil, err
		}
		return eventFromJSON(gjson.ParseBytes(raw)), nil
	}, calendarID, eventID)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "calendar", Operation: "get event", Resource: "event " + eventID,
	})
}

// SearchEvents is an event listing driven by a free-text query.
func (cs *Service) SearchEvents(ctx context.Context, query string, maxResults int) ([]*Event, error) {
	return cs.Events(ctx, EventQuery{Search: query, MaxResults: maxResults})
}

// CreateEvent inserts a new event and expires the listings that no longer
// reflect it.
func (cs *Service) CreateEvent(ctx context.Context, calendarID string, opts EventCreateOptions) (*Event, error) {
	ectx := google.ErrorContext{Service: "calendar", Operation: "create event", Resource: "calendar " + calendarID}

	if opts.Summary == "" {
		return nil, google.Friendly(ErrNoSummary, ectx)
	}
	if opts.Start.IsZero() {
		return nil, google.Friendly(ErrNoStart, ectx)
	}

	if calendarID == "" {
		calendarID, _ = config.GetString("calendar.default_calendar", "primary")
	}
	if opts.TimeZone == "" {
		opts.TimeZone, _ = config.GetString("calendar.default_timezone", "UTC")
	}
	if opts.End.IsZero() {
		minutes, _ := config.GetInt("calendar.default_event_duration", 60)
		opts.End = opts.Start.Add(time.Duration(minutes) * time.Minute)
	}

	body := map[string]any{
		"summary":     opts.Summary,
		"description": opts.Description,
		"location":    opts.Location,
		"start":       map[string]string{"dateTime": stamp(opts.Start), "timeZone": opts.TimeZone},
		"end":         map[string]string{"dateTime": stamp(opts.End), "timeZone": opts.TimeZone},
	}
	if len(opts.Attendees) > 0 {
		body["attendees"] = attendeeList(opts.Attendees)
	}

	u := eventsURL(calendarID)
	if opts.Notify {
		u += "?sendUpdates=all"
	}

	raw, err := cs.client.Post(ctx, u, body)
	if err != nil {
		return nil, google.Friendly(err, ectx)
	}

	cs.sc.Invalidate(ctx, "list_events")

	return eventFromJSON(gjson.ParseBytes(raw)), nil
}

// UpdateEvent patches just the provided fields of an event.
func (cs *Service) UpdateEvent(ctx context.Context, calendarID, eventID string, opts EventUpdateOptions) (*Event, error) {
	body := map[string]any{}
	if opts.Summary != nil {
		body["summary"] = *opts.Summary
	}
	if opts.Description != nil {
		body["description"] = *opts.Description
	}
	if opts.Location != nil {
		body["location"] = *opts.Location
	}

	tz, _ := config.GetString("calendar.default_timezone", "UTC")
	if opts.Start != nil {
		body["start"] = map[string]string{"dateTime": stamp(*opts.Start), "timeZone": tz}
	}
	if opts.End != nil {
		body["end"] = map[string]string{"dateTime": stamp(*opts.End), "timeZone": tz}
	}

	raw, err := cs.client.Patch(ctx, eventsURL(calendarID)+"/"+url.PathEscape(eventID), body)
	if err != nil {
		return nil, google.Friendly(err, google.ErrorContext{
			Service: "calendar", Operation: "update event", Resource: "event " + eventID,
		})
	}

	cs.sc.Invalidate(ctx, "list_events")
	cs.sc.Invalidate(ctx, "get_event")

	return eventFromJSON(gjson.ParseBytes(raw)), nil
}

// DeleteEvent removes an event.
func (cs *Service) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	_, err := cs.client.Delete(ctx, eventsURL(calendarID)+"/"+url.PathEscape(eventID))
	if err != nil {
		return google.Friendly(err, google.ErrorContext{
			Service: "calendar", Operation: "delete event", Resource: "event " + eventID,
		})
	}

	cs.sc.Invalidate(ctx, "list_events")
	cs.sc.Invalidate(ctx, "get_event")

	return nil
}

// BusyWindow is one occupied interval from a free/busy query.
type BusyWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FreeBusy is the availability of one calendar over the queried window.
type FreeBusy struct {
	ID   string       `jsonapi:"primary,free-busy"`
	Busy []BusyWindow `jsonapi:"attr,busy"`
}

// QueryFreeBusy reports the busy intervals of the given calendars between
// from and to. With no calendars it asks about the primary one.
func (cs *Service) QueryFreeBusy(ctx context.Context, from, to time.Time, calendarIDs ...string) ([]*FreeBusy, error) {
	if len(calendarIDs) == 0 {
		calendarIDs = []string{"primary"}
	}

	items := make([]map[string]string, 0, len(calendarIDs))
	for _, id := range calendarIDs {
		items = append(items, map[string]string{"id": id})
	}

	raw, err := cs.client.Post(ctx, google.CalendarBase+"/freeBusy", map[string]any{
		"timeMin": stamp(from),
		"timeMax": stamp(to),
		"items":   items,
	})
	if err != nil {
		return nil, google.Friendly(err, google.ErrorContext{
			Service: "calendar", Operation: "query free/busy", Resource: "calendars",
		})
	}

	// Walk the requested IDs rather than the response map so the order is
	// the caller's.
	out := make([]*FreeBusy, 0, len(calendarIDs))
	for _, id := range calendarIDs {
		fb := &FreeBusy{ID: id}
		for _, slot := range gjson.GetBytes(raw, "calendars."+gjsonEscape(id)+".busy").Array() {
			fb.Busy = append(fb.Busy, BusyWindow{
				Start: slot.Get("start").String(),
				End:   slot.Get("end").String(),
			})
		}
		out = append(out, fb)
	}
	return out, nil
}

// CreateCalendar makes a new secondary calendar.
func (cs *Service) CreateCalendar(ctx context.Context, summary, description, timeZone string) (*CalendarInfo, error) {
	ectx := google.ErrorContext{Service: "calendar", Operation: "create calendar", Resource: "calendar list"}

	if summary == "" {
		return nil, google.Friendly(ErrNoSummary, ectx)
	}
	if timeZone == "" {
		timeZone, _ = config.GetString("calendar.default_timezone", "UTC")
	}

	raw, err := cs.client.Post(ctx, google.CalendarBase+"/calendars", map[string]string{
		"summary":     summary,
		"description": description,
		"timeZone":    timeZone,
	})
	if err != nil {
		return nil, google.Friendly(err, ectx)
	}

	cs.sc.Invalidate(ctx, "list_calendars")

	doc := gjson.ParseBytes(raw)
	return &CalendarInfo{
		ID:          doc.Get("id").String(),
		Summary:     doc.Get("summary").String(),
		Description: doc.Get("description").String(),
		TimeZone:    doc.Get("timeZone").String(),
	}, nil
}

func eventsURL(calendarID string) string {
	return google.CalendarBase + "/calendars/" + url.PathEscape(calendarID) + "/events"
}

func eventFromJSON(doc gjson.Result) *Event {
	start := doc.Get("start.dateTime").String()
	allDay := false
	if start == "" {
		start = doc.Get("start.date").String()
		allDay = start != ""
	}
	end := doc.Get("end.dateTime").String()
	if end == "" {
		end = doc.Get("end.date").String()
	}

	summary := doc.Get("summary").String()
	if summary == "" {
		summary = "No title"
	}

	var attendees []string
	for _, a := range doc.Get("attendees.#.email").Array() {
		attendees = append(attendees, a.String())
	}

	return &Event{
		ID:          doc.Get("id").String(),
		Summary:     summary,
		Description: doc.Get("description").String(),
		Location:    doc.Get("location").String(),
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Status:      doc.Get("status").String(),
		Organizer:   doc.Get("organizer.email").String(),
		Attendees:   attendees,
		Recurring:   doc.Get("recurringEventId").Exists() || doc.Get("recurrence").Exists(),
		Created:     doc.Get("created").String(),
		Updated:     doc.Get("updated").String(),
		Link:        doc.Get("htmlLink").String(),
	}
}

func attendeeList(emails []string) []map[string]string {
	out := make([]map[string]string, 0, len(emails))
	for _, email := range emails {
		out = append(out, map[string]string{"email": email})
	}
	return out
}

// stamp renders a time for the API; zero times render as "" so cache keys
// stay stable.
func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// gjsonEscape protects the dots in a calendar ID (they are email addresses)
// from being read as path separators.
func gjsonEscape(key string) string {
	var b []byte
	for i := 0; i < len(key); i++ {
		if key[i] == '.' || key[i] == '*' || key[i] == '?' || key[i] == '\\' {
			b = append(b, '\\')
		}
		b = append(b, key[i])
	}
	return string(b)
}
