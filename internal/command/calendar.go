// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/ai"
	"github.com/staranto/gwsctl/internal/config"
	"github.com/staranto/gwsctl/internal/datespec"
	"github.com/staranto/gwsctl/internal/meta"
	"github.com/staranto/gwsctl/internal/service/calendar"
)

// Default columns for event listings.
var eventAttrs = []string{".id", "summary", "start", "end", "status"}

func CalendarCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "query and manage Google Calendar",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			calendarListCommand(m),
			calendarGetCommand(m),
			calendarSearchCommand(m),
			calendarCreateCommand(m),
			calendarDeleteCommand(m),
			calendarCalendarsCommand(m),
			calendarCreateCalendarCommand(m),
			calendarInsightsCommand(m),
			calendarAnalyticsCommand(m),
			calendarSlotsCommand(m),
			calendarSmartCreateCommand(m),
		},
	}
}

// newCalendarService wires an authorized client into the calendar service,
// sharing the process cache manager.
func newCalendarService(ctx context.Context, cmd *cli.Command) (*calendar.Service, error) {
	client, err := WorkspaceClient(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return calendar.New(client, GetMeta(cmd).Cache), nil
}

func calendarListCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*calendar.Event]{
		CommandName:  "calendar",
		SchemaType:   reflect.TypeOf(calendar.Event{}),
		DefaultAttrs: eventAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*calendar.Event, error) {
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return nil, err
			}

			from, to, err := datespec.Window(time.Now(),
				cmd.String("from"), cmd.String("to"), int(cmd.Int("days")))
			if err != nil {
				return nil, err
			}

			return svc.Events(ctx, calendar.EventQuery{
				CalendarID: cmd.String("calendar"),
				From:       from,
				To:         to,
				MaxResults: int(cmd.Int("max")),
			})
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "list",
		Usage:     "list upcoming events",
		UsageText: "gwsctl calendar list [options]",
		Flags: []cli.Flag{
			NewCalendarFlag(),
			&cli.StringFlag{
				Name:  "from",
				Usage: "window start (today, tomorrow, +N, YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "window end (today, tomorrow, +N, YYYY-MM-DD)",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "window length in days when --to is not given",
				Value: 7,
			},
			NewMaxFlag("calendar", 50),
		},
		Meta:   m,
		Action: qar.Run,
	}
	return qcb.Build()
}

func calendarGetCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*calendar.Event]{
		CommandName:  "calendar",
		SchemaType:   reflect.TypeOf(calendar.Event{}),
		DefaultAttrs: append(eventAttrs, "location", "description", "attendees"),
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*calendar.Event, error) {
			id := cmd.Args().First()
			if id == "" {
				return nil, errors.New("an event id is required")
			}
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			event, err := svc.Event(ctx, cmd.String("calendar"), id)
			if err != nil {
				return nil, err
			}
			return []*calendar.Event{event}, nil
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "get",
		Usage:     "show one event",
		UsageText: "gwsctl calendar get <event-id> [options]",
		ArgsUsage: "<event-id>",
		Flags:     []cli.Flag{NewCalendarFlag()},
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func calendarSearchCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*calendar.Event]{
		CommandName:  "calendar",
		SchemaType:   reflect.TypeOf(calendar.Event{}),
		DefaultAttrs: eventAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*calendar.Event, error) {
			query := cmd.Args().First()
			if query == "" {
				return nil, errors.New("a search term is required")
			}
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.SearchEvents(ctx, query, int(cmd.Int("max")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "search",
		Usage:     "search events by text",
		UsageText: "gwsctl calendar search <query> [options]",
		ArgsUsage: "<query>",
		Flags:     []cli.Flag{NewMaxFlag("calendar", 50)},
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func calendarCreateCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "create",
		Usage:     "create an event",
		UsageText: "gwsctl calendar create --summary S --start WHEN [options]",
		Flags: []cli.Flag{
			NewCalendarFlag(),
			&cli.StringFlag{
				Name:  "summary",
				Usage: "event title",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "event description",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "event location",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "start time (YYYY-MM-DD HH:MM, RFC 3339, today, +N)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "end time; defaults to start plus the configured duration",
			},
			&cli.IntFlag{
				Name:  "duration",
				Usage: "length in minutes when --end is not given",
			},
			&cli.StringFlag{
				Name:  "timezone",
				Usage: "IANA time zone for the event",
			},
			&cli.StringSliceFlag{
				Name:  "attendee",
				Usage: "attendee email, repeatable",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "send invitations to attendees",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return err
			}

			opts := calendar.EventCreateOptions{
				Summary:     cmd.String("summary"),
				Description: cmd.String("description"),
				Location:    cmd.String("location"),
				TimeZone:    cmd.String("timezone"),
				Attendees:   cmd.StringSlice("attendee"),
				Notify:      cmd.Bool("notify"),
			}

			if spec := cmd.String("start"); spec != "" {
				when, err := datespec.Resolve(time.Now(), spec)
				if err != nil {
					return err
				}
				opts.Start = when[0]
			}
			if spec := cmd.String("end"); spec != "" {
				when, err := datespec.Resolve(time.Now(), spec)
				if err != nil {
					return err
				}
				opts.End = when[0]
			} else if d := int(cmd.Int("duration")); d > 0 && !opts.Start.IsZero() {
				opts.End = opts.Start.Add(time.Duration(d) * time.Minute)
			}

			event, err := svc.CreateEvent(ctx, cmd.String("calendar"), opts)
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd, eventAttrs...)
			return EmitJSONAPISlice([]*calendar.Event{event}, al, cmd)
		},
	}
	return qcb.Build()
}

func calendarDeleteCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "delete",
		Usage:     "delete an event",
		UsageText: "gwsctl calendar delete <event-id> [options]",
		ArgsUsage: "<event-id>",
		Flags:     []cli.Flag{NewCalendarFlag()},
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("an event id is required")
			}
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return err
			}
			return svc.DeleteEvent(ctx, cmd.String("calendar"), id)
		},
	}
	return qcb.Build()
}

func calendarCalendarsCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*calendar.CalendarInfo]{
		CommandName:  "calendar",
		SchemaType:   reflect.TypeOf(calendar.CalendarInfo{}),
		DefaultAttrs: []string{".id", "summary", "time-zone", "access-role", "primary"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*calendar.CalendarInfo, error) {
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Calendars(ctx)
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "calendars",
		Usage:     "list the calendars on the account",
		UsageText: "gwsctl calendar calendars [options]",
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func calendarCreateCalendarCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "create-calendar",
		Usage:     "create a secondary calendar",
		UsageText: "gwsctl calendar create-calendar --summary S [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "summary",
				Usage: "calendar name",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "calendar description",
			},
			&cli.StringFlag{
				Name:  "timezone",
				Usage: "IANA time zone for the calendar",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return err
			}
			tz := cmd.String("timezone")
			if tz == "" {
				tz, _ = config.GetString("calendar.default_timezone", "UTC")
			}
			info, err := svc.CreateCalendar(ctx,
				cmd.String("summary"), cmd.String("description"), tz)
			if err != nil {
				return err
			}
			al := BuildAttrs(cmd, ".id", "summary", "time-zone")
			return EmitJSONAPISlice([]*calendar.CalendarInfo{info}, al, cmd)
		},
	}
	return qcb.Build()
}

func calendarInsightsCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "insights",
		Usage:     "analyze the coming schedule",
		UsageText: "gwsctl calendar insights [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Usage: "how many days ahead to analyze",
				Value: 7,
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "calendar") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(ai.ScheduleInsights{})) {
				return nil
			}

			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return err
			}
			insights, err := calendar.NewAdvanced(svc).ScheduleInsights(ctx, int(cmd.Int("days")))
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd)
			return EmitJSONAPISlice(insights, al, cmd)
		},
	}
	return qcb.Build()
}

func calendarAnalyticsCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "analytics",
		Usage:     "summarize how the recent calendar was spent",
		UsageText: "gwsctl calendar analytics [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "period",
				Usage: "how many past days to cover",
				Value: 30,
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "calendar") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(ai.CalendarAnalytics{})) {
				return nil
			}

			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return err
			}
			analytics, err := calendar.NewAdvanced(svc).Analytics(ctx, int(cmd.Int("period")))
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd)
			return EmitJSONAPISlice(analytics, al, cmd)
		},
	}
	return qcb.Build()
}

func calendarSlotsCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*calendar.Slot]{
		CommandName:  "calendar",
		SchemaType:   reflect.TypeOf(calendar.Slot{}),
		DefaultAttrs: []string{"start", "end", "day", "confidence"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*calendar.Slot, error) {
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return calendar.NewAdvanced(svc).OptimalSlots(ctx,
				int(cmd.Int("duration")), int(cmd.Int("days")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "slots",
		Usage:     "find the best free slots for a meeting",
		UsageText: "gwsctl calendar slots [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "duration",
				Usage: "meeting length in minutes",
				Value: 60,
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "how many days ahead to scan",
				Value: 7,
			},
		},
		Meta:   m,
		Action: qar.Run,
	}
	return qcb.Build()
}

func calendarSmartCreateCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "smart-create",
		Usage:     "create an event in the best free slot of the week",
		UsageText: "gwsctl calendar smart-create --summary S [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "summary",
				Usage: "event title",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "event description",
			},
			&cli.IntFlag{
				Name:  "duration",
				Usage: "meeting length in minutes",
				Value: 60,
			},
			&cli.StringSliceFlag{
				Name:  "attendee",
				Usage: "attendee email, repeatable",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newCalendarService(ctx, cmd)
			if err != nil {
				return err
			}
			event, err := calendar.NewAdvanced(svc).SmartCreate(ctx, calendar.SmartCreateOptions{
				Title:           cmd.String("summary"),
				Description:     cmd.String("description"),
				DurationMinutes: int(cmd.Int("duration")),
				Attendees:       cmd.StringSlice("attendee"),
			})
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd, eventAttrs...)
			return EmitJSONAPISlice([]*calendar.Event{event}, al, cmd)
		},
	}
	return qcb.Build()
}
