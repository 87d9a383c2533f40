// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/ai"
	"github.com/staranto/gwsctl/internal/meta"
	"github.com/staranto/gwsctl/internal/service/calendar"
	"github.com/staranto/gwsctl/internal/service/gmail"
)

func AICommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "ai",
		Usage: "heuristics over mail and calendar",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			aiAskCommand(m),
			aiSummarizeCommand(m, "summarize", "summarize one email"),
			aiSummarizeCommand(m, "smart-reply", "suggest replies to one email"),
			aiInsightsCommand(m),
		},
	}
}

func aiAskCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "ask",
		Usage:     "turn a natural-language query into a gwsctl command",
		UsageText: `gwsctl ai ask "what's on my calendar tomorrow" [options]`,
		ArgsUsage: "<query>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "ai") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(ai.Parsed{})) {
				return nil
			}

			query := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return errors.New("a query is required")
			}

			parsed := ai.ParseCommand(time.Now(), query)

			al := BuildAttrs(cmd, "intent", "confidence", "suggestion")
			return EmitJSONAPISlice(parsed, al, cmd)
		},
	}
	return qcb.Build()
}

// aiSummarizeCommand covers summarize and smart-reply; both run the same
// analysis and differ only in which columns lead.
func aiSummarizeCommand(m meta.Meta, name, usage string) *cli.Command {
	defaults := []string{"summary", "sentiment", "urgency", "action-items"}
	if name == "smart-reply" {
		defaults = []string{"smart-replies", "urgency"}
	}

	qcb := QueryCommandBuilder{
		Name:      name,
		Usage:     usage,
		UsageText: "gwsctl ai " + name + " <message-id> [options]",
		ArgsUsage: "<message-id>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "ai") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(ai.EmailSummary{})) {
				return nil
			}

			id := cmd.Args().First()
			if id == "" {
				return errors.New("a message id is required")
			}

			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return err
			}
			summary, err := gmail.NewAdvanced(svc).SmartReply(ctx, id)
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd, defaults...)
			return EmitJSONAPISlice(summary, al, cmd)
		},
	}
	return qcb.Build()
}

func aiInsightsCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "insights",
		Usage:     "correlate recent mail and meetings into a productivity report",
		UsageText: "gwsctl ai insights [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "period",
				Usage: "day, week, or month",
				Value: "week",
			},
			NewMaxFlag("gmail", 50),
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "ai") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(ai.ProductivityReport{})) {
				return nil
			}

			client, err := WorkspaceClient(ctx, cmd)
			if err != nil {
				return err
			}
			mm := GetMeta(cmd)

			messages, err := gmail.New(client, mm.Cache).Messages(ctx, "in:inbox", int(cmd.Int("max")))
			if err != nil {
				return err
			}

			period := cmd.String("period")
			now := time.Now().UTC()
			events, err := calendar.New(client, mm.Cache).Events(ctx, calendar.EventQuery{
				From:       now.AddDate(0, 0, -periodDays(period)),
				To:         now,
				MaxResults: 250,
			})
			if err != nil {
				return err
			}

			report := ai.AnalyzeProductivity(emailInfos(messages), eventInfos(events), period)

			al := BuildAttrs(cmd)
			return EmitJSONAPISlice(report, al, cmd)
		},
	}
	return qcb.Build()
}

func periodDays(period string) int {
	switch period {
	case "day":
		return 1
	case "month":
		return 30
	default:
		return 7
	}
}

func emailInfos(messages []*gmail.Message) []ai.EmailInfo {
	out := make([]ai.EmailInfo, 0, len(messages))
	for _, m := range messages {
		out = append(out, ai.EmailInfo{
			ID:      m.ID,
			Subject: m.Subject,
			From:    m.From,
			Date:    m.Date,
			Snippet: m.Snippet,
			Body:    m.Body,
		})
	}
	return out
}

func eventInfos(events []*calendar.Event) []ai.EventInfo {
	out := make([]ai.EventInfo, 0, len(events))
	for _, e := range events {
		info := ai.EventInfo{
			Summary:   e.Summary,
			Recurring: e.Recurring,
			Attendees: len(e.Attendees),
		}
		if t, ok := parseEventStamp(e.Start); ok {
			info.Start = t
		}
		if t, ok := parseEventStamp(e.End); ok {
			info.End = t
		}
		out = append(out, info)
	}
	return out
}

// parseEventStamp reads the two stamp shapes events carry: RFC 3339 for
// timed events and a bare date for all-day ones.
func parseEventStamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
