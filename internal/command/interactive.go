// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/gwsctl/internal/meta"
	"github.com/staranto/gwsctl/internal/service/calendar"
	"github.com/staranto/gwsctl/internal/service/docs"
	"github.com/staranto/gwsctl/internal/service/gmail"
	"github.com/staranto/gwsctl/internal/service/sheets"
	"github.com/staranto/gwsctl/internal/tui"
)

func InteractiveCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "interactive",
		Usage:     "browse common queries in a menu",
		UsageText: "gwsctl interactive",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("interactive mode requires a terminal")
			}
			return tui.Run(interactiveItems(ctx, cmd))
		},
	}
}

// interactiveItems wires each menu entry to a live query. The client is
// built per run so an expired token surfaces as the item's error, not a
// crash of the menu.
func interactiveItems(ctx context.Context, cmd *cli.Command) []tui.Item {
	mm := GetMeta(cmd)

	return []tui.Item{
		{
			Name: "Today's events",
			Hint: "calendar list --from today --days 1",
			Run: func() ([]string, error) {
				client, err := WorkspaceClient(ctx, cmd)
				if err != nil {
					return nil, err
				}
				now := time.Now()
				midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
				events, err := calendar.New(client, mm.Cache).Events(ctx, calendar.EventQuery{
					From: midnight,
					To:   midnight.AddDate(0, 0, 1),
				})
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(events))
				for _, e := range events {
					lines = append(lines, fmt.Sprintf("%s  %s", e.Start, e.Summary))
				}
				return lines, nil
			},
		},
		{
			Name: "Unread mail",
			Hint: "gmail list --query is:unread",
			Run: func() ([]string, error) {
				client, err := WorkspaceClient(ctx, cmd)
				if err != nil {
					return nil, err
				}
				messages, err := gmail.New(client, mm.Cache).Messages(ctx, "is:unread", 20)
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(messages))
				for _, msg := range messages {
					lines = append(lines, fmt.Sprintf("%s — %s", msg.From, msg.Subject))
				}
				return lines, nil
			},
		},
		{
			Name: "Inbox insights",
			Hint: "gmail insights",
			Run: func() ([]string, error) {
				client, err := WorkspaceClient(ctx, cmd)
				if err != nil {
					return nil, err
				}
				svc := gmail.New(client, mm.Cache)
				summary, err := gmail.NewAdvanced(svc).Insights(ctx, 50)
				if err != nil {
					return nil, err
				}
				lines := []string{
					summary.Summary,
					fmt.Sprintf("%d emails, %d urgent", summary.TotalEmails, summary.Urgent),
				}
				return append(lines, summary.Insights...), nil
			},
		},
		{
			Name: "Spreadsheets",
			Hint: "sheets list",
			Run: func() ([]string, error) {
				client, err := WorkspaceClient(ctx, cmd)
				if err != nil {
					return nil, err
				}
				infos, err := sheets.New(client, mm.Cache).Spreadsheets(ctx, 20)
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(infos))
				for _, info := range infos {
					lines = append(lines, info.Title)
				}
				return lines, nil
			},
		},
		{
			Name: "Documents",
			Hint: "docs list",
			Run: func() ([]string, error) {
				client, err := WorkspaceClient(ctx, cmd)
				if err != nil {
					return nil, err
				}
				infos, err := docs.New(client, mm.Cache).Documents(ctx, 20)
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(infos))
				for _, info := range infos {
					lines = append(lines, info.Title)
				}
				return lines, nil
			},
		},
		{
			Name: "Cache stats",
			Hint: "cache stats",
			Run: func() ([]string, error) {
				sum := mm.Cache.Store().Stats(ctx)
				return []string{
					fmt.Sprintf("enabled: %t", mm.Cache.Enabled()),
					fmt.Sprintf("hits %d, misses %d (%.1f%%)", sum.Hits, sum.Misses, sum.HitRate),
					fmt.Sprintf("%d entries, %s on disk", sum.TotalItems, humanize.Bytes(uint64(sum.SizeOnDisk))),
					sum.Location,
				}, nil
			},
		},
	}
}
