// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/ai"
	"github.com/staranto/gwsctl/internal/meta"
	"github.com/staranto/gwsctl/internal/service/gmail"
)

// Default columns for message listings.
var messageAttrs = []string{".id", "from", "subject", "date", "unread"}

func GmailCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "gmail",
		Usage: "query and manage Gmail",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			gmailListCommand(m),
			gmailGetCommand(m),
			gmailSearchCommand(m),
			gmailSendCommand(m),
			gmailDeleteCommand(m),
			gmailReadCommand(m, "read", "mark a message read"),
			gmailReadCommand(m, "unread", "mark a message unread"),
			gmailLabelsCommand(m),
			gmailInsightsCommand(m),
		},
	}
}

func newGmailService(ctx context.Context, cmd *cli.Command) (*gmail.Service, error) {
	client, err := WorkspaceClient(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return gmail.New(client, GetMeta(cmd).Cache), nil
}

func gmailListCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*gmail.Message]{
		CommandName:  "gmail",
		SchemaType:   reflect.TypeOf(gmail.Message{}),
		DefaultAttrs: messageAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*gmail.Message, error) {
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Messages(ctx, cmd.String("query"), int(cmd.Int("max")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "list",
		Usage:     "list inbox messages",
		UsageText: "gwsctl gmail list [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Gmail search expression",
				Value:   "in:inbox",
			},
			NewMaxFlag("gmail", 50),
		},
		Meta:   m,
		Action: qar.Run,
	}
	return qcb.Build()
}

func gmailGetCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*gmail.Message]{
		CommandName:  "gmail",
		SchemaType:   reflect.TypeOf(gmail.Message{}),
		DefaultAttrs: append(messageAttrs, "to", "body"),
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*gmail.Message, error) {
			id := cmd.Args().First()
			if id == "" {
				return nil, errors.New("a message id is required")
			}
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			msg, err := svc.Message(ctx, id)
			if err != nil {
				return nil, err
			}
			return []*gmail.Message{msg}, nil
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "get",
		Usage:     "show one message with its body",
		UsageText: "gwsctl gmail get <message-id> [options]",
		ArgsUsage: "<message-id>",
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func gmailSearchCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*gmail.Message]{
		CommandName:  "gmail",
		SchemaType:   reflect.TypeOf(gmail.Message{}),
		DefaultAttrs: messageAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*gmail.Message, error) {
			query := cmd.Args().First()
			if query == "" {
				return nil, errors.New("a search expression is required")
			}
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Messages(ctx, query, int(cmd.Int("max")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "search",
		Usage:     "search messages with a Gmail expression",
		UsageText: `gwsctl gmail search "from:alice is:unread" [options]`,
		ArgsUsage: "<query>",
		Flags:     []cli.Flag{NewMaxFlag("gmail", 50)},
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func gmailSendCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "send",
		Usage:     "send a message",
		UsageText: "gwsctl gmail send --to a@b.c --subject S --body B [options]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "to",
				Usage: "recipient email, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "cc",
				Usage: "carbon-copy email, repeatable",
			},
			&cli.StringFlag{
				Name:  "subject",
				Usage: "message subject",
			},
			&cli.StringFlag{
				Name:  "body",
				Usage: "message body",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return err
			}
			id, err := svc.Send(ctx, gmail.SendOptions{
				To:      cmd.StringSlice("to"),
				Cc:      cmd.StringSlice("cc"),
				Subject: cmd.String("subject"),
				Body:    cmd.String("body"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Sent %s\n", id)
			return nil
		},
	}
	return qcb.Build()
}

func gmailDeleteCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "delete",
		Usage:     "move a message to trash",
		UsageText: "gwsctl gmail delete <message-id> [options]",
		ArgsUsage: "<message-id>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("a message id is required")
			}
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return err
			}
			return svc.Delete(ctx, id)
		},
	}
	return qcb.Build()
}

// gmailReadCommand covers both read and unread; they differ only in which
// way the UNREAD label moves.
func gmailReadCommand(m meta.Meta, name, usage string) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      name,
		Usage:     usage,
		UsageText: "gwsctl gmail " + name + " <message-id> [options]",
		ArgsUsage: "<message-id>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("a message id is required")
			}
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return err
			}
			if name == "read" {
				return svc.MarkRead(ctx, id)
			}
			return svc.MarkUnread(ctx, id)
		},
	}
	return qcb.Build()
}

func gmailLabelsCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*gmail.Label]{
		CommandName:  "gmail",
		SchemaType:   reflect.TypeOf(gmail.Label{}),
		DefaultAttrs: []string{".id", "name", "type", "messages-total", "messages-unread"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*gmail.Label, error) {
			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Labels(ctx)
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "labels",
		Usage:     "list labels with message counts",
		UsageText: "gwsctl gmail labels [options]",
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func gmailInsightsCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "insights",
		Usage:     "summarize the inbox",
		UsageText: "gwsctl gmail insights [options]",
		Flags:     []cli.Flag{NewMaxFlag("gmail", 50)},
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "gmail") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(ai.InboxSummary{})) {
				return nil
			}

			svc, err := newGmailService(ctx, cmd)
			if err != nil {
				return err
			}
			summary, err := gmail.NewAdvanced(svc).Insights(ctx, int(cmd.Int("max")))
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd)
			return EmitJSONAPISlice(summary, al, cmd)
		},
	}
	return qcb.Build()
}
