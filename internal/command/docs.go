// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/meta"
	"github.com/staranto/gwsctl/internal/service/docs"
)

var documentAttrs = []string{".id", "title", "modified", "url"}

func DocsCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "docs",
		Usage: "query and manage Google Docs",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			docsListCommand(m),
			docsGetCommand(m),
			docsInfoCommand(m),
			docsSearchCommand(m),
			docsCreateCommand(m),
			docsUpdateCommand(m),
			docsDeleteCommand(m),
			docsExportCommand(m),
		},
	}
}

func newDocsService(ctx context.Context, cmd *cli.Command) (*docs.Service, error) {
	client, err := WorkspaceClient(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return docs.New(client, GetMeta(cmd).Cache), nil
}

func docsListCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*docs.DocumentInfo]{
		CommandName:  "docs",
		SchemaType:   reflect.TypeOf(docs.DocumentInfo{}),
		DefaultAttrs: documentAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*docs.DocumentInfo, error) {
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Documents(ctx, int(cmd.Int("max")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "list",
		Usage:     "list documents on Drive",
		UsageText: "gwsctl docs list [options]",
		Flags:     []cli.Flag{NewMaxFlag("docs", 50)},
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func docsGetCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*docs.Document]{
		CommandName:  "docs",
		SchemaType:   reflect.TypeOf(docs.Document{}),
		DefaultAttrs: []string{".id", "title", "words", "body"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*docs.Document, error) {
			id := cmd.Args().First()
			if id == "" {
				return nil, errors.New("a document id is required")
			}
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			doc, err := svc.Document(ctx, id)
			if err != nil {
				return nil, err
			}
			return []*docs.Document{doc}, nil
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "get",
		Usage:     "show a document's text",
		UsageText: "gwsctl docs get <document-id> [options]",
		ArgsUsage: "<document-id>",
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func docsInfoCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*docs.DocumentInfo]{
		CommandName:  "docs",
		SchemaType:   reflect.TypeOf(docs.DocumentInfo{}),
		DefaultAttrs: append(documentAttrs, "created"),
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*docs.DocumentInfo, error) {
			id := cmd.Args().First()
			if id == "" {
				return nil, errors.New("a document id is required")
			}
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			info, err := svc.Info(ctx, id)
			if err != nil {
				return nil, err
			}
			return []*docs.DocumentInfo{info}, nil
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "info",
		Usage:     "show a document's metadata",
		UsageText: "gwsctl docs info <document-id> [options]",
		ArgsUsage: "<document-id>",
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func docsSearchCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*docs.DocumentInfo]{
		CommandName:  "docs",
		SchemaType:   reflect.TypeOf(docs.DocumentInfo{}),
		DefaultAttrs: documentAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*docs.DocumentInfo, error) {
			query := cmd.Args().First()
			if query == "" {
				return nil, errors.New("a search term is required")
			}
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Search(ctx, query, int(cmd.Int("max")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "search",
		Usage:     "search documents by name",
		UsageText: "gwsctl docs search <query> [options]",
		ArgsUsage: "<query>",
		Flags:     []cli.Flag{NewMaxFlag("docs", 50)},
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func docsCreateCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "create",
		Usage:     "create a document",
		UsageText: "gwsctl docs create --title T [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "document name",
			},
			&cli.StringFlag{
				Name:  "content",
				Usage: "initial text to seed the document with",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return err
			}
			info, err := svc.Create(ctx, cmd.String("title"), cmd.String("content"))
			if err != nil {
				return err
			}
			al := BuildAttrs(cmd, ".id", "title", "url")
			return EmitJSONAPISlice([]*docs.DocumentInfo{info}, al, cmd)
		},
	}
	return qcb.Build()
}

func docsUpdateCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "update",
		Usage:     "append text to a document",
		UsageText: "gwsctl docs update <document-id> --text T [options]",
		ArgsUsage: "<document-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "text",
				Usage: "text to append",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("a document id is required")
			}
			text := cmd.String("text")
			if text == "" {
				return errors.New("--text is required")
			}
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return err
			}
			return svc.Append(ctx, id, text)
		},
	}
	return qcb.Build()
}

func docsDeleteCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "delete",
		Usage:     "delete a document",
		UsageText: "gwsctl docs delete <document-id> [options]",
		ArgsUsage: "<document-id>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("a document id is required")
			}
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return err
			}
			return svc.Delete(ctx, id)
		},
	}
	return qcb.Build()
}

func docsExportCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "export",
		Usage:     "download a document converted to another format",
		UsageText: "gwsctl docs export <document-id> [options]",
		ArgsUsage: "<document-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "target format",
				Value: "text",
				Validator: func(value string) error {
					return FlagValidators(value, ExportFormatValidator)
				},
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "file to write; stdout when omitted",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("a document id is required")
			}
			svc, err := newDocsService(ctx, cmd)
			if err != nil {
				return err
			}
			raw, err := svc.Export(ctx, id, cmd.String("format"))
			if err != nil {
				return err
			}
			if out := cmd.String("out"); out != "" {
				if err := os.WriteFile(out, raw, 0o644); err != nil { //nolint:mnd
					return fmt.Errorf("failed to write export: %w", err)
				}
				return nil
			}
			_, err = os.Stdout.Write(raw)
			return err
		},
	}
	return qcb.Build()
}
