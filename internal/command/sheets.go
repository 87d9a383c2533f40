// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/staranto/gwsctl/internal/meta"
	"github.com/staranto/gwsctl/internal/service/sheets"
)

var spreadsheetAttrs = []string{".id", "title", "modified", "url"}

func SheetsCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "sheets",
		Usage: "query and manage Google Sheets",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			sheetsListCommand(m),
			sheetsInfoCommand(m),
			sheetsReadCommand(m),
			sheetsWriteCommand(m, "write", "write values into a range"),
			sheetsWriteCommand(m, "append", "append rows after a range"),
			sheetsClearCommand(m),
			sheetsCreateCommand(m),
			sheetsAddSheetCommand(m),
		},
	}
}

func newSheetsService(ctx context.Context, cmd *cli.Command) (*sheets.Service, error) {
	client, err := WorkspaceClient(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return sheets.New(client, GetMeta(cmd).Cache), nil
}

func sheetsListCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*sheets.SpreadsheetInfo]{
		CommandName:  "sheets",
		SchemaType:   reflect.TypeOf(sheets.SpreadsheetInfo{}),
		DefaultAttrs: spreadsheetAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*sheets.SpreadsheetInfo, error) {
			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return svc.Spreadsheets(ctx, int(cmd.Int("max")))
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "list",
		Usage:     "list spreadsheets on Drive",
		UsageText: "gwsctl sheets list [options]",
		Flags:     []cli.Flag{NewMaxFlag("sheets", 50)},
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func sheetsInfoCommand(m meta.Meta) *cli.Command {
	qar := QueryActionRunner[*sheets.SpreadsheetInfo]{
		CommandName:  "sheets",
		SchemaType:   reflect.TypeOf(sheets.SpreadsheetInfo{}),
		DefaultAttrs: append(spreadsheetAttrs, "sheets"),
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*sheets.SpreadsheetInfo, error) {
			id := cmd.Args().First()
			if id == "" {
				return nil, errors.New("a spreadsheet id is required")
			}
			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return nil, err
			}
			info, err := svc.Info(ctx, id)
			if err != nil {
				return nil, err
			}
			return []*sheets.SpreadsheetInfo{info}, nil
		},
	}

	qcb := QueryCommandBuilder{
		Name:      "info",
		Usage:     "show a spreadsheet's sheets and metadata",
		UsageText: "gwsctl sheets info <spreadsheet-id> [options]",
		ArgsUsage: "<spreadsheet-id>",
		Meta:      m,
		Action:    qar.Run,
	}
	return qcb.Build()
}

func sheetsReadCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "read",
		Usage:     "read cell values from a range",
		UsageText: "gwsctl sheets read <spreadsheet-id> [range] [options]",
		ArgsUsage: "<spreadsheet-id> [range]",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "sheets") {
				return nil
			}

			id := cmd.Args().First()
			if id == "" {
				return errors.New("a spreadsheet id is required")
			}
			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return err
			}
			grid, err := svc.Read(ctx, id, cmd.Args().Get(1))
			if err != nil {
				return err
			}
			return emitGrid(grid, cmd)
		},
	}
	return qcb.Build()
}

// emitGrid renders a read range. A grid is rows of strings, not a jsonapi
// document, so it skips the slice-and-dice pipeline.
func emitGrid(grid *sheets.Grid, cmd *cli.Command) error {
	switch cmd.String("output") {
	case "json":
		b, err := json.MarshalIndent(grid, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
	case "yaml":
		b, err := yamlv2.Marshal(grid)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(b))
	default:
		for _, row := range grid.Rows {
			fmt.Fprintln(os.Stdout, strings.Join(row, "\t"))
		}
	}
	return nil
}

// parseRows turns "a,b;c,d" into [[a b] [c d]]. Rows split on ';', cells
// on ','.
func parseRows(spec string) [][]string {
	var rows [][]string
	for _, r := range strings.Split(spec, ";") {
		rows = append(rows, strings.Split(r, ","))
	}
	return rows
}

// sheetsWriteCommand covers write and append; they differ only in whether
// existing cells are replaced or rows are added below them.
func sheetsWriteCommand(m meta.Meta, name, usage string) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      name,
		Usage:     usage,
		UsageText: `gwsctl sheets ` + name + ` <spreadsheet-id> <range> --values "a,b;c,d" [options]`,
		ArgsUsage: "<spreadsheet-id> <range>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "values",
				Usage: "rows separated by ';', cells by ','",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			rangeSpec := cmd.Args().Get(1)
			if id == "" || rangeSpec == "" {
				return errors.New("a spreadsheet id and range are required")
			}
			values := cmd.String("values")
			if values == "" {
				return errors.New("--values is required")
			}

			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return err
			}

			var result *sheets.WriteResult
			if name == "append" {
				result, err = svc.Append(ctx, id, rangeSpec, parseRows(values))
			} else {
				result, err = svc.Write(ctx, id, rangeSpec, parseRows(values))
			}
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd, "range", "updated-cells", "updated-rows")
			return EmitJSONAPISlice([]*sheets.WriteResult{result}, al, cmd)
		},
	}
	return qcb.Build()
}

func sheetsClearCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "clear",
		Usage:     "clear cell values in a range",
		UsageText: "gwsctl sheets clear <spreadsheet-id> <range> [options]",
		ArgsUsage: "<spreadsheet-id> <range>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			rangeSpec := cmd.Args().Get(1)
			if id == "" || rangeSpec == "" {
				return errors.New("a spreadsheet id and range are required")
			}
			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return err
			}
			result, err := svc.Clear(ctx, id, rangeSpec)
			if err != nil {
				return err
			}

			al := BuildAttrs(cmd, "range")
			return EmitJSONAPISlice([]*sheets.WriteResult{result}, al, cmd)
		},
	}
	return qcb.Build()
}

func sheetsCreateCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "create",
		Usage:     "create a spreadsheet",
		UsageText: "gwsctl sheets create --title T [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "spreadsheet name",
			},
			&cli.StringSliceFlag{
				Name:  "sheet",
				Usage: "sheet name to create, repeatable",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return err
			}
			info, err := svc.Create(ctx, cmd.String("title"), cmd.StringSlice("sheet"))
			if err != nil {
				return err
			}
			al := BuildAttrs(cmd, ".id", "title", "url", "sheets")
			return EmitJSONAPISlice([]*sheets.SpreadsheetInfo{info}, al, cmd)
		},
	}
	return qcb.Build()
}

func sheetsAddSheetCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "add-sheet",
		Usage:     "add a sheet to an existing spreadsheet",
		UsageText: "gwsctl sheets add-sheet <spreadsheet-id> <title> [options]",
		ArgsUsage: "<spreadsheet-id> <title>",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			title := cmd.Args().Get(1)
			if id == "" || title == "" {
				return errors.New("a spreadsheet id and sheet title are required")
			}
			svc, err := newSheetsService(ctx, cmd)
			if err != nil {
				return err
			}
			return svc.AddSheet(ctx, id, title)
		},
	}
	return qcb.Build()
}
