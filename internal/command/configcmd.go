// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/urfave/cli/v3"
	gojsondiff "github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/staranto/gwsctl/internal/config"
	"github.com/staranto/gwsctl/internal/meta"
)

func ConfigCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "read and mutate the gwsctl.yaml config file",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			configGetCommand(m),
			configSetCommand(m),
			configListCommand(m),
			configResetCommand(m),
			configSaveCommand(m),
			configExportCommand(m),
			configImportCommand(m),
			configValidateCommand(m),
			configEditCommand(m),
		},
	}
}

func configGetCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print one value by dotted path",
		UsageText: "gwsctl config get <key>",
		ArgsUsage: "<key>",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().First()
			if key == "" {
				return errors.New("a key is required")
			}
			mm := GetMeta(cmd)
			value, err := mm.Config.Get(key)
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
}

func configSetCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "set one value by dotted path and save",
		UsageText: "gwsctl config set <key> <value>",
		ArgsUsage: "<key> <value>",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().First()
			value := cmd.Args().Get(1)
			if key == "" || value == "" {
				return errors.New("a key and value are required")
			}
			mm := GetMeta(cmd)
			if err := mm.Config.Set(key, value); err != nil {
				return err
			}
			path, err := mm.Config.Save()
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}
}

func configListCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "print the whole effective config tree",
		UsageText: "gwsctl config list",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			b, err := yamlv3.Marshal(mm.Config.Data)
			if err != nil {
				return err
			}
			fmt.Print(string(b))
			return nil
		},
	}
}

func configResetCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "reset",
		Usage:     "restore builtin defaults and save",
		UsageText: "gwsctl config reset",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			mm.Config.Reset()
			path, err := mm.Config.Save()
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}
}

func configSaveCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "write the effective config to its file",
		UsageText: "gwsctl config save",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			path, err := mm.Config.Save()
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}
}

func configExportCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write the effective config to another file",
		UsageText: "gwsctl config export <path> [--format yaml|json]",
		ArgsUsage: "<path>",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "yaml or json",
				Value: "yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("a path is required")
			}
			mm := GetMeta(cmd)
			return mm.Config.Export(path, cmd.String("format"))
		},
	}
}

func configImportCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "preview and apply settings from another YAML file",
		UsageText: "gwsctl config import <path> [--apply]",
		ArgsUsage: "<path>",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "apply the changes instead of just previewing them",
			},
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "color the diff",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("a path is required")
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}
			var incoming map[string]interface{}
			if err := yamlv3.Unmarshal(raw, &incoming); err != nil {
				return fmt.Errorf("failed to parse import file: %w", err)
			}

			mm := GetMeta(cmd)
			text, changed, err := previewConfigDiff(mm.Config.Data, incoming, cmd.Bool("color"))
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println("No changes.")
				return nil
			}
			fmt.Print(text)

			if !cmd.Bool("apply") {
				fmt.Println("\nRun again with --apply to take these changes.")
				return nil
			}

			config.Merge(mm.Config.Data, incoming)
			saved, err := mm.Config.Save()
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", saved)
			return nil
		},
	}
}

// previewConfigDiff renders what an import would change as a JSON diff.
func previewConfigDiff(current, incoming map[string]interface{}, color bool) (string, bool, error) {
	left, err := json.Marshal(current)
	if err != nil {
		return "", false, err
	}

	// Round-trip through JSON so merging for the preview cannot reach back
	// into the live tree's nested maps.
	var merged map[string]interface{}
	if err := json.Unmarshal(left, &merged); err != nil {
		return "", false, err
	}
	config.Merge(merged, incoming)
	right, err := json.Marshal(merged)
	if err != nil {
		return "", false, err
	}

	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("failed to diff configs: %w", err)
	}
	if !d.Modified() {
		return "", false, nil
	}

	var leftMap map[string]interface{}
	_ = json.Unmarshal(left, &leftMap)
	text, err := formatter.NewAsciiFormatter(leftMap, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	}).Format(d)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func configValidateCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check the config for unknown keys and bad values",
		UsageText: "gwsctl config validate",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			problems := mm.Config.Validate()
			if len(problems) == 0 {
				fmt.Println("Config OK.")
				return nil
			}
			for _, p := range problems {
				fmt.Println(p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
}

func configEditCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "open the config file in $EDITOR",
		UsageText: "gwsctl config edit",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}

			mm := GetMeta(cmd)
			path := mm.Config.Source
			if path == "" {
				// No file yet. Save the defaults first so there is
				// something to edit.
				var err error
				if path, err = mm.Config.Save(); err != nil {
					return err
				}
			}

			c := exec.CommandContext(ctx, editor, path)
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			return c.Run()
		},
	}
}
