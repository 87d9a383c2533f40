// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/config"
	"github.com/staranto/gwsctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the gwsctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load()
	cfg.Namespace = ns

	configDir, _ := config.DefaultDir()

	meta := meta.Meta{
		Args:      args,
		Cache:     newCacheManager(),
		Config:    cfg,
		ConfigDir: configDir,
		Context:   ctx,
	}

	app := &cli.Command{
		Name:  "gwsctl",
		Usage: "Google Workspace Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "gwsctl version info",
				HideDefault: true,
			},
		},
		After: func(ctx context.Context, c *cli.Command) error {
			return meta.Cache.Close()
		},
	}

	app.Commands = append(app.Commands,
		AuthCommandBuilder(app, meta),
		CalendarCommandBuilder(app, meta),
		GmailCommandBuilder(app, meta),
		SheetsCommandBuilder(app, meta),
		DocsCommandBuilder(app, meta),
		AICommandBuilder(app, meta),
		CacheCommandBuilder(app, meta),
		ConfigCommandBuilder(app, meta),
		InteractiveCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text, group by group.
	for _, group := range app.Commands {
		for _, cmd := range group.Commands {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
		}
	}

	return app, nil
}

// newCacheManager builds the one cache manager of the process from config,
// with GWSCTL_CACHE able to veto.
func newCacheManager() *cache.Manager {
	enabled, _ := config.GetBool("cache.enabled", true)
	ttl, _ := config.GetInt("cache.ttl", 300)
	dir, _ := config.GetString("cache.dir", "")

	base, ok := cache.Dir(dir)
	if !ok {
		enabled = false
	}
	if !cache.EnvEnabled() {
		enabled = false
	}

	return cache.NewManager(time.Duration(ttl)*time.Second, base, enabled)
}
