// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/meta"
)

func CacheCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect and manage the response cache",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			cacheStatusCommand(m),
			cacheStatsCommand(m),
			cacheClearCommand(m),
			cacheVacuumCommand(m),
			cacheConfigureCommand(m),
		},
	}
}

func cacheStatusCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show whether caching is on and where it lives",
		UsageText: "gwsctl cache status",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			if !mm.Cache.Enabled() {
				fmt.Println("Cache: disabled")
				return nil
			}

			sum := mm.Cache.Store().Stats(ctx)
			fmt.Printf("Cache: enabled at %s\n", sum.Location)
			fmt.Printf("  %d entries, %s on disk, TTL %s\n",
				sum.TotalItems,
				humanize.Bytes(uint64(sum.SizeOnDisk)),
				mm.Cache.TTL())
			return nil
		},
	}
}

func cacheStatsCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "stats",
		Usage:     "show hit, miss, and eviction counters",
		UsageText: "gwsctl cache stats [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "service",
				Usage: "tag the stats with one service's namespace",
			},
		},
		Meta: m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "cache") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(cache.Summary{})) {
				return nil
			}

			mm := GetMeta(cmd)
			var sum cache.Summary
			if service := cmd.String("service"); service != "" {
				sum = mm.Cache.Service(service).Stats(ctx)
			} else {
				sum = mm.Cache.Store().Stats(ctx)
				sum.ID = "cache"
			}
			sum.Enabled = mm.Cache.Enabled()

			al := BuildAttrs(cmd,
				"enabled", "hits", "misses", "sets", "evictions",
				"hit_rate_percent", "total_items", "size_on_disk", "location")
			return EmitJSONAPISlice(&sum, al, cmd)
		},
	}
	return qcb.Build()
}

func cacheClearCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "drop cached entries, all of them or one service's",
		UsageText: "gwsctl cache clear [--service S]",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "service",
				Usage: "clear only this service's namespace",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			if service := cmd.String("service"); service != "" {
				n := mm.Cache.Service(service).Invalidate(ctx, "")
				fmt.Printf("Cleared %d %s entries.\n", n, service)
				return nil
			}
			if mm.Cache.Store().Clear(ctx) {
				fmt.Println("Cache cleared.")
			}
			return nil
		},
	}
}

func cacheVacuumCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "vacuum",
		Usage:     "sweep expired entries and compact the store",
		UsageText: "gwsctl cache vacuum",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			if mm.Cache.Store().Vacuum(ctx) {
				fmt.Println("Cache vacuumed.")
			}
			return nil
		},
	}
}

func cacheConfigureCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "configure",
		Usage:     "persist cache settings to the config file",
		UsageText: "gwsctl cache configure [--ttl N] [--dir D] [--enabled|--disabled]",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "ttl",
				Usage: "default entry lifetime in seconds",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory to keep the store in",
			},
			&cli.BoolFlag{
				Name:  "enabled",
				Usage: "turn caching on",
			},
			&cli.BoolFlag{
				Name:  "disabled",
				Usage: "turn caching off",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			cfg := mm.Config

			enabled := mm.Cache.Enabled()
			if cmd.Bool("enabled") {
				enabled = true
			}
			if cmd.Bool("disabled") {
				enabled = false
			}

			ttl := mm.Cache.TTL()
			if n := int(cmd.Int("ttl")); n > 0 {
				ttl = time.Duration(n) * time.Second
				if err := cfg.Set("cache.ttl", fmt.Sprintf("%d", n)); err != nil {
					return err
				}
			}
			if dir := cmd.String("dir"); dir != "" {
				if err := cfg.Set("cache.dir", dir); err != nil {
					return err
				}
			}
			if err := cfg.Set("cache.enabled", fmt.Sprintf("%t", enabled)); err != nil {
				return err
			}

			path, err := cfg.Save()
			if err != nil {
				return err
			}

			if err := mm.Cache.Configure(ttl, cmd.String("dir"), enabled); err != nil {
				return fmt.Errorf("cache settings saved to %s, but the cache could not be opened: %w", path, err)
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}
}
