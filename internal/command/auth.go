// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gwsctl/internal/google"
	"github.com/staranto/gwsctl/internal/meta"
)

func AuthCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "authenticate against Google Workspace",
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: []*cli.Command{
			authLoginCommand(m),
			authLogoutCommand(m),
			authStatusCommand(m),
		},
	}
}

func authLoginCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "run the OAuth consent flow and store a token",
		UsageText: "gwsctl auth login [--service calendar|gmail|sheets|docs|drive]",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "service",
				Usage: "limit the grant to these services (default all)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			auth := google.NewAuthenticator(mm.ConfigDir)
			return auth.Login(ctx, os.Stdout, cmd.StringSlice("service")...)
		},
	}
}

func authLogoutCommand(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "logout",
		Usage:     "discard the stored token",
		UsageText: "gwsctl auth logout",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mm := GetMeta(cmd)
			auth := google.NewAuthenticator(mm.ConfigDir)
			if err := auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func authStatusCommand(m meta.Meta) *cli.Command {
	qcb := QueryCommandBuilder{
		Name:      "status",
		Usage:     "show the stored token's state",
		UsageText: "gwsctl auth status [options]",
		Meta:      m,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, "auth") {
				return nil
			}
			if DumpSchemaIfRequested(cmd, reflect.TypeOf(google.AuthInfo{})) {
				return nil
			}

			mm := GetMeta(cmd)
			auth := google.NewAuthenticator(mm.ConfigDir)
			info := auth.Info()

			al := BuildAttrs(cmd, "authenticated", "expired", "token_expiry", "token_path")
			return EmitJSONAPISlice(&info, al, cmd)
		},
	}
	return qcb.Build()
}
