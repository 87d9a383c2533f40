// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package version carries the release identity stamped at build time.
package version

// Version is overridden by the release workflow with
// -ldflags "-X github.com/staranto/gwsctl/internal/version.Version=vX.Y.Z".
var Version = "v0.0.0-dev"
