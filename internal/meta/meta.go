// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
// It is the one channel app wiring uses to hand shared state (the config
// tree, the cache manager, the config directory) down to command actions.
type Meta struct {
	Args      []string
	Cache     *cache.Manager
	Config    config.Type
	ConfigDir string
	Context   context.Context
}
