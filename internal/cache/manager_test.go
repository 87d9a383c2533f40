// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_DisabledHandsOutNullStore(t *testing.T) {
	m := NewManager(0, "", false)
	defer func() { _ = m.Close() }()

	st := m.Store()
	_, isNull := st.(NullStore)
	assert.True(t, isNull)

	// And the null store really is inert.
	st.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := st.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, m.Enabled())
}

func TestManager_OpensDiskStoreLazily(t *testing.T) {
	m := NewManager(0, t.TempDir(), true)
	defer func() { _ = m.Close() }()

	st := m.Store()
	_, isDisk := st.(*DiskStore)
	assert.True(t, isDisk)

	// Same instance on every subsequent call.
	assert.Same(t, st, m.Store())
}

func TestManager_EnvKillSwitch(t *testing.T) {
	t.Setenv("GWSCTL_CACHE", "0")

	m := NewManager(0, t.TempDir(), true)
	defer func() { _ = m.Close() }()

	_, isNull := m.Store().(NullStore)
	assert.True(t, isNull)
	assert.False(t, m.Enabled())
}

func TestManager_ConfigureReopens(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	m := NewManager(0, dirA, true)
	defer func() { _ = m.Close() }()

	m.Service("calendar").Set(ctx, "list_events", []byte("v"), time.Hour)

	// Pointing the manager elsewhere starts from an empty store.
	assert.NoError(t, m.Configure(0, dirB, true))
	_, ok := m.Service("calendar").Get(ctx, "list_events")
	assert.False(t, ok)

	// And switching back finds the original entry still on disk.
	assert.NoError(t, m.Configure(0, dirA, true))
	_, ok = m.Service("calendar").Get(ctx, "list_events")
	assert.True(t, ok)
}

func TestManager_ConfigureCanDisable(t *testing.T) {
	m := NewManager(0, t.TempDir(), true)
	defer func() { _ = m.Close() }()

	assert.True(t, m.Enabled())
	assert.NoError(t, m.Configure(0, "", false))
	assert.False(t, m.Enabled())

	_, isNull := m.Store().(NullStore)
	assert.True(t, isNull)
}

func TestManager_ConfigureReportsUnusableDir(t *testing.T) {
	// A plain file where the cache directory should be.
	blocker := filepath.Join(t.TempDir(), "cachedir")
	assert.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	m := NewManager(0, blocker, false)
	defer func() { _ = m.Close() }()

	// The fault comes back from Configure, once, and the manager does
	// not go on claiming to cache.
	assert.Error(t, m.Configure(0, "", true))
	assert.False(t, m.Enabled())

	_, isNull := m.Store().(NullStore)
	assert.True(t, isNull)
}

func TestManager_ServicesShareOneStore(t *testing.T) {
	m := NewManager(0, t.TempDir(), true)
	defer func() { _ = m.Close() }()

	m.Service("calendar").Set(ctx, "list_events", []byte("v"), time.Hour)

	// A second view over the same namespace sees the entry.
	_, ok := m.Service("calendar").Get(ctx, "list_events")
	assert.True(t, ok)

	// The shared store counts both sides' traffic.
	sum := m.Store().Stats(ctx)
	assert.EqualValues(t, 1, sum.Sets)
	assert.EqualValues(t, 1, sum.Hits)
}

func TestManager_TTLDefaultsWhenUnset(t *testing.T) {
	m := NewManager(0, "", true)
	assert.Equal(t, DefaultTTL, m.TTL())

	m = NewManager(10*time.Minute, "", true)
	assert.Equal(t, 10*time.Minute, m.TTL())
}

func TestDir_Precedence(t *testing.T) {
	t.Setenv("GWSCTL_CACHE_DIR", "/tmp/env-cache")

	got, ok := Dir("/tmp/explicit")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/explicit", got)

	got, ok = Dir("")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/env-cache", got)
}
