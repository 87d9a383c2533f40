// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultTTL is applied when neither config nor the caller names one.
const DefaultTTL = 5 * time.Minute

// Manager owns the lifecycle of the process's one Store. It opens the
// store lazily on first use, swaps in a NullStore when caching is off or
// the disk store cannot be opened, and hands out per-service views.
//
// There is no package-level instance. The manager is built once at startup
// and travels to commands and services through meta.
type Manager struct {
	mu      sync.Mutex
	store   Store
	ttl     time.Duration
	dir     string
	enabled bool
}

func NewManager(ttl time.Duration, dir string, enabled bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{ttl: ttl, dir: dir, enabled: enabled}
}

// Configure resets the manager. Any open store is closed and reopened
// with the new settings. A zero ttl or empty dir keeps the old value;
// enabled is always taken. When enabling, the store is opened right here
// so an unusable directory is reported once, to the caller, instead of
// surfacing as a silent NullStore on first use. After a failure the
// manager stays disabled.
func (m *Manager) Configure(ttl time.Duration, dir string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		_ = m.store.Close()
		m.store = nil
	}
	if ttl > 0 {
		m.ttl = ttl
	}
	if dir != "" {
		m.dir = dir
	}
	m.enabled = enabled

	if !m.enabled || !EnvEnabled() {
		m.store = NullStore{}
		return nil
	}

	ds, err := m.openLocked()
	if err != nil {
		m.enabled = false
		m.store = NullStore{}
		return err
	}
	m.store = ds
	return nil
}

// Store returns the live store, opening it on first call.
func (m *Manager) Store() Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeLocked()
}

func (m *Manager) storeLocked() Store {
	if m.store != nil {
		return m.store
	}

	if !m.enabled || !EnvEnabled() {
		m.store = NullStore{}
		return m.store
	}

	ds, err := m.openLocked()
	if err != nil {
		log.WithError(err).Error("cache unavailable; continuing without it")
		m.enabled = false
		m.store = NullStore{}
		return m.store
	}

	m.store = ds
	return m.store
}

func (m *Manager) openLocked() (Store, error) {
	dir, ok := Dir(m.dir)
	if !ok {
		return nil, errors.New("cache directory could not be resolved")
	}
	return NewDiskStore(dir, m.ttl)
}

// Service returns a namespaced view over the shared store.
func (m *Manager) Service(name string) *ServiceCache {
	return NewServiceCache(name, m.Store())
}

// Enabled reports whether a real store is in use. It opens the store if
// needed, so the answer matches what Store hands out rather than what
// the configuration wished for.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, null := m.storeLocked().(NullStore)
	return !null
}

// TTL returns the default entry lifetime.
func (m *Manager) TTL() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttl
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}

// Dir resolves the base cache directory.
// Precedence:
//  1. explicit, if non-empty (config or flag)
//  2. GWSCTL_CACHE_DIR, if set and non-empty
//  3. os.UserCacheDir()/gwsctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if c, ok := os.LookupEnv("GWSCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "gwsctl"), true
	}
	return "", false
}

// EnvEnabled returns true unless GWSCTL_CACHE explicitly disables caching
// ("0"/"false").
func EnvEnabled() bool {
	enabled, _ := os.LookupEnv("GWSCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}
