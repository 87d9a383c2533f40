// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the SQLite-backed result cache that sits between
// the service layer and the Google APIs. Keys are derived from the calling
// operation and its arguments, entries carry a TTL, and a cache failure is
// never allowed to fail the command that triggered it.
package cache
