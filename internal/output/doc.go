// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns query results into what the user asked for: it
// filters, transforms, and sorts jsonapi datasets and renders them as a
// table, JSON, YAML, or the raw payload.
package output
