// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller resolves dotted attribute paths against raw JSON
// documents, with the array conveniences the output pipeline leans on.
package driller
