// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package ai implements the heuristic analysis behind the ai, insights, and
// analytics commands: keyword-driven intent parsing for natural language
// queries, email categorization, sentiment and urgency scoring, smart reply
// suggestion, and calendar pattern analysis. Everything here is pure
// computation over data the service layer has already fetched, so it can be
// exercised without credentials or network access.
package ai
