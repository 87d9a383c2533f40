// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

// Package google implements the OAuth 2.0 installed-app flow and the thin
// REST client the service packages share for calling the Workspace APIs.
package google
