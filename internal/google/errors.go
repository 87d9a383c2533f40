// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package google

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorContext carries enough of the call site to phrase an actionable
// message without the caller assembling strings everywhere.
type ErrorContext struct {
	Service   string
	Operation string
	Resource  string
}

// Friendly converts transport and API errors into messages that tell the
// user what to do next instead of echoing an HTTP status at them. The
// original error stays wrapped for errors.Is/As.
func Friendly(err error, ectx ErrorContext) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNoCredentials) || errors.Is(err, ErrNotAuthenticated) {
		return fmt.Errorf("cannot %s: %w", ectx.Operation, err)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return fmt.Errorf("%s credentials were rejected; run gwsctl auth login to refresh them: %w",
				ectx.Service, err)
		case apiErr.Status == http.StatusForbidden:
			return fmt.Errorf("access to %s denied; check that the %s scope was granted and the API is enabled for your project: %w",
				ectx.Resource, ectx.Service, err)
		case apiErr.Status == http.StatusNotFound:
			return fmt.Errorf("%s not found while trying to %s: %w",
				ectx.Resource, ectx.Operation, err)
		case apiErr.Status == http.StatusTooManyRequests:
			return fmt.Errorf("%s is rate limiting requests; wait a moment and retry: %w",
				ectx.Service, err)
		case apiErr.Status >= http.StatusInternalServerError:
			return fmt.Errorf("%s is having trouble (http %d); retry shortly: %w",
				ectx.Service, apiErr.Status, err)
		}
	}

	return fmt.Errorf("failed to %s: %w", ectx.Operation, err)
}
