// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// Base URLs for the Workspace REST APIs.
const (
	CalendarBase = "https://www.googleapis.com/calendar/v3"
	GmailBase    = "https://gmail.googleapis.com/gmail/v1"
	SheetsBase   = "https://sheets.googleapis.com/v4"
	DocsBase     = "https://docs.googleapis.com/v1"
	DriveBase    = "https://www.googleapis.com/drive/v3"
)

// APIError is a non-2xx answer from a Workspace API, with the message dug
// out of the standard error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("google api error (http %d)", e.Status)
	}
	return fmt.Sprintf("google api: %s (http %d)", e.Message, e.Status)
}

// Client is the one HTTP door to Google. Service packages format URLs and
// parse the returned JSON; the client only moves bytes and turns bad
// statuses into APIErrors.
type Client struct {
	http *http.Client
}

// NewClient builds a client over the authenticator's refreshing transport.
func NewClient(ctx context.Context, auth *Authenticator) (*Client, error) {
	hc, err := auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// NewClientWithHTTP wraps an existing http.Client. Tests use this to point
// the service layer at a local server.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

func (c *Client) Post(ctx context.Context, url string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

func (c *Client) Put(ctx context.Context, url string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, url, body)
}

func (c *Client) Patch(ctx context.Context, url string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, url, body)
}

func (c *Client) Delete(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, url, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debugf("%s %s", method, url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: gjson.GetBytes(doc.Bytes(), "error.message").String(),
		}
	}

	return doc.Bytes(), nil
}
