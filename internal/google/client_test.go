// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_GetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"items":[{"id":"e1"}]}`))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client())
	body, err := c.Get(context.Background(), srv.URL+"/calendars/primary/events")
	assert.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":"e1"}]}`, string(body))
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client())
	body, err := c.Post(context.Background(), srv.URL, map[string]string{"summary": "standup"})
	assert.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"summary":"standup"}`, string(body))
}

func TestClient_NonOKBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Event not found"}}`))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client())
	_, err := c.Get(context.Background(), srv.URL)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Event not found", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "Event not found")
}

func TestClient_NonJSONErrorBodyStillErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client())
	_, err := c.Get(context.Background(), srv.URL)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}

func TestClient_DeleteAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client())
	body, err := c.Delete(context.Background(), srv.URL)
	assert.NoError(t, err)
	assert.Empty(t, body)
}
