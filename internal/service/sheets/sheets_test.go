// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package sheets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/google"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

var ctx = context.Background()

// hostRewrite sends every request to the test server regardless of the
// production host baked into the URL.
type hostRewrite struct{ target *url.URL }

func (h hostRewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = h.target.Scheme
	r.URL.Host = h.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func testService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	assert.NoError(t, err)

	mgr := cache.NewManager(0, t.TempDir(), true)
	t.Cleanup(func() { _ = mgr.Close() })

	return New(google.NewClientWithHTTP(&http.Client{Transport: hostRewrite{target}}), mgr)
}

func TestSpreadsheets_ListsViaDrive(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drive/v3/files", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), "spreadsheet")
		_, _ = w.Write([]byte(`{
			"files": [
				{"id": "s1", "name": "Budget", "modifiedTime": "2026-03-01T10:00:00Z", "webViewLink": "https://sheets.example/s1"},
				{"id": "s2", "name": "Roster"}
			]
		}`))
	}))

	sheets, err := svc.Spreadsheets(ctx, 25)
	assert.NoError(t, err)
	assert.Len(t, sheets, 2)
	assert.Equal(t, "Budget", sheets[0].Title)
	assert.Equal(t, "s2", sheets[1].ID)
}

func TestRead_CachesAndTrims(t *testing.T) {
	var calls int32
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v4/spreadsheets/s1/values/A1:B2", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"range": "Sheet1!A1:B2",
			"values": [["name ", " count"], ["alpha", "3"]]
		}`))
	}))

	grid, err := svc.Read(ctx, "s1", "A1:B2")
	assert.NoError(t, err)
	assert.Equal(t, "Sheet1!A1:B2", grid.Range)
	assert.Equal(t, [][]string{{"name", "count"}, {"alpha", "3"}}, grid.Rows)

	// The second ask is answered from cache.
	_, err = svc.Read(ctx, "s1", "A1:B2")
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWrite_InvalidatesReads(t *testing.T) {
	var wrote []byte
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"range": "Sheet1!A1:B2", "values": [["old"]]}`))
		case r.Method == http.MethodPut:
			assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
			wrote, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"updatedRange": "Sheet1!A1:B1", "updatedCells": 2, "updatedRows": 1}`))
		}
	}))

	// Warm the read cache.
	_, err := svc.Read(ctx, "s1", "A1:B2")
	assert.NoError(t, err)

	res, err := svc.Write(ctx, "s1", "A1:B1", [][]string{{"x", "y"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), res.UpdatedCells)
	assert.Equal(t, "x", gjson.GetBytes(wrote, "values.0.0").String())

	// The cached read must be gone.
	sum := svc.sc.Stats(ctx)
	assert.Equal(t, int64(1), sum.Evictions)
}

func TestAppend_ReadsUpdatesEnvelope(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/values/A1:B2:append")
		_, _ = w.Write([]byte(`{
			"updates": {"updatedRange": "Sheet1!A3:B3", "updatedCells": 2, "updatedRows": 1}
		}`))
	}))

	res, err := svc.Append(ctx, "s1", "A1:B2", [][]string{{"a", "b"}})
	assert.NoError(t, err)
	assert.Equal(t, "Sheet1!A3:B3", res.Range)
	assert.Equal(t, int64(1), res.UpdatedRows)
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/spreadsheets", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"spreadsheetId": "new-sheet",
			"properties": {"title": "Plan"},
			"sheets": [{"properties": {"title": "Q1"}}, {"properties": {"title": "Q2"}}]
		}`))
	}))

	_, err := svc.Create(ctx, "", nil)
	assert.ErrorIs(t, err, ErrNoTitle)

	info, err := svc.Create(ctx, "Plan", []string{"Q1", "Q2"})
	assert.NoError(t, err)
	assert.Equal(t, "new-sheet", info.ID)
	assert.Equal(t, []string{"Q1", "Q2"}, info.Sheets)
}

func TestAddSheet_BatchUpdate(t *testing.T) {
	var body []byte
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/spreadsheets/s1:batchUpdate", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}))

	assert.NoError(t, svc.AddSheet(ctx, "s1", "Archive"))
	assert.Equal(t, "Archive", gjson.GetBytes(body, "requests.0.addSheet.properties.title").String())

	assert.ErrorIs(t, svc.AddSheet(ctx, "s1", ""), ErrNoTitle)
}

func TestClear(t *testing.T) {
	svc := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":clear")
		_, _ = w.Write([]byte(`{"clearedRange": "Sheet1!A1:Z100"}`))
	}))

	res, err := svc.Clear(ctx, "s1", "A1:Z100")
	assert.NoError(t, err)
	assert.Equal(t, "Sheet1!A1:Z100", res.Range)
}
