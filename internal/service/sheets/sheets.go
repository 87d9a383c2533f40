// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package sheets talks to the Google Sheets v4 API (and Drive, for
// listings), reading through the cache and invalidating the operations a
// write makes stale.
package sheets

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/config"
	"github.com/staranto/gwsctl/internal/google"
	"github.com/tidwall/gjson"
)

const defaultRange = "A1:Z100"

// ErrNoTitle is returned when a spreadsheet or sheet is created without a
// name.
var ErrNoTitle = errors.New("a title is required")

// SpreadsheetInfo is one spreadsheet as the listing and info operations
// present it.
type SpreadsheetInfo struct {
	ID       string   `jsonapi:"primary,spreadsheets"`
	Title    string   `jsonapi:"attr,title"`
	URL      string   `jsonapi:"attr,url,omitempty"`
	Modified string   `jsonapi:"attr,modified,omitempty"`
	Sheets   []string `jsonapi:"attr,sheets,omitempty"`
}

// Grid is a rectangle of cell values read from a range.
type Grid struct {
	Range string     `json:"range"`
	Rows  [][]string `json:"rows"`
}

// WriteResult reports what a write, append, or clear touched.
type WriteResult struct {
	ID           string `jsonapi:"primary,write-results"`
	Range        string `jsonapi:"attr,range"`
	UpdatedCells int64  `jsonapi:"attr,updated-cells"`
	UpdatedRows  int64  `jsonapi:"attr,updated-rows"`
}

// Service answers sheet reads through the cache and pushes writes to the
// API.
type Service struct {
	client *google.Client
	mgr    *cache.Manager
	sc     *cache.ServiceCache
}

func New(client *google.Client, mgr *cache.Manager) *Service {
	return &Service{client: client, mgr: mgr, sc: mgr.Service("sheets")}
}

// Spreadsheets lists the user's spreadsheets via the Drive files API,
// most recently modified first.
func (ss *Service) Spreadsheets(ctx context.Context, maxResults int) ([]*SpreadsheetInfo, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	out, err := cache.Through(ctx, ss.sc, "list_spreadsheets", ss.mgr.TTL(), func() ([]*SpreadsheetInfo, error) {
		u := google.DriveBase + "/files?q=" +
			url.QueryEscape("mimeType='application/vnd.google-apps.spreadsheet' and trashed=false") +
			"&orderBy=modifiedTime+desc&pageSize=" + strconv.Itoa(maxResults) +
			"&fields=" + url.QueryEscape("files(id,name,modifiedTime,webViewLink)")

		raw, err := ss.client.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		var sheets []*SpreadsheetInfo
		for _, item := range gjson.GetBytes(raw, "files").Array() {
			sheets = append(sheets, &SpreadsheetInfo{
				ID:       item.Get("id").String(),
				Title:    item.Get("name").String(),
				URL:      item.Get("webViewLink").String(),
				Modified: item.Get("modifiedTime").String(),
			})
		}
		return sheets, nil
	}, maxResults)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "sheets", Operation: "list spreadsheets", Resource: "drive",
	})
}

// Info reads a spreadsheet's title and sheet names.
func (ss *Service) Info(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	out, err := cache.Through(ctx, ss.sc, "get_info", ss.mgr.TTL(), func() (*SpreadsheetInfo, error) {
		u := google.SheetsBase + "/spreadsheets/" + url.PathEscape(spreadsheetID) +
			"?fields=" + url.QueryEscape("spreadsheetId,properties.title,spreadsheetUrl,sheets.properties.title")

		raw, err := ss.client.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		doc := gjson.ParseBytes(raw)
		info := &SpreadsheetInfo{
			ID:    doc.Get("spreadsheetId").String(),
			Title: doc.Get("properties.title").String(),
			URL:   doc.Get("spreadsheetUrl").String(),
		}
		for _, sheet := range doc.Get("sheets").Array() {
			info.Sheets = append(info.Sheets, sheet.Get("properties.title").String())
		}
		return info, nil
	}, spreadsheetID)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "sheets", Operation: "get spreadsheet info", Resource: "spreadsheet " + spreadsheetID,
	})
}

// Read fetches a range of cell values. An empty rangeSpec falls back to
// the configured default range.
func (ss *Service) Read(ctx context.Context, spreadsheetID, rangeSpec string) (*Grid, error) {
	if rangeSpec == "" {
		rangeSpec, _ = config.GetString("sheets.default_range", defaultRange)
	}

	out, err := cache.Through(ctx, ss.sc, "read_range", ss.mgr.TTL(), func() (*Grid, error) {
		u := google.SheetsBase + "/spreadsheets/" + url.PathEscape(spreadsheetID) +
			"/values/" + url.PathEscape(rangeSpec)

		raw, err := ss.client.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		trim, _ := config.GetBool("sheets.auto_trim", true)

		grid := &Grid{Range: gjson.GetBytes(raw, "range").String()}
		for _, row := range gjson.GetBytes(raw, "values").Array() {
			var cells []string
			for _, cell := range row.Array() {
				v := cell.String()
				if trim {
					v = strings.TrimSpace(v)
				}
				cells = append(cells, v)
			}
			grid.Rows = append(grid.Rows, cells)
		}
		return grid, nil
	}, spreadsheetID, rangeSpec)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "sheets", Operation: "read range", Resource: "spreadsheet " + spreadsheetID,
	})
}

// Write replaces a range with the given rows.
func (ss *Service) Write(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) (*WriteResult, error) {
	u := google.SheetsBase + "/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(rangeSpec) + "?valueInputOption=USER_ENTERED"

	raw, err := ss.client.Put(ctx, u, map[string]any{"values": rows})
	if err != nil {
		return nil, google.Friendly(err, google.ErrorContext{
			Service: "sheets", Operation: "write range", Resource: "spreadsheet " + spreadsheetID,
		})
	}

	ss.invalidateValues(ctx)

	doc := gjson.ParseBytes(raw)
	return &WriteResult{
		ID:           spreadsheetID,
		Range:        doc.Get("updatedRange").String(),
		UpdatedCells: doc.Get("updatedCells").Int(),
		UpdatedRows:  doc.Get("updatedRows").Int(),
	}, nil
}

// Append adds rows after the last data of a range's table.
func (ss *Service) Append(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) (*WriteResult, error) {
	u := google.SheetsBase + "/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(rangeSpec) + ":append?valueInputOption=USER_ENTERED"

	raw, err := ss.client.Post(ctx, u, map[string]any{"values": rows})
	if err != nil {
		return nil, google.Friendly(err, google.ErrorContext{
			Service: "sheets", Operation: "append rows", Resource: "spreadsheet " + spreadsheetID,
		})
	}

	ss.invalidateValues(ctx)

	doc := gjson.ParseBytes(raw).Get("updates")
	return &WriteResult{
		ID:           spreadsheetID,
		Range:        doc.Get("updatedRange").String(),
		UpdatedCells: doc.Get("updatedCells").Int(),
		UpdatedRows:  doc.Get("updatedRows").Int(),
	}, nil
}

// Clear empties a range without touching formatting.
func (ss *Service) Clear(ctx context.Context, spreadsheetID, rangeSpec string) (*WriteResult, error) {
	u := google.SheetsBase + "/spreadsheets/" + url.PathEscape(spreadsheetID) +
		"/values/" + url.PathEscape(rangeSpec) + ":clear"

	raw, err := ss.client.Post(ctx, u, nil)
	if err != nil {
		return nil, google.Friendly(err, google.ErrorContext{
			Service: "sheets", Operation: "clear range", Resource: "spreadsheet " + spreadsheetID,
		})
	}

	ss.invalidateValues(ctx)

	return &WriteResult{
		ID:    spreadsheetID,
		Range: gjson.GetBytes(raw, "clearedRange").String(),
	}, nil
}

// Create makes a new spreadsheet and returns its identity.
func (ss *Service) Create(ctx context.Context, title string, sheetTitles []string) (*SpreadsheetInfo, error) {
	ectx := google.ErrorContext{Service: "sheets", Operation: "create spreadsheet", Resource: "drive"}

	if title == "" {
		return nil, google.Friendly(ErrNoTitle, ectx)
	}

	body := map[string]any{
		"properties": map[string]string{"title": title},
	}
	if len(sheetTitles) > 0 {
		var defs []map[string]any
		for _, st := range sheetTitles {
			defs = append(defs, map[string]any{
				"properties": map[string]string{"title": st},
			})
		}
		body["sheets"] = defs
	}

	raw, err := ss.client.Post(ctx, google.SheetsBase+"/spreadsheets", body)
	if err != nil {
		return nil, google.Friendly(err, ectx)
	}

	ss.sc.Invalidate(ctx, "list_spreadsheets")

	doc := gjson.ParseBytes(raw)
	info := &SpreadsheetInfo{
		ID:    doc.Get("spreadsheetId").String(),
		Title: doc.Get("properties.title").String(),
		URL:   doc.Get("spreadsheetUrl").String(),
	}
	for _, sheet := range doc.Get("sheets").Array() {
		info.Sheets = append(info.Sheets, sheet.Get("properties.title").String())
	}
	return info, nil
}

// AddSheet adds a tab to an existing spreadsheet.
func (ss *Service) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	ectx := google.ErrorContext{Service: "sheets", Operation: "add sheet", Resource: "spreadsheet " + spreadsheetID}

	if title == "" {
		return google.Friendly(ErrNoTitle, ectx)
	}

	u := google.SheetsBase + "/spreadsheets/" + url.PathEscape(spreadsheetID) + ":batchUpdate"
	_, err := ss.client.Post(ctx, u, map[string]any{
		"requests": []map[string]any{
			{"addSheet": map[string]any{
				"properties": map[string]string{"title": title},
			}},
		},
	})
	if err != nil {
		return google.Friendly(err, ectx)
	}

	ss.sc.Invalidate(ctx, "get_info")
	return nil
}

// invalidateValues drops every cached read after any write. Ranges overlap
// in ways cell math can't cheaply resolve, so the whole operation goes.
func (ss *Service) invalidateValues(ctx context.Context) {
	ss.sc.Invalidate(ctx, "read_range")
}
