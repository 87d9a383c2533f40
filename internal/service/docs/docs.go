// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package docs talks to the Google Docs v1 API (and Drive, for listings
// and file management), reading through the cache and invalidating the
// operations a write makes stale.
package docs

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/google"
	"github.com/tidwall/gjson"
)

// Document reads are the dearest fetch in the system (the whole body
// comes back), so they live longer than the default TTL.
const documentTTL = 10 * time.Minute

// ErrNoTitle is returned when a document is created without a name.
var ErrNoTitle = errors.New("a title is required")

// DocumentInfo is one document as the listing and info operations present
// it.
type DocumentInfo struct {
	ID       string `jsonapi:"primary,documents"`
	Title    string `jsonapi:"attr,title"`
	URL      string `jsonapi:"attr,url,omitempty"`
	Created  string `jsonapi:"attr,created,omitempty"`
	Modified string `jsonapi:"attr,modified,omitempty"`
}

// Document is a full document with its body flattened to plain text.
type Document struct {
	ID    string `jsonapi:"primary,documents"`
	Title string `jsonapi:"attr,title"`
	Body  string `jsonapi:"attr,body"`
	Words int    `jsonapi:"attr,words"`
}

// Service answers document reads through the cache and pushes writes to
// the API.
type Service struct {
	client *google.Client
	mgr    *cache.Manager
	sc     *cache.ServiceCache
}

func New(client *google.Client, mgr *cache.Manager) *Service {
	return &Service{client: client, mgr: mgr, sc: mgr.Service("docs")}
}

// Documents lists the user's documents via the Drive files API, most
// recently modified first.
func (ds *Service) Documents(ctx context.Context, maxResults int) ([]*DocumentInfo, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	out, err := cache.Through(ctx, ds.sc, "list_documents", ds.mgr.TTL(), func() ([]*DocumentInfo, error) {
		return ds.fetchListing(ctx, "", maxResults)
	}, maxResults)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "docs", Operation: "list documents", Resource: "drive",
	})
}

// Search lists documents whose name contains the query.
func (ds *Service) Search(ctx context.Context, query string, maxResults int) ([]*DocumentInfo, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	out, err := cache.Through(ctx, ds.sc, "search_documents", ds.mgr.TTL(), func() ([]*DocumentInfo, error) {
		return ds.fetchListing(ctx, query, maxResults)
	}, query, maxResults)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "docs", Operation: "search documents", Resource: "drive",
	})
}

func (ds *Service) fetchListing(ctx context.Context, nameContains string, maxResults int) ([]*DocumentInfo, error) {
	q := "mimeType='application/vnd.google-apps.document' and trashed=false"
	if nameContains != "" {
		q += " and name contains '" + strings.ReplaceAll(nameContains, "'", `\'`) + "'"
	}

	u := google.DriveBase + "/files?q=" + url.QueryEscape(q) +
		"&orderBy=modifiedTime+desc&pageSize=" + strconv.Itoa(maxResults) +
		"&fields=" + url.QueryEscape("files(id,name,createdTime,modifiedTime,webViewLink)")

	raw, err := ds.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var documents []*DocumentInfo
	for _, item := range gjson.GetBytes(raw, "files").Array() {
		documents = append(documents, &DocumentInfo{
			ID:       item.Get("id").String(),
			Title:    item.Get("name").String(),
			URL:      item.Get("webViewLink").String(),
			Created:  item.Get("createdTime").String(),
			Modified: item.Get("modifiedTime").String(),
		})
	}
	return documents, nil
}

// Document reads one document with its body flattened to plain text.
func (ds *Service) Document(ctx context.Context, documentID string) (*Document, error) {
	out, err := cache.Through(ctx, ds.sc, "get_document", documentTTL, func() (*Document, error) {
		raw, err := ds.client.Get(ctx, google.DocsBase+"/documents/"+url.PathEscape(documentID))
		if err != nil {
			return nil, err
		}

		doc := gjson.ParseBytes(raw)
		body := flattenBody(doc.Get("body.content"))
		return &Document{
			ID:    doc.Get("documentId").String(),
			Title: doc.Get("title").String(),
			Body:  body,
			Words: len(strings.Fields(body)),
		}, nil
	}, documentID)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "docs", Operation: "get document", Resource: "document " + documentID,
	})
}

// Info reads a document's Drive metadata without pulling its body.
func (ds *Service) Info(ctx context.Context, documentID string) (*DocumentInfo, error) {
	out, err := cache.Through(ctx, ds.sc, "get_info", ds.mgr.TTL(), func() (*DocumentInfo, error) {
		u := google.DriveBase + "/files/" + url.PathEscape(documentID) +
			"?fields=" + url.QueryEscape("id,name,createdTime,modifiedTime,webViewLink")

		raw, err := ds.client.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		doc := gjson.ParseBytes(raw)
		return &DocumentInfo{
			ID:       doc.Get("id").String(),
			Title:    doc.Get("name").String(),
			URL:      doc.Get("webViewLink").String(),
			Created:  doc.Get("createdTime").String(),
			Modified: doc.Get("modifiedTime").String(),
		}, nil
	}, documentID)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "docs", Operation: "get document info", Resource: "document " + documentID,
	})
}

// Create makes a new document, optionally seeded with content.
func (ds *Service) Create(ctx context.Context, title, content string) (*DocumentInfo, error) {
	ectx := google.ErrorContext{Service: "docs", Operation: "create document", Resource: "drive"}

	if title == "" {
		return nil, google.Friendly(ErrNoTitle, ectx)
	}

	raw, err := ds.client.Post(ctx, google.DocsBase+"/documents", map[string]string{"title": title})
	if err != nil {
		return nil, google.Friendly(err, ectx)
	}

	doc := gjson.ParseBytes(raw)
	info := &DocumentInfo{
		ID:    doc.Get("documentId").String(),
		Title: doc.Get("title").String(),
	}

	if content != "" {
		if err := ds.Append(ctx, info.ID, content); err != nil {
			return nil, err
		}
	}

	ds.sc.Invalidate(ctx, "list_documents")
	ds.sc.Invalidate(ctx, "search_documents")

	return info, nil
}

// Append inserts text at the end of a document.
func (ds *Service) Append(ctx context.Context, documentID, text string) error {
	u := google.DocsBase + "/documents/" + url.PathEscape(documentID) + ":batchUpdate"
	_, err := ds.client.Post(ctx, u, map[string]any{
		"requests": []map[string]any{
			{"insertText": map[string]any{
				"endOfSegmentLocation": map[string]string{"segmentId": ""},
				"text":                 text,
			}},
		},
	})
	if err != nil {
		return google.Friendly(err, google.ErrorContext{
			Service: "docs", Operation: "update document", Resource: "document " + documentID,
		})
	}

	ds.sc.Invalidate(ctx, "get_document")
	return nil
}

// Delete moves a document to the Drive trash.
func (ds *Service) Delete(ctx context.Context, documentID string) error {
	_, err := ds.client.Delete(ctx, google.DriveBase+"/files/"+url.PathEscape(documentID))
	if err != nil {
		return google.Friendly(err, google.ErrorContext{
			Service: "docs", Operation: "delete document", Resource: "document " + documentID,
		})
	}

	ds.sc.Invalidate(ctx, "list_documents")
	ds.sc.Invalidate(ctx, "search_documents")
	ds.sc.Invalidate(ctx, "get_document")
	return nil
}

// Export downloads the document converted to the named format. Supported
// formats map to Drive export MIME types; everything else is plain text.
func (ds *Service) Export(ctx context.Context, documentID, format string) ([]byte, error) {
	mime := map[string]string{
		"text": "text/plain",
		"html": "text/html",
		"pdf":  "application/pdf",
		"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}[strings.ToLower(format)]
	if mime == "" {
		mime = "text/plain"
	}

	u := google.DriveBase + "/files/" + url.PathEscape(documentID) +
		"/export?mimeType=" + url.QueryEscape(mime)

	raw, err := ds.client.Get(ctx, u)
	return raw, google.Friendly(err, google.ErrorContext{
		Service: "docs", Operation: "export document", Resource: "document " + documentID,
	})
}

// flattenBody walks the structural elements of a document body and joins
// every text run. Tables are walked cell by cell.
func flattenBody(content gjson.Result) string {
	var b strings.Builder
	for _, element := range content.Array() {
		if para := element.Get("paragraph"); para.Exists() {
			for _, pe := range para.Get("elements").Array() {
				b.WriteString(pe.Get("textRun.content").String())
			}
		}
		if table := element.Get("table"); table.Exists() {
			for _, row := range table.Get("tableRows").Array() {
				for _, cell := range row.Get("tableCells").Array() {
					b.WriteString(flattenBody(cell.Get("content")))
				}
			}
		}
	}
	return b.String()
}
