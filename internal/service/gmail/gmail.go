// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package gmail talks to the Gmail v1 API, reading through the cache and
// invalidating the operations a write makes stale.
package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/config"
	"github.com/staranto/gwsctl/internal/google"
	"github.com/tidwall/gjson"
)

const defaultMaxResults = 50

// ErrNoRecipient is returned when a send has nobody to go to.
var ErrNoRecipient = errors.New("a recipient is required")

// Message is a mail message flattened for display. Body is only populated
// by Message(); listings carry the snippet.
type Message struct {
	ID       string   `jsonapi:"primary,messages"`
	ThreadID string   `jsonapi:"attr,thread-id,omitempty"`
	Subject  string   `jsonapi:"attr,subject"`
	From     string   `jsonapi:"attr,from"`
	To       string   `jsonapi:"attr,to,omitempty"`
	Date     string   `jsonapi:"attr,date,omitempty"`
	Snippet  string   `jsonapi:"attr,snippet,omitempty"`
	Body     string   `jsonapi:"attr,body,omitempty"`
	Unread   bool     `jsonapi:"attr,unread"`
	Labels   []string `jsonapi:"attr,labels,omitempty"`
}

// Label is one Gmail label with its message counts.
type Label struct {
	ID     string `jsonapi:"primary,labels"`
	Name   string `jsonapi:"attr,name"`
	Type   string `jsonapi:"attr,type,omitempty"`
	Total  int64  `jsonapi:"attr,messages-total"`
	Unread int64  `jsonapi:"attr,messages-unread"`
}

// SendOptions carries the fields of an outgoing message.
type SendOptions struct {
	To      []string
	Cc      []string
	Subject string
	Body    string
}

// Service answers mail reads through the cache and pushes writes to the
// API.
type Service struct {
	client *google.Client
	mgr    *cache.Manager
	sc     *cache.ServiceCache
}

func New(client *google.Client, mgr *cache.Manager) *Service {
	return &Service{client: client, mgr: mgr, sc: mgr.Service("gmail")}
}

// Messages lists messages matching a Gmail search query, newest first.
// An empty query lists the inbox.
func (gs *Service) Messages(ctx context.Context, query string, maxResults int) ([]*Message, error) {
	if maxResults <= 0 {
		maxResults, _ = config.GetInt("gmail.default_max_results", defaultMaxResults)
	}

	out, err := cache.Through(ctx, gs.sc, "list_messages", gs.mgr.TTL(), func() ([]*Message, error) {
		return gs.fetchMessages(ctx, query, maxResults)
	}, query, maxResults)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "gmail", Operation: "list messages", Resource: "mailbox",
	})
}

func (gs *Service) fetchMessages(ctx context.Context, query string, maxResults int) ([]*Message, error) {
	u := google.GmailBase + "/users/me/messages?maxResults=" + strconv.Itoa(maxResults)
	if query != "" {
		u += "&q=" + url.QueryEscape(query)
	}

	raw, err := gs.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var messages []*Message
	for _, item := range gjson.GetBytes(raw, "messages").Array() {
		msg, err := gs.fetchMetadata(ctx, item.Get("id").String())
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// fetchMetadata reads the headers and snippet of one message without
// pulling its body.
func (gs *Service) fetchMetadata(ctx context.Context, id string) (*Message, error) {
	u := google.GmailBase + "/users/me/messages/" + url.PathEscape(id) +
		"?format=metadata&metadataHeaders=Subject&metadataHeaders=From&metadataHeaders=To&metadataHeaders=Date"

	raw, err := gs.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	return messageFromJSON(gjson.ParseBytes(raw)), nil
}

// Message reads one full message, body included.
func (gs *Service) Message(ctx context.Context, id string) (*Message, error) {
	out, err := cache.Through(ctx, gs.sc, "get_message", gs.mgr.TTL(), func() (*Message, error) {
		raw, err := gs.client.Get(ctx, google.GmailBase+"/users/me/messages/"+url.PathEscape(id)+"?format=full")
		if err != nil {
			return nil, err
		}

		doc := gjson.ParseBytes(raw)
		msg := messageFromJSON(doc)
		msg.Body = bodyFromPayload(doc.Get("payload"))
		return msg, nil
	}, id)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "gmail", Operation: "get message", Resource: "message " + id,
	})
}

// Send delivers a plain-text message and invalidates the listings it just
// made stale.
func (gs *Service) Send(ctx context.Context, opts SendOptions) (string, error) {
	ectx := google.ErrorContext{Service: "gmail", Operation: "send message", Resource: "mailbox"}

	if len(opts.To) == 0 {
		return "", google.Friendly(ErrNoRecipient, ectx)
	}

	if opts.Body != "" {
		if sig, _ := config.GetString("gmail.signature", ""); sig != "" {
			opts.Body += "\n\n" + sig
		}
	}

	raw, err := gs.client.Post(ctx, google.GmailBase+"/users/me/messages/send", map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(rfc822(opts))),
	})
	if err != nil {
		return "", google.Friendly(err, ectx)
	}

	gs.sc.Invalidate(ctx, "list_messages")

	return gjson.GetBytes(raw, "id").String(), nil
}

// Delete moves a message to the trash.
func (gs *Service) Delete(ctx context.Context, id string) error {
	_, err := gs.client.Post(ctx, google.GmailBase+"/users/me/messages/"+url.PathEscape(id)+"/trash", nil)
	if err != nil {
		return google.Friendly(err, google.ErrorContext{
			Service: "gmail", Operation: "delete message", Resource: "message " + id,
		})
	}

	gs.sc.Invalidate(ctx, "list_messages")
	gs.sc.Invalidate(ctx, "get_message")
	return nil
}

// MarkRead clears the UNREAD label.
func (gs *Service) MarkRead(ctx context.Context, id string) error {
	return gs.modifyLabels(ctx, id, nil, []string{"UNREAD"})
}

// MarkUnread restores the UNREAD label.
func (gs *Service) MarkUnread(ctx context.Context, id string) error {
	return gs.modifyLabels(ctx, id, []string{"UNREAD"}, nil)
}

func (gs *Service) modifyLabels(ctx context.Context, id string, add, remove []string) error {
	body := map[string]any{}
	if len(add) > 0 {
		body["addLabelIds"] = add
	}
	if len(remove) > 0 {
		body["removeLabelIds"] = remove
	}

	_, err := gs.client.Post(ctx, google.GmailBase+"/users/me/messages/"+url.PathEscape(id)+"/modify", body)
	if err != nil {
		return google.Friendly(err, google.ErrorContext{
			Service: "gmail", Operation: "modify labels", Resource: "message " + id,
		})
	}

	gs.sc.Invalidate(ctx, "list_messages")
	gs.sc.Invalidate(ctx, "get_message")
	return nil
}

// Labels lists the mailbox's labels with their counts.
func (gs *Service) Labels(ctx context.Context) ([]*Label, error) {
	out, err := cache.Through(ctx, gs.sc, "list_labels", gs.mgr.TTL(), func() ([]*Label, error) {
		raw, err := gs.client.Get(ctx, google.GmailBase+"/users/me/labels")
		if err != nil {
			return nil, err
		}

		var labels []*Label
		for _, item := range gjson.GetBytes(raw, "labels").Array() {
			labels = append(labels, &Label{
				ID:     item.Get("id").String(),
				Name:   item.Get("name").String(),
				Type:   item.Get("type").String(),
				Total:  item.Get("messagesTotal").Int(),
				Unread: item.Get("messagesUnread").Int(),
			})
		}
		return labels, nil
	})

	return out, google.Friendly(err, google.ErrorContext{
		Service: "gmail", Operation: "list labels", Resource: "mailbox",
	})
}

func messageFromJSON(doc gjson.Result) *Message {
	unread := false
	var labels []string
	for _, l := range doc.Get("labelIds").Array() {
		labels = append(labels, l.String())
		if l.String() == "UNREAD" {
			unread = true
		}
	}

	subject := header(doc, "Subject")
	if subject == "" {
		subject = "(no subject)"
	}

	return &Message{
		ID:       doc.Get("id").String(),
		ThreadID: doc.Get("threadId").String(),
		Subject:  subject,
		From:     header(doc, "From"),
		To:       header(doc, "To"),
		Date:     header(doc, "Date"),
		Snippet:  doc.Get("snippet").String(),
		Unread:   unread,
		Labels:   labels,
	}
}

// header digs one named header out of the payload. Gmail returns them as
// an array of name/value pairs in arbitrary order.
func header(doc gjson.Result, name string) string {
	for _, h := range doc.Get("payload.headers").Array() {
		if strings.EqualFold(h.Get("name").String(), name) {
			return h.Get("value").String()
		}
	}
	return ""
}

// bodyFromPayload walks a message payload for its text. A text/plain part
// wins over text/html; multipart containers are descended into.
func bodyFromPayload(payload gjson.Result) string {
	if data := payload.Get("body.data").String(); data != "" {
		return decodeBody(data)
	}

	var html string
	for _, part := range payload.Get("parts").Array() {
		switch mime := part.Get("mimeType").String(); {
		case mime == "text/plain":
			if data := part.Get("body.data").String(); data != "" {
				return decodeBody(data)
			}
		case mime == "text/html":
			if data := part.Get("body.data").String(); data != "" && html == "" {
				html = decodeBody(data)
			}
		case strings.HasPrefix(mime, "multipart/"):
			if nested := bodyFromPayload(part); nested != "" {
				return nested
			}
		}
	}
	return html
}

// decodeBody handles both the URL-safe alphabet Gmail uses and the padded
// form some senders produce.
func decodeBody(data string) string {
	if raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "=")); err == nil {
		return string(raw)
	}
	if raw, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(raw)
	}
	return ""
}

func rfc822(opts SendOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(opts.To, ", "))
	if len(opts.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(opts.Cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", opts.Subject)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(opts.Body)
	return b.String()
}
