// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package gmail

import (
	"context"
	"time"

	"github.com/staranto/gwsctl/internal/ai"
	"github.com/staranto/gwsctl/internal/cache"
	"github.com/staranto/gwsctl/internal/google"
)

const insightsTTL = 5 * time.Minute

// Advanced layers the inbox heuristics over the plain mail service. Its
// results cache under their own namespace so expiring insights never
// touches message listings.
type Advanced struct {
	svc *Service
	sc  *cache.ServiceCache
}

func NewAdvanced(svc *Service) *Advanced {
	return &Advanced{svc: svc, sc: svc.mgr.Service("gmail_advanced")}
}

// Insights summarizes the most recent maxResults inbox messages: themes,
// sentiment breakdown, urgent count, top senders.
func (ga *Advanced) Insights(ctx context.Context, maxResults int) (*ai.InboxSummary, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	out, err := cache.Through(ctx, ga.sc, "ai_email_insights", insightsTTL, func() (*ai.InboxSummary, error) {
		messages, err := ga.svc.fetchMessages(ctx, "in:inbox", maxResults)
		if err != nil {
			return nil, err
		}
		return ai.SummarizeAll(analysisEmails(messages)), nil
	}, maxResults)

	return out, google.Friendly(err, google.ErrorContext{
		Service: "gmail", Operation: "analyze inbox", Resource: "mailbox",
	})
}

// SmartReply fetches one message and suggests replies for it.
func (ga *Advanced) SmartReply(ctx context.Context, id string) (*ai.EmailSummary, error) {
	msg, err := ga.svc.Message(ctx, id)
	if err != nil {
		return nil, err
	}
	return ai.Summarize(analysisEmail(msg)), nil
}

func analysisEmails(messages []*Message) []ai.EmailInfo {
	out := make([]ai.EmailInfo, 0, len(messages))
	for _, m := range messages {
		out = append(out, analysisEmail(m))
	}
	return out
}

func analysisEmail(m *Message) ai.EmailInfo {
	return ai.EmailInfo{
		ID:      m.ID,
		Subject: m.Subject,
		From:    m.From,
		Date:    m.Date,
		Snippet: m.Snippet,
		Body:    m.Body,
	}
}
