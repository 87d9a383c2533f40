// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ai

import (
	"regexp"
	"strings"
)

// emailCategories is checked in order; the first category with a keyword hit
// wins, so urgent outranks work, which outranks the broad buckets.
var emailCategories = []struct {
	name     string
	keywords []string
}{
	{"urgent", []string{"urgent", "asap", "immediately", "emergency", "critical", "important"}},
	{"work", []string{"project", "meeting", "deadline", "report", "client", "business"}},
	{"personal", []string{"family", "friend", "personal", "birthday", "invitation"}},
	{"newsletter", []string{"unsubscribe", "newsletter", "promotion", "sale", "offer"}},
	{"notification", []string{"notification", "alert", "reminder", "update"}},
}

var urgentKeywords = []string{"urgent", "asap", "immediately", "emergency", "critical"}

var responseKeywords = []string{"question", "please", "request", "needed", "required", "action"}

var domainRe = regexp.MustCompile(`@([^>\s]+)`)

// Categorize buckets an email by its subject line.
func Categorize(subject string) string {
	subject = strings.ToLower(subject)
	for _, cat := range emailCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(subject, kw) {
				return cat.name
			}
		}
	}
	return "general"
}

// CategoryKeywords returns the keyword list for a category, or nil if the
// category is unknown. Smart search folds these into the Gmail query.
func CategoryKeywords(category string) []string {
	for _, cat := range emailCategories {
		if cat.name == category {
			return cat.keywords
		}
	}
	return nil
}

// Domain pulls the domain out of a From header, which may be either a bare
// address or the "Name <addr@domain>" form.
func Domain(from string) string {
	if m := domainRe.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return "unknown"
}

// Urgent reports whether the subject carries an urgency keyword.
func Urgent(subject string) bool {
	return containsAny(strings.ToLower(subject), urgentKeywords)
}

// RequiresResponse reports whether the subject suggests a reply is expected.
func RequiresResponse(subject string) bool {
	return containsAny(strings.ToLower(subject), responseKeywords)
}

// Tone classifies text as positive, negative, or neutral by keyword counts.
func Tone(text string) string {
	lower := strings.ToLower(text)

	positive := countHits(lower, []string{"great", "excellent", "wonderful", "thank", "appreciate", "happy", "pleased"})
	negative := countHits(lower, []string{"problem", "issue", "error", "urgent", "concern", "difficult", "unfortunately"})
	neutral := countHits(lower, []string{"information", "update", "fyi", "note", "regarding", "about"})

	switch {
	case negative > positive:
		return "negative"
	case positive > negative && positive > neutral:
		return "positive"
	default:
		return "neutral"
	}
}

// ActionItems pulls up to three action-oriented sentences out of a body.
func ActionItems(body string) []string {
	var items []string
	for _, sentence := range strings.Split(body, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 10 {
			continue
		}
		if containsAny(strings.ToLower(sentence), []string{"please", "need to", "should", "must", "required", "action"}) {
			items = append(items, sentence)
			if len(items) == 3 {
				break
			}
		}
	}
	return items
}

// SmartReplies suggests up to three canned responses matched to what the
// email is asking for.
func SmartReplies(subject, body string) []string {
	subjectLower := strings.ToLower(subject)
	bodyLower := strings.ToLower(body)
	combined := subjectLower + " " + bodyLower

	var replies []string
	switch {
	case containsAny(combined, []string{"urgent", "asap", "immediately"}):
		replies = []string{
			"I'll look into this right away and get back to you shortly.",
			"Thank you for the urgent update. I'm prioritizing this now.",
			"Received and understood the urgency. I'm on it.",
		}
	case strings.Contains(body, "?") && containsAny(bodyLower, []string{"question", "help", "clarify"}):
		replies = []string{
			"I'll review your questions and provide a detailed response.",
			"Thank you for your questions. Let me address each one.",
			"I need to look into this further. I'll respond with the answers.",
		}
	case containsAny(combined, []string{"meeting", "call", "schedule", "appointment"}):
		replies = []string{
			"I'm available for this meeting. Please send the calendar invitation.",
			"Thank you for the meeting request. I'll check my schedule and confirm.",
			"I'd be happy to meet. Let me know what times work for you.",
		}
	case containsAny(bodyLower, []string{"thank", "appreciate", "great", "wonderful"}):
		replies = []string{
			"You're welcome! Happy to help.",
			"Thank you! I'm glad I could assist.",
			"It was my pleasure. Don't hesitate to reach out again.",
		}
	case containsAny(bodyLower, []string{"attachment", "document", "file", "review"}):
		replies = []string{
			"I've received the document and will review it shortly.",
			"Thank you for sending the file. I'll review and provide feedback.",
			"I've downloaded the attachment and will get back to you with my thoughts.",
		}
	default:
		replies = []string{
			"Thank you for your message. I'll review and respond appropriately.",
			"Received. I'll get back to you after reviewing this.",
			"Thank you for reaching out. I'll respond soon.",
		}
	}

	return replies
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func countHits(s string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			n++
		}
	}
	return n
}
