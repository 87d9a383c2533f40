// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ai

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// EmailInfo is the slice of an email the analyzers need. The service layer
// fills it from whatever fetch format it used.
type EmailInfo struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
}

var summaryUrgencyKeywords = []string{
	"urgent", "asap", "immediately", "emergency", "critical", "important",
	"deadline", "overdue", "action required", "response needed", "urgent action",
}

var summaryPositiveKeywords = []string{
	"great", "excellent", "amazing", "wonderful", "fantastic", "perfect",
	"love", "awesome", "brilliant", "outstanding", "superb",
}

var summaryNegativeKeywords = []string{
	"problem", "issue", "error", "bug", "failed", "broken", "wrong",
	"terrible", "awful", "horrible", "disappointed", "frustrated",
}

var (
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	digitRe    = regexp.MustCompile(`\d`)
	properRe   = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
)

// EmailSummary condenses one email into its signal: the key points, a
// sentiment score in [-1,1], an urgency score in [0,1], and suggested
// replies.
type EmailSummary struct {
	ID           string   `jsonapi:"primary,email-summaries"`
	Summary      string   `jsonapi:"attr,summary"`
	Sentiment    float64  `jsonapi:"attr,sentiment"`
	Urgency      float64  `jsonapi:"attr,urgency"`
	ActionItems  []string `jsonapi:"attr,action-items"`
	SmartReplies []string `jsonapi:"attr,smart-replies"`
	KeyPoints    []string `jsonapi:"attr,key-points"`
}

// Summarize analyzes a single email.
func Summarize(email EmailInfo) *EmailSummary {
	body := email.Snippet
	if body == "" {
		body = email.Body
	}

	keyPoints := extractKeyPoints(email.Subject, body)
	sentiment := scoreSentiment(email.Subject, body)
	urgency := scoreUrgency(email.Subject, body)
	actionItems := summaryActionItems(body)

	return &EmailSummary{
		ID:           email.ID,
		Summary:      composeSummary(keyPoints, sentiment),
		Sentiment:    sentiment,
		Urgency:      urgency,
		ActionItems:  actionItems,
		SmartReplies: repliesFor(sentiment, urgency, actionItems),
		KeyPoints:    keyPoints,
	}
}

// InboxSummary aggregates summaries across a batch of emails.
type InboxSummary struct {
	ID          string           `jsonapi:"primary,inbox-summaries"`
	Summary     string           `jsonapi:"attr,summary"`
	TotalEmails int              `jsonapi:"attr,total-emails"`
	Urgent      int              `jsonapi:"attr,urgent-emails"`
	Sentiment   map[string]int   `jsonapi:"attr,sentiment-breakdown"`
	Themes      []string         `jsonapi:"attr,themes"`
	TopSenders  []SenderActivity `jsonapi:"attr,top-senders"`
	Insights    []string         `jsonapi:"attr,insights"`
}

// SenderActivity pairs a sender with how many emails they account for.
type SenderActivity struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

// SummarizeAll analyzes a batch of emails and rolls the results up into an
// inbox-level summary.
func SummarizeAll(emails []EmailInfo) *InboxSummary {
	if len(emails) == 0 {
		return &InboxSummary{
			ID:        "inbox",
			Summary:   "No emails to summarize",
			Sentiment: map[string]int{},
		}
	}

	summaries := make([]*EmailSummary, 0, len(emails))
	for _, email := range emails {
		summaries = append(summaries, Summarize(email))
	}

	total := len(emails)

	// Urgency of the inbox is counted by subject keyword, not by the
	// summarizer's blended score: "URGENT: ..." is urgent even when the
	// body is calm.
	urgent := 0
	for _, email := range emails {
		if Urgent(email.Subject) {
			urgent++
		}
	}

	positive, negative := 0, 0
	for _, s := range summaries {
		if s.Sentiment > 0.3 {
			positive++
		}
		if s.Sentiment < -0.3 {
			negative++
		}
	}

	tone := "Mixed or negative tone."
	if positive > negative {
		tone = "Positive tone dominates."
	}

	subjects := make([]string, 0, total)
	senders := make([]string, 0, total)
	for _, email := range emails {
		subjects = append(subjects, email.Subject)
		senders = append(senders, email.From)
	}

	return &InboxSummary{
		ID:          "inbox",
		Summary:     fmt.Sprintf("You have %d emails. %d are urgent. %s", total, urgent, tone),
		TotalEmails: total,
		Urgent:      urgent,
		Sentiment: map[string]int{
			"positive": positive,
			"negative": negative,
			"neutral":  total - positive - negative,
		},
		Themes:     extractThemes(subjects),
		TopSenders: topCounts(senders, 5),
		Insights:   inboxInsights(summaries),
	}
}

func extractKeyPoints(subject, body string) []string {
	var keyPoints []string

	if len(subject) > 10 && !strings.HasPrefix(strings.ToLower(subject), "re:") {
		keyPoints = append(keyPoints, subject)
	}

	for _, sentence := range sentenceRe.Split(body, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 20 && importantSentence(sentence) {
			keyPoints = append(keyPoints, sentence)
		}
		if len(keyPoints) == 3 {
			break
		}
	}

	return keyPoints
}

func importantSentence(sentence string) bool {
	lower := strings.ToLower(sentence)

	if containsAny(lower, summaryUrgencyKeywords) {
		return true
	}
	if containsAny(lower, []string{"please", "need to", "must", "should", "required"}) {
		return true
	}
	if digitRe.MatchString(sentence) {
		return true
	}

	return len(properRe.FindAllString(sentence, 3)) >= 2
}

func scoreSentiment(subject, body string) float64 {
	text := strings.ToLower(subject + " " + body)

	positive := countHits(text, summaryPositiveKeywords)
	negative := countHits(text, summaryNegativeKeywords)

	denom := positive + negative
	if denom < 1 {
		denom = 1
	}

	return round2(float64(positive-negative) / float64(denom))
}

func scoreUrgency(subject, body string) float64 {
	text := strings.ToLower(subject + " " + body)

	score := float64(countHits(text, summaryUrgencyKeywords))
	if containsAny(text, []string{"asap", "as soon as possible", "immediately"}) {
		score += 2
	}
	if containsAny(text, []string{"deadline", "due date", "overdue"}) {
		score += 2
	}
	score += float64(strings.Count(text, "?")) * 0.5

	return round2(math.Min(score/5, 1.0))
}

func summaryActionItems(body string) []string {
	var items []string
	for _, sentence := range sentenceRe.Split(body, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 15 {
			continue
		}
		if containsAny(strings.ToLower(sentence), []string{"please", "need to", "must", "should", "required", "action"}) {
			items = append(items, sentence)
			if len(items) == 3 {
				break
			}
		}
	}
	return items
}

func repliesFor(sentiment, urgency float64, actionItems []string) []string {
	var replies []string

	switch {
	case urgency > 0.7:
		replies = append(replies,
			"I'll look into this right away.",
			"Thanks for bringing this to my attention. I'll respond shortly.")
	case sentiment > 0.3:
		replies = append(replies,
			"That's great news! Thank you for sharing.",
			"Wonderful! I appreciate this update.")
	case sentiment < -0.3:
		replies = append(replies,
			"I understand your concern. Let me help resolve this.",
			"Thanks for letting me know. I'll address this issue.")
	default:
		replies = append(replies,
			"Thank you for the information.",
			"Got it. I'll review this and follow up if needed.")
	}

	if len(actionItems) > 0 {
		replies = append(replies, "I'll take care of the action items mentioned.")
	}

	if len(replies) > 3 {
		replies = replies[:3]
	}
	return replies
}

func composeSummary(keyPoints []string, sentiment float64) string {
	if len(keyPoints) == 0 {
		return "No significant content to summarize."
	}

	summary := keyPoints[0]
	if len(keyPoints) > 1 {
		summary += " Also: " + keyPoints[1]
	}

	if sentiment > 0.3 {
		summary += " (Positive tone)"
	} else if sentiment < -0.3 {
		summary += " (Negative tone)"
	}

	return summary
}

func extractThemes(subjects []string) []string {
	skip := map[string]bool{"this": true, "that": true, "with": true, "from": true, "your": true}

	counts := map[string]int{}
	for _, subject := range subjects {
		for _, word := range wordRe.FindAllString(strings.ToLower(subject), -1) {
			if len(word) > 3 {
				counts[word]++
			}
		}
	}

	type wc struct {
		word  string
		count int
	}
	ranked := make([]wc, 0, len(counts))
	for w, c := range counts {
		if c > 1 && !skip[w] {
			ranked = append(ranked, wc{w, c})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	var themes []string
	for _, r := range ranked {
		themes = append(themes, r.word)
		if len(themes) == 5 {
			break
		}
	}
	return themes
}

func topCounts(values []string, n int) []SenderActivity {
	counts := map[string]int{}
	for _, v := range values {
		counts[v]++
	}

	ranked := make([]SenderActivity, 0, len(counts))
	for v, c := range counts {
		ranked = append(ranked, SenderActivity{Sender: v, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Sender < ranked[j].Sender
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func inboxInsights(summaries []*EmailSummary) []string {
	var insights []string

	total := len(summaries)
	if total == 0 {
		return insights
	}

	urgent := 0
	actions := 0
	sentimentSum := 0.0
	for _, s := range summaries {
		if s.Urgency > 0.7 {
			urgent++
		}
		actions += len(s.ActionItems)
		sentimentSum += s.Sentiment
	}

	if urgent > 0 {
		insights = append(insights, fmt.Sprintf("%d emails require immediate attention", urgent))
	}
	if actions > 0 {
		insights = append(insights, fmt.Sprintf("%d action items across all emails", actions))
	}

	avg := sentimentSum / float64(total)
	if avg > 0.3 {
		insights = append(insights, "Overall positive sentiment in communications")
	} else if avg < -0.3 {
		insights = append(insights, "Overall negative sentiment - may need attention")
	}

	return insights
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
