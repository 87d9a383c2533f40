// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ai

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Intents recognized by ParseCommand, checked in order. The first pattern
// that matches wins, so the broader calendar and email intents deliberately
// come ahead of the narrower ones.
const (
	IntentCalendarSearch = "calendar_search"
	IntentEmailSearch    = "email_search"
	IntentEmailSend      = "email_send"
	IntentCalendarCreate = "calendar_create"
	IntentAnalytics      = "analytics"
	IntentSummarize      = "summarize"
	IntentDocsSearch     = "docs_search"
	IntentDocsCreate     = "docs_create"
	IntentUnknown        = "unknown"
)

type intentMatcher struct {
	intent   string
	patterns []*regexp.Regexp
}

var intentMatchers = []intentMatcher{
	{IntentCalendarSearch, compileAll(
		`(?i)(show|find|search|list).*calendar`,
		`(?i)(meetings?|events?|appointments?)`,
		`(?i)what.*(?:do|have|scheduled)`,
		`(?i)(today|tomorrow|this week|next week)`,
	)},
	{IntentEmailSearch, compileAll(
		`(?i)(show|find|search|list).*email`,
		`(?i)(emails?|messages?|inbox)`,
		`(?i)(unread|important|urgent)`,
		`(?i)from (.+)`,
		`(?i)subject (.+)`,
	)},
	{IntentEmailSend, compileAll(
		`(?i)(send|write|compose).*email`,
		`(?i)email (.+)`,
		`(?i)(tell|message) (.+)`,
	)},
	{IntentCalendarCreate, compileAll(
		`(?i)(create|schedule|set up|book).*meeting`,
		`(?i)(add|make).*appointment`,
		`(?i)(schedule|book).*call`,
	)},
	{IntentAnalytics, compileAll(
		`(?i)(analytics|insights|summary|report)`,
		`(?i)(how many|how much|statistics)`,
		`(?i)(productivity|performance)`,
	)},
	{IntentSummarize, compileAll(
		`(?i)(summarize|summary|recap)`,
		`(?i)(what happened|catch me up)`,
		`(?i)(brief|overview)`,
	)},
	{IntentDocsSearch, compileAll(
		`(?i)(find|search|look for).*document`,
		`(?i)(docs?|documents?|files?)`,
		`(?i)open.*document`,
	)},
	{IntentDocsCreate, compileAll(
		`(?i)(create|make|write).*document`,
		`(?i)(new|start).*document`,
		`(?i)document.*about`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(e))
	}
	return res
}

var (
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	personRe = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
	wordRe   = regexp.MustCompile(`\b\w+\b`)

	fromRe    = regexp.MustCompile(`(?i)from\s+(.+?)(?:\s|$)`)
	subjectRe = regexp.MustCompile(`(?i)subject\s+(.+?)(?:\s|$)`)
	bodyRe    = regexp.MustCompile(`(?i)(?:email|tell|message)\s+(.+?)\s+(?:that|saying)`)
	titleRe   = regexp.MustCompile(`(?i)(?:meeting|appointment|call)\s+(?:with\s+)?(.+?)(?:\s+(?:at|on|for|tomorrow|today)|$)`)
	clockRe   = regexp.MustCompile(`(?i)(?:at|on)\s+(\d{1,2}:\d{2}\s*(?:am|pm)?)`)
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "show": true, "find": true,
	"search": true, "list": true, "get": true, "tell": true, "me": true,
	"what": true, "when": true, "where": true, "who": true, "why": true,
	"how": true, "my": true, "your": true, "our": true, "their": true,
}

// TimeEntity is a natural-language time phrase resolved against the clock
// the caller passed in.
type TimeEntity struct {
	Phrase string    `json:"phrase"`
	Value  time.Time `json:"value"`
}

// Entities are the concrete fragments pulled out of a query.
type Entities struct {
	Time     *TimeEntity `json:"time,omitempty"`
	Emails   []string    `json:"emails,omitempty"`
	People   []string    `json:"people,omitempty"`
	Keywords []string    `json:"keywords,omitempty"`
}

func (e Entities) count() int {
	n := 0
	if e.Time != nil {
		n++
	}
	if len(e.Emails) > 0 {
		n++
	}
	if len(e.People) > 0 {
		n++
	}
	if len(e.Keywords) > 0 {
		n++
	}
	return n
}

// Parsed is the structured reading of a natural-language query.
type Parsed struct {
	ID         string            `jsonapi:"primary,parsed-queries"`
	Intent     string            `jsonapi:"attr,intent"`
	Entities   Entities          `jsonapi:"attr,entities"`
	Params     map[string]string `jsonapi:"attr,params"`
	Query      string            `jsonapi:"attr,query"`
	Confidence float64           `jsonapi:"attr,confidence"`
	Suggestion string            `jsonapi:"attr,suggestion"`
}

// ParseCommand turns a natural-language query into an intent, the entities
// that support it, and a runnable gwsctl command line. now anchors relative
// phrases like "tomorrow" and "next week".
func ParseCommand(now time.Time, query string) *Parsed {
	query = strings.TrimSpace(query)

	intent := detectIntent(query)
	entities := extractEntities(now, query)
	params := buildParams(now, intent, entities, query)

	p := &Parsed{
		ID:         "query",
		Intent:     intent,
		Entities:   entities,
		Params:     params,
		Query:      query,
		Confidence: confidence(intent, entities),
	}
	p.Suggestion = suggest(p)

	return p
}

func detectIntent(query string) string {
	for _, m := range intentMatchers {
		for _, re := range m.patterns {
			if re.MatchString(query) {
				return m.intent
			}
		}
	}
	return IntentUnknown
}

func extractEntities(now time.Time, query string) Entities {
	var entities Entities

	lower := strings.ToLower(query)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := midnight.AddDate(0, 0, -int((midnight.Weekday()+6)%7))

	phrases := []struct {
		phrase string
		value  time.Time
	}{
		{"today", midnight},
		{"tomorrow", midnight.AddDate(0, 0, 1)},
		{"yesterday", midnight.AddDate(0, 0, -1)},
		{"this week", weekStart},
		{"next week", weekStart.AddDate(0, 0, 7)},
		{"last week", weekStart.AddDate(0, 0, -7)},
	}
	for _, p := range phrases {
		if strings.Contains(lower, p.phrase) {
			entities.Time = &TimeEntity{Phrase: p.phrase, Value: p.value}
			break
		}
	}

	entities.Emails = emailRe.FindAllString(query, -1)
	entities.People = personRe.FindAllString(query, -1)
	entities.Keywords = Keywords(query)

	return entities
}

// Keywords returns the significant words of a query, stop words removed,
// capped at ten.
func Keywords(query string) []string {
	var keywords []string
	for _, word := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if len(word) > 2 && !stopWords[word] {
			keywords = append(keywords, word)
		}
	}
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	return keywords
}

func buildParams(now time.Time, intent string, entities Entities, query string) map[string]string {
	params := map[string]string{}
	lower := strings.ToLower(query)

	switch intent {
	case IntentCalendarSearch:
		if entities.Time != nil {
			params["time_min"] = entities.Time.Value.Format("2006-01-02")
			switch entities.Time.Phrase {
			case "today", "tomorrow":
				params["time_max"] = entities.Time.Value.AddDate(0, 0, 1).Format("2006-01-02")
			}
		}
		if len(entities.Keywords) > 0 {
			params["query"] = strings.Join(entities.Keywords, " ")
		}

	case IntentEmailSearch:
		switch {
		case strings.Contains(lower, "unread"):
			params["query"] = "is:unread"
		case strings.Contains(lower, "urgent") || strings.Contains(lower, "important"):
			params["query"] = "is:important OR urgent"
		case strings.Contains(lower, "from"):
			if m := fromRe.FindStringSubmatch(query); m != nil {
				params["query"] = "from:" + m[1]
			}
		case strings.Contains(lower, "subject"):
			if m := subjectRe.FindStringSubmatch(query); m != nil {
				params["query"] = "subject:" + m[1]
			}
		case len(entities.Keywords) > 0:
			params["query"] = strings.Join(entities.Keywords, " ")
		}

	case IntentEmailSend:
		if len(entities.Emails) > 0 {
			params["to"] = entities.Emails[0]
		}
		if m := bodyRe.FindStringSubmatch(query); m != nil {
			params["body"] = m[1]
		}
		if m := subjectRe.FindStringSubmatch(query); m != nil {
			params["subject"] = m[1]
		}

	case IntentCalendarCreate:
		if m := titleRe.FindStringSubmatch(query); m != nil {
			params["title"] = strings.TrimSpace(m[1])
		}
		if m := clockRe.FindStringSubmatch(query); m != nil {
			if t, err := time.Parse("3:04 pm", strings.ToLower(m[1])); err == nil {
				start := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
				params["start"] = start.Format("2006-01-02 15:04")
				params["end"] = start.Add(time.Hour).Format("2006-01-02 15:04")
			}
		}

	case IntentAnalytics:
		switch {
		case strings.Contains(lower, "productivity"):
			params["type"] = "productivity"
		case strings.Contains(lower, "email"):
			params["type"] = "email"
		case strings.Contains(lower, "calendar"):
			params["type"] = "calendar"
		default:
			params["type"] = "overview"
		}

	case IntentSummarize:
		switch {
		case strings.Contains(lower, "today"):
			params["period"] = "today"
		case strings.Contains(lower, "week"):
			params["period"] = "week"
		default:
			params["period"] = "recent"
		}
	}

	return params
}

func confidence(intent string, entities Entities) float64 {
	base := 0.5
	if intent == IntentUnknown {
		base = 0.2
	}

	if intent == IntentCalendarSearch || intent == IntentEmailSearch {
		base += 0.2
	}

	c := base + float64(entities.count())*0.1
	c = math.Min(c, 1.0)

	return math.Round(c*100) / 100
}

func suggest(p *Parsed) string {
	switch p.Intent {
	case IntentCalendarSearch:
		parts := []string{"gwsctl", "calendar", "list"}
		if q, ok := p.Params["query"]; ok {
			parts = append(parts, "--search", fmt.Sprintf("%q", q))
		}
		return strings.Join(parts, " ")

	case IntentEmailSearch:
		parts := []string{"gwsctl", "gmail", "list"}
		if q, ok := p.Params["query"]; ok {
			parts = append(parts, "--query", fmt.Sprintf("%q", q))
		}
		return strings.Join(parts, " ")

	case IntentEmailSend:
		parts := []string{"gwsctl", "gmail", "send"}
		for _, flag := range []string{"to", "subject", "body"} {
			if v, ok := p.Params[flag]; ok {
				parts = append(parts, "--"+flag, fmt.Sprintf("%q", v))
			}
		}
		return strings.Join(parts, " ")

	case IntentCalendarCreate:
		parts := []string{"gwsctl", "calendar", "create"}
		if v, ok := p.Params["title"]; ok {
			parts = append(parts, "--title", fmt.Sprintf("%q", v))
		}
		if v, ok := p.Params["start"]; ok {
			parts = append(parts, "--start", fmt.Sprintf("%q", v))
		}
		if v, ok := p.Params["end"]; ok {
			parts = append(parts, "--end", fmt.Sprintf("%q", v))
		}
		return strings.Join(parts, " ")

	case IntentAnalytics:
		parts := []string{"gwsctl", "ai", "insights"}
		if v, ok := p.Params["type"]; ok {
			parts = append(parts, "--type", v)
		}
		return strings.Join(parts, " ")

	case IntentSummarize:
		parts := []string{"gwsctl", "ai", "summarize"}
		if v, ok := p.Params["period"]; ok {
			parts = append(parts, "--period", v)
		}
		return strings.Join(parts, " ")

	case IntentDocsSearch:
		parts := []string{"gwsctl", "docs", "search"}
		if len(p.Entities.Keywords) > 0 {
			parts = append(parts, fmt.Sprintf("%q", strings.Join(p.Entities.Keywords, " ")))
		}
		return strings.Join(parts, " ")

	case IntentDocsCreate:
		parts := []string{"gwsctl", "docs", "create"}
		if len(p.Entities.Keywords) > 0 {
			parts = append(parts, "--title", fmt.Sprintf("%q", strings.Join(p.Entities.Keywords, " ")))
		}
		return strings.Join(parts, " ")
	}

	return "# could not understand: " + p.Query
}

// SortedParams returns the params as "k=v" lines in stable order, for
// display.
func (p *Parsed) SortedParams() []string {
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+p.Params[k])
	}
	return out
}
