// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		subject  string
		category string
	}{
		{"URGENT: server down", "urgent"},
		{"Project deadline moved", "work"},
		{"Happy birthday!", "personal"},
		{"Unsubscribe from this newsletter", "newsletter"},
		{"Reminder: dentist on Tuesday", "notification"},
		{"hello there", "general"},
		// urgent outranks work and notification for mixed subjects.
		{"Important project update", "urgent"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.category, Categorize(tt.subject))
		})
	}
}

func TestCategoryKeywords(t *testing.T) {
	assert.Equal(t,
		[]string{"project", "meeting", "deadline", "report", "client", "business"},
		CategoryKeywords("work"))
	assert.Nil(t, CategoryKeywords("nonsense"))
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "widgets.example", Domain("Jane Smith <jane@widgets.example>"))
	assert.Equal(t, "plain.example", Domain("bob@plain.example"))
	assert.Equal(t, "unknown", Domain("no address here"))
}

func TestUrgent(t *testing.T) {
	assert.True(t, Urgent("Please reply ASAP"))
	assert.False(t, Urgent("Weekly digest"))

	// "important" raises the category but not the urgency flag.
	assert.False(t, Urgent("Important update"))
}

func TestRequiresResponse(t *testing.T) {
	assert.True(t, RequiresResponse("Question about the rollout"))
	assert.False(t, RequiresResponse("FYI only"))
}

func TestTone(t *testing.T) {
	assert.Equal(t, "positive", Tone("Thank you, this is great"))
	assert.Equal(t, "negative", Tone("There is a problem and an issue"))
	assert.Equal(t, "neutral", Tone("FYI: information about the rollout"))

	// Equal positive and negative counts fall back to neutral.
	assert.Equal(t, "neutral", Tone("great problem"))
}

func TestActionItems(t *testing.T) {
	body := "Please send the numbers by Friday. The weather is nice. " +
		"You should also review the deck. No."

	items := ActionItems(body)
	assert.Equal(t, []string{
		"Please send the numbers by Friday",
		"You should also review the deck",
	}, items)
}

func TestActionItems_CappedAtThree(t *testing.T) {
	body := "Please do the first thing. Please do the second thing. " +
		"Please do the third thing. Please do the fourth thing."

	assert.Len(t, ActionItems(body), 3)
}

func TestSmartReplies(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		first   string
	}{
		{
			"urgent",
			"URGENT: outage",
			"production is down",
			"I'll look into this right away and get back to you shortly.",
		},
		{
			"question",
			"hello",
			"Can you help? I have a question about the rollout",
			"I'll review your questions and provide a detailed response.",
		},
		{
			"meeting",
			"Sync next week",
			"can we schedule something",
			"I'm available for this meeting. Please send the calendar invitation.",
		},
		{
			"gratitude",
			"hi",
			"thank you so much for the quick turnaround",
			"You're welcome! Happy to help.",
		},
		{
			"document",
			"hi",
			"see the attachment for details",
			"I've received the document and will review it shortly.",
		},
		{
			"default",
			"hi",
			"just checking in",
			"Thank you for your message. I'll review and respond appropriately.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies := SmartReplies(tt.subject, tt.body)
			assert.Len(t, replies, 3)
			assert.Equal(t, tt.first, replies[0])
		})
	}
}
