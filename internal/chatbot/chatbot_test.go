package chatbot

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bot := New(logger)

	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{"wheat fertilizer", "Which fertilizer is best for wheat?", "For wheat cultivation"},
		{"hindi wheat", "gehun ke liye fertilizer", "For wheat cultivation"},
		{"paddy fertilizer", "FERTILIZER for paddy", "For rice/paddy"},
		{"general khad", "konsa khad dalu", "General fertilizer guidelines"},
		{"organic pests", "organic pest control?", "Organic pest control"},
		{"insects", "insects on my crop", "Common pest solutions"},
		{"mandi", "aaj ka mandi bhav", "mandi prices"},
		{"wheat season", "wheat sowing season", "Wheat planting season"},
		{"soil", "how to improve soil", "Improve soil health"},
		{"drip", "drip setup", "Water management"},
		{"schemes", "any government yojana?", "Major agricultural schemes"},
		{"greeting", "hi there", "Namaste!"},
		{"thanks", "thank you", "You're welcome"},
		{"unknown", "tell me a joke", "I'm your farming assistant!"},
		{"hi inside a word is not a greeting", "this is odd", "I'm your farming assistant!"},
		{"empty", "", "I'm your farming assistant!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, bot.Reply(tt.message), tt.contains)
		})
	}
}

func TestReplyFirstRuleWins(t *testing.T) {
	bot := New(logrus.New())
	// fertilizer outranks prices even though both keywords are present
	assert.Contains(t, bot.Reply("fertilizer price for cotton"), "For cotton cultivation")
}
