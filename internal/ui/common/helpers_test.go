package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/kang357/internal/game/card"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short name", "Bob", 10, "Bob"},
		{"exact length", "Alice", 5, "Alice"},
		{"long name", "VeryLongPlayerName", 8, "VeryLon…"},
		{"chinese", "快乐的大熊猫", 4, "快乐的…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxLen))
		})
	}
}

func TestCardStyle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RedStyle, CardStyle(card.Card{Suit: card.Heart, Value: card.Two}))
	assert.Equal(t, RedStyle, CardStyle(card.Card{Suit: card.Diamond, Value: card.Two}))
	assert.Equal(t, BlackStyle, CardStyle(card.Card{Suit: card.Spade, Value: card.Two}))
	assert.Equal(t, BlackStyle, CardStyle(card.Card{Suit: card.Club, Value: card.Two}))
}

func TestFormatCards(t *testing.T) {
	t.Parallel()

	out := FormatCards([]card.Card{{Suit: card.Spade, Value: card.Nine}, {Suit: card.Heart, Value: card.Ace}})
	assert.Contains(t, out, "9♠")
	assert.Contains(t, out, "A♥")
	assert.Empty(t, FormatCards(nil))
}

func TestReasonText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "杠！摊牌比点数", ReasonText("showdown"))
	assert.Equal(t, "其他玩家离开", ReasonText("abandon"))
	assert.Equal(t, "mystery", ReasonText("mystery"))
}
