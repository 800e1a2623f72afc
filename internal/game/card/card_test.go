package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Points(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    Value
		expected int
	}{
		{Two, 2},
		{Seven, 7},
		{Ten, 10},
		{Jack, 11},
		{Queen, 12},
		{King, 13},
		{Ace, 1},
	}

	for _, tt := range tests {
		t.Run(tt.value.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.value.Points())
		})
	}
}

func TestValue_RankIndex(t *testing.T) {
	t.Parallel()

	for i, v := range Values {
		assert.Equal(t, i, v.RankIndex())
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		suit     string
		value    string
		expected Card
		hasError bool
	}{
		{name: "ten of hearts", suit: "♥", value: "10", expected: Card{Suit: Heart, Value: Ten}},
		{name: "ace of spades", suit: "♠", value: "A", expected: Card{Suit: Spade, Value: Ace}},
		{name: "two of clubs", suit: "♣", value: "2", expected: Card{Suit: Club, Value: Two}},
		{name: "queen of diamonds", suit: "♦", value: "Q", expected: Card{Suit: Diamond, Value: Queen}},
		{name: "bad suit", suit: "X", value: "2", hasError: true},
		{name: "one is not a value", suit: "♠", value: "1", hasError: true},
		{name: "eleven is not a value", suit: "♠", value: "11", hasError: true},
		{name: "empty value", suit: "♠", value: "", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Parse(tt.suit, tt.value)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
			assert.Equal(t, tt.value+tt.suit, c.String())
		})
	}
}

func TestSuit_IsRed(t *testing.T) {
	t.Parallel()

	assert.True(t, Heart.IsRed())
	assert.True(t, Diamond.IsRed())
	assert.False(t, Spade.IsRed())
	assert.False(t, Club.IsRed())
}

func TestHandHelpers(t *testing.T) {
	t.Parallel()

	hand := []Card{
		{Suit: Spade, Value: Three},
		{Suit: Heart, Value: Three},
		{Suit: Club, Value: King},
	}

	assert.True(t, Contains(hand, Card{Suit: Heart, Value: Three}))
	assert.False(t, Contains(hand, Card{Suit: Diamond, Value: Three}))

	c, ok := FindValue(hand, King)
	assert.True(t, ok)
	assert.Equal(t, Card{Suit: Club, Value: King}, c)
	_, ok = FindValue(hand, Ace)
	assert.False(t, ok)

	assert.True(t, SameValue(hand[:2]))
	assert.False(t, SameValue(hand))
	assert.False(t, SameValue(nil))

	rest := RemoveCards(hand, []Card{{Suit: Spade, Value: Three}})
	assert.Equal(t, []Card{{Suit: Heart, Value: Three}, {Suit: Club, Value: King}}, rest)
	assert.Len(t, hand, 3, "original hand untouched")

	assert.Equal(t, 3+3+13, Points(hand))
}
