package client

import "github.com/palemoky/kang357/internal/game/card"

// CardCounter tracks cards of each value the player has not yet seen
type CardCounter struct {
	remaining map[card.Value]int
}

// NewCardCounter creates and initializes a new card counter
func NewCardCounter() *CardCounter {
	cc := &CardCounter{
		remaining: make(map[card.Value]int),
	}
	cc.Reset()
	return cc
}

// Reset initializes counter with a full 52-card deck
func (cc *CardCounter) Reset() {
	for _, v := range card.Values {
		cc.remaining[v] = len(card.Suits)
	}
}

// DeductCards removes seen cards from the counter
func (cc *CardCounter) DeductCards(cards []card.Card) {
	for _, c := range cards {
		if cc.remaining[c.Value] > 0 {
			cc.remaining[c.Value]--
		}
	}
}

// Remaining returns how many unseen cards of value v are left
func (cc *CardCounter) Remaining(v card.Value) int {
	return cc.remaining[v]
}

// GetRemaining returns the remaining card counts
func (cc *CardCounter) GetRemaining() map[card.Value]int {
	return cc.remaining
}
