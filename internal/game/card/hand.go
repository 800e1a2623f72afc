package card

import "slices"

// Contains 手牌中是否有这张牌
func Contains(hand []Card, c Card) bool {
	return slices.Contains(hand, c)
}

// FindValue 查找手牌中第一张指定点数的牌
func FindValue(hand []Card, v Value) (Card, bool) {
	for _, c := range hand {
		if c.Value == v {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveCards 从手牌中移除指定的牌，返回新切片
func RemoveCards(hand, toRemove []Card) []Card {
	result := make([]Card, 0, len(hand))
	for _, hCard := range hand {
		if !slices.Contains(toRemove, hCard) {
			result = append(result, hCard)
		}
	}
	return result
}

// SameValue 所有牌点数是否相同（空切片视为 false）
func SameValue(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Value != cards[0].Value {
			return false
		}
	}
	return true
}

// Points 手牌总分
func Points(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Points()
	}
	return total
}
