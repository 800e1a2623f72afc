//go:build !production

package session

import (
	"github.com/palemoky/kang357/internal/game/card"
)

// NewPlayingForTest 创建一局已发好指定手牌、轮到第一位玩家摸牌的会话。
// 牌堆为标准顺序去掉所有手牌后的剩余牌，摸牌从末端（♣A 一侧）开始。
func NewPlayingForTest(players []Player, hands [][]card.Card) *Session {
	s := New(Options{Capacity: len(players)})
	s.players = append(s.players, players...)
	s.hostID = players[0].ID

	var dealt []card.Card
	for i, p := range players {
		s.hands[p.ID] = append([]card.Card(nil), hands[i]...)
		dealt = append(dealt, hands[i]...)
	}
	for _, c := range card.NewDeck() {
		if !card.Contains(dealt, c) {
			s.deck = append(s.deck, c)
		}
	}
	s.phase = PhaseDraw
	return s
}
