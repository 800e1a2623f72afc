package convert

import (
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Suit:  c.Suit.String(),
		Value: c.Value.String(),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card，无法识别时返回错误
func InfoToCard(info protocol.CardInfo) (card.Card, error) {
	return card.Parse(info.Suit, info.Value)
}

// InfosToCards 将 []protocol.CardInfo 转换为 []card.Card
func InfosToCards(infos []protocol.CardInfo) ([]card.Card, error) {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		c, err := InfoToCard(info)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}

// HandsToInfos 转换摊牌时公开的所有手牌
func HandsToInfos(hands map[string][]card.Card) map[string][]protocol.CardInfo {
	if len(hands) == 0 {
		return nil
	}
	result := make(map[string][]protocol.CardInfo, len(hands))
	for id, hand := range hands {
		result[id] = CardsToInfos(hand)
	}
	return result
}
