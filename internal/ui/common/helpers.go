package common

import (
	"strings"

	"github.com/palemoky/kang357/internal/game/card"
)

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// FormatCards 以 "9♠ 9♣" 的形式展示一组牌
func FormatCards(cards []card.Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, CardStyle(c).Render(c.String()))
	}
	return strings.Join(parts, " ")
}

// ReasonText 游戏结束原因
func ReasonText(reason string) string {
	switch reason {
	case "special":
		return "特殊牌型直接获胜"
	case "showdown":
		return "杠！摊牌比点数"
	case "abandon":
		return "其他玩家离开"
	default:
		return reason
	}
}
