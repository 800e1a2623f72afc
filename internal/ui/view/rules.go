package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kang357/internal/ui/common"
)

// RenderGameRules renders the game rules.
func RenderGameRules() string {
	var sb strings.Builder

	sb.WriteString("【游戏目标】\n")
	sb.WriteString("发牌时拿到特殊牌型直接获胜，否则在自己回合喊「杠」，手牌点数最低者获胜\n\n")

	sb.WriteString("【点数】\n")
	sb.WriteString("2-10 按面值，J=11 Q=12 K=13 A=1\n\n")

	sb.WriteString("【特殊牌型（由高到低）】\n")
	sb.WriteString("• 358：全是 3、5、8 (x16)\n")
	sb.WriteString("• Scala Reale：含 10 到 A 的同花顺 (x15)\n")
	sb.WriteString("• Scala Colore：同花顺 (x10)\n")
	sb.WriteString("• Poker：四张同点 (x10)\n")
	sb.WriteString("• Colore：同花 (x5)\n")
	sb.WriteString("• Scala：顺子 (x5)\n")
	sb.WriteString("• 50：全是 10/J/Q/K/A (x5)\n")
	sb.WriteString("• Tris：三张同点 (x3)\n\n")

	sb.WriteString("【回合】\n")
	sb.WriteString("1. 每人 5 张，轮到你时先摸一张，再打出 1~2 张同点牌\n")
	sb.WriteString("2. 下家手里有同点牌时可以不摸牌直接跟出\n")
	sb.WriteString("3. 轮到你时随时可以喊「杠」摊牌结算\n\n")

	sb.WriteString("【快捷键】\n")
	sb.WriteString("• D：摸牌  • ←→/1-6：选择  • 空格：选牌  • 回车：出牌\n")
	sb.WriteString("• R：跟牌  • K：杠  • C：记牌器  • H：帮助  • /：聊天\n")
	sb.WriteString("• ESC：返回上一级或退出")

	return common.BoxStyle.Render(sb.String())
}

// RulesView renders the full rules view.
func RulesView(width int) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("📖 游戏规则")))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, RenderGameRules()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "按 ESC 返回大厅"))

	return sb.String()
}
