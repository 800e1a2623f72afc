// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	gameClient "github.com/palemoky/kang357/internal/client"
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/ui/common"
	"github.com/palemoky/kang357/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into OnlineModel.
func CreateViewRenderer() func(model.Model, model.GamePhase) string {
	return func(m model.Model, phase model.GamePhase) string {
		switch phase {
		case model.PhaseLobby:
			return LobbyView(m)
		case model.PhaseRoomList:
			return RoomListView(m)
		case model.PhaseWaiting:
			return WaitingView(m)
		case model.PhasePlaying:
			return GameView(m)
		case model.PhaseGameOver:
			return GameOverView(m)
		case model.PhaseLeaderboard:
			return LeaderboardView(m)
		case model.PhaseStats:
			return StatsView(m)
		case model.PhaseRules:
			return RulesView(m.Width())
		default:
			return "Unknown phase"
		}
	}
}

// WaitingView renders the waiting room view.
func WaitingView(m model.Model) string {
	width := m.Width()
	game := m.Game()
	state := game.State()

	var sb strings.Builder

	title := common.TitleStyle(fmt.Sprintf("🏠 房间: %s", state.RoomCode))
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	var playerList strings.Builder
	playerList.WriteString("玩家列表:\n")
	for _, p := range state.Players {
		icon := common.PlayerIcon
		if p.Host {
			icon = common.HostIcon
		}
		meStr := ""
		if p.ID == m.PlayerID() {
			meStr = " (你)"
		}
		fmt.Fprintf(&playerList, "  %s %s%s\n", icon, p.Name, meStr)
	}
	fmt.Fprintf(&playerList, "\n当前人数: %d", len(state.Players))

	playerBox := common.BoxStyle.Render(playerList.String())
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, playerBox))
	sb.WriteString("\n\n")

	hint := "等待房主开始游戏，满员自动开局 | / 聊天 | ESC 离开"
	if state.HostID() == m.PlayerID() {
		hint = "按 S 开始游戏，满员自动开局 | / 聊天 | ESC 离开"
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.HintStyle.Render(hint)))
	sb.WriteString(renderNotification(m))

	sb.WriteString(renderChat(m))
	return sb.String()
}

// GameView renders the main game view.
func GameView(m model.Model) string {
	width := m.Width()
	height := m.Height()
	game := m.Game()
	state := game.State()
	playerID := m.PlayerID()

	if game.ShowingHelp() {
		return lipgloss.Place(width, height,
			lipgloss.Center, lipgloss.Center,
			RenderGameRules(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	var sb strings.Builder

	// Top section - card counter and last discard
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderTopSection(state, game.CardCounterEnabled())))
	sb.WriteString("\n")

	// Middle section - players
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderPlayers(state, playerID)))
	sb.WriteString("\n")

	// Player hand
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderPlayerHand(game)))
	sb.WriteString("\n")

	sb.WriteString(renderPrompt(m))
	sb.WriteString(renderNotification(m))
	sb.WriteString(renderChat(m))

	return sb.String()
}

// GameOverView renders the game over view.
func GameOverView(m model.Model) string {
	width := m.Width()
	state := m.Game().State()
	result := state.Result

	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("🎮 游戏结束!")))
	sb.WriteString("\n\n")

	if result == nil {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "按回车返回大厅"))
		return sb.String()
	}

	headline := fmt.Sprintf("%s %s 获胜!", common.WinnerIcon, state.PlayerName(result.WinnerID))
	if result.WinnerID == m.PlayerID() {
		headline = fmt.Sprintf("%s 你赢了!", common.WinnerIcon)
	}
	detail := common.ReasonText(result.Reason)
	if result.Combination != "" {
		detail += fmt.Sprintf(" · %s x%d", result.Combination, result.Multiplier)
	}

	var body strings.Builder
	body.WriteString(headline + "\n" + detail + "\n")

	if len(result.Hands) > 0 {
		body.WriteString("\n")
		for _, p := range state.Players {
			hand, ok := result.Hands[p.ID]
			if !ok {
				continue
			}
			line := fmt.Sprintf("%-10s %s", common.TruncateName(p.Name, 10), common.FormatCards(hand))
			if score, ok := result.Scores[p.ID]; ok {
				line += fmt.Sprintf("  %d 点", score)
			}
			body.WriteString(line + "\n")
		}
	}

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Padding(0, 2).Render(body.String())))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.HintStyle.Render("按回车返回大厅 | / 聊天")))
	sb.WriteString(renderChat(m))
	return sb.String()
}

// --- Helper rendering functions ---

func renderTopSection(state *gameClient.GameState, cardCounterEnabled bool) string {
	lastDiscard := "(还没有人出牌)"
	if len(state.LastDiscard) > 0 {
		lastDiscard = fmt.Sprintf("%s 出牌\n%s", state.PlayerName(state.LastDiscardBy), renderCards(state.LastDiscard, nil, -1))
	}
	discardBox := common.BoxStyle.Width(24).Render(lastDiscard)

	if cardCounterEnabled && state.CardCounter != nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, renderCardCounter(state.CardCounter), "  ", discardBox)
	}
	return discardBox
}

func renderCardCounter(counter *gameClient.CardCounter) string {
	var names, counts []string
	for _, v := range card.Values {
		names = append(names, fmt.Sprintf("%-2s", v.String()))
		counts = append(counts, fmt.Sprintf("%-2d", counter.Remaining(v)))
	}

	var sb strings.Builder
	sb.WriteString("剩余张数\n")
	sb.WriteString(strings.Join(names, "│") + "\n")
	sb.WriteString(strings.Repeat("─", len(card.Values)*3-1) + "\n")
	sb.WriteString(strings.Join(counts, "│"))
	return common.BoxStyle.Render(sb.String())
}

func renderPlayers(state *gameClient.GameState, myPlayerID string) string {
	parts := make([]string, 0, len(state.Players))
	for _, p := range state.Players {
		if p.ID == myPlayerID {
			continue
		}

		icon := common.PlayerIcon
		nameStyle := lipgloss.NewStyle()
		if state.CurrentTurn == p.ID {
			icon = common.TurnIcon
			nameStyle = common.TurnStyle
		}

		info := fmt.Sprintf("%s %s\n🃏 %d张", icon, nameStyle.Render(common.TruncateName(p.Name, 10)), state.HandCounts[p.ID])
		parts = append(parts, common.BoxStyle.Width(16).Render(info))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderPlayerHand(game model.GameAccessor) string {
	state := game.State()
	if len(state.Hand) == 0 {
		return common.BoxStyle.Render("(无手牌)")
	}

	title := fmt.Sprintf("我的手牌 (%d张, %d点)", len(state.Hand), state.Points())
	if state.Special != nil {
		title += fmt.Sprintf(" ✨%s", state.Special.Combination)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, title, renderCards(state.Hand, game.IsSelected, game.Cursor()))
	return common.BoxStyle.Render(content)
}

// renderCards 渲染一排牌：第一行点数、第二行花色、第三行光标
func renderCards(cards []card.Card, isSelected func(card.Card) bool, cursor int) string {
	var valueRow, suitRow, markRow strings.Builder
	for i, c := range cards {
		style := common.CardStyle(c)
		if isSelected != nil && isSelected(c) {
			style = common.SelectedStyle
		}
		style = style.Align(lipgloss.Center).Margin(0, 1)
		valueRow.WriteString(style.Render(fmt.Sprintf("%-2s", c.Value.String())))
		suitRow.WriteString(style.Render(fmt.Sprintf("%-2s", c.Suit.String())))

		mark := "    "
		if i == cursor {
			mark = " ^^ "
		}
		markRow.WriteString(mark)
	}
	if cursor < 0 {
		return lipgloss.JoinVertical(lipgloss.Center, valueRow.String(), suitRow.String())
	}
	return lipgloss.JoinVertical(lipgloss.Center, valueRow.String(), suitRow.String(), markRow.String())
}

func renderPrompt(m model.Model) string {
	state := m.Game().State()
	var sb strings.Builder

	switch {
	case state.IsMyTurn(m.PlayerID()) && state.ReactionCard != nil:
		fmt.Fprintf(&sb, "⚡ 你有 %s，可以直接跟出! R 跟牌 | 空格选牌 回车出牌 | K 杠\n", common.FormatCards([]card.Card{*state.ReactionCard}))
	case state.IsMyTurn(m.PlayerID()) && state.TurnPhase == gameClient.PhaseDraw:
		sb.WriteString("⏳ 轮到你摸牌! D 摸牌 | K 杠\n")
	case state.IsMyTurn(m.PlayerID()):
		sb.WriteString("⏳ 请出 1~2 张同点牌! ←→ 移动 空格选牌 回车出牌 | K 杠\n")
	case state.CurrentTurn != "":
		fmt.Fprintf(&sb, "等待 %s ...\n", state.PlayerName(state.CurrentTurn))
	}

	sb.WriteString(common.HintStyle.Render(fmt.Sprintf("C 记牌器 | H 帮助 | / 聊天 | 延迟 %dms", m.Latency())))

	centered := lipgloss.NewStyle().
		Width(m.Width()).
		AlignHorizontal(lipgloss.Center).
		Render(sb.String())
	return common.PromptStyle.Render(centered)
}

func renderNotification(m model.Model) string {
	notification := m.GetCurrentNotification()
	if notification == nil || notification.Type == model.NotifyOnlineCount {
		return ""
	}
	return "\n" + lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.WarnStyle.Render(notification.Message))
}

func renderChat(m model.Model) string {
	game := m.Game()
	input := game.ChatInput()

	chatBox := RenderChatBox(game.ChatHistory())
	if chatBox == "" && !input.Focused() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	if chatBox != "" {
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, chatBox))
		sb.WriteString("\n")
	}
	if input.Focused() {
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, input.View()))
	}
	return sb.String()
}
