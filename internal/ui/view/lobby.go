package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kang357/internal/ui/common"
	"github.com/palemoky/kang357/internal/ui/model"
)

// LobbyMenu 大厅菜单，顺序与数字快捷键一致
var LobbyMenu = [model.LobbyMenuCount]string{
	"1. 创建房间",
	"2. 加入房间",
	"3. 房间列表",
	"4. 排行榜",
	"5. 我的战绩",
	"6. 游戏规则",
}

// LobbyView renders the lobby view.
func LobbyView(m model.Model) string {
	width := m.Width()
	var sb strings.Builder

	title := common.TitleStyle("🀄 三五七 · 杠")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if m.PlayerName() != "" {
		welcome := fmt.Sprintf("欢迎, %s!", m.PlayerName())
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, welcome))
		sb.WriteString("\n")
	}

	if notification := m.GetCurrentNotification(); notification != nil {
		style := common.WarnStyle
		if notification.Type == model.NotifyOnlineCount {
			style = common.OKStyle
		}
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(notification.Message)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	menuLines := []string{"请选择:", ""}
	for i, item := range LobbyMenu {
		prefix := "  "
		if i == m.Lobby().SelectedIndex() {
			prefix = "▶ "
		}
		menuLines = append(menuLines, prefix+item)
	}
	menu := common.BoxStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, menuLines...))
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))
	sb.WriteString("\n\n")

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, m.Input().View()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.HintStyle.Render("ESC 退出")))

	return lipgloss.Place(width, m.Height(), lipgloss.Center, lipgloss.Center, sb.String())
}

// RoomListView renders the room list view.
func RoomListView(m model.Model) string {
	lobby := m.Lobby()
	var sb strings.Builder

	title := common.TitleStyle("📋 可加入的房间")
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, title))
	sb.WriteString("\n\n")

	rooms := lobby.AvailableRooms()
	if len(rooms) == 0 {
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, "暂无可加入的房间\n\n按 R 刷新，ESC 返回大厅"))
		return sb.String()
	}

	var roomList strings.Builder
	for i, room := range rooms {
		prefix := "  "
		if i == lobby.SelectedRoomIdx() {
			prefix = "▶ "
		}
		fmt.Fprintf(&roomList, "%s房间 %s  (%d/%d)\n", prefix, room.RoomID, room.PlayerCount, room.MaxPlayers)
	}
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.BoxStyle.Padding(0, 2).Render(strings.TrimSuffix(roomList.String(), "\n"))))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.HintStyle.Render("↑↓ 选择 | 回车加入 | R 刷新 | ESC 返回")))
	sb.WriteString(renderNotification(m))
	return sb.String()
}

// LeaderboardView renders the leaderboard.
func LeaderboardView(m model.Model) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.TitleStyle("🏆 排行榜")))
	sb.WriteString("\n\n")

	entries := m.Lobby().Leaderboard()
	if len(entries) == 0 {
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, "暂无排行数据"))
	} else {
		var table strings.Builder
		fmt.Fprintf(&table, "%-4s %-12s %6s %5s %7s\n", "排名", "玩家", "积分", "胜场", "胜率")
		for _, e := range entries {
			fmt.Fprintf(&table, "%-4d %-12s %6d %5d %6.1f%%\n",
				e.Rank, common.TruncateName(e.PlayerName, 12), e.Score, e.Wins, e.WinRate)
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.BoxStyle.Padding(0, 1).Render(strings.TrimSuffix(table.String(), "\n"))))
	}

	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.HintStyle.Render("按 ESC 返回大厅")))
	return sb.String()
}

// StatsView renders the player's own stats.
func StatsView(m model.Model) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.TitleStyle("📊 我的战绩")))
	sb.WriteString("\n\n")

	stats := m.Lobby().MyStats()
	if stats == nil || stats.TotalGames == 0 {
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, "暂无战绩，快去来一局吧!"))
	} else {
		var body strings.Builder
		fmt.Fprintf(&body, "总局数: %d\n", stats.TotalGames)
		fmt.Fprintf(&body, "胜/负: %d / %d (%.1f%%)\n", stats.Wins, stats.Losses, stats.WinRate)
		fmt.Fprintf(&body, "特殊牌型胜: %d\n", stats.SpecialWins)
		fmt.Fprintf(&body, "杠胜: %d\n", stats.ShowdownWins)
		fmt.Fprintf(&body, "积分: %d", stats.Score)
		if stats.Rank > 0 {
			fmt.Fprintf(&body, " (第 %d 名)", stats.Rank)
		}
		fmt.Fprintf(&body, "\n连胜: %d (最高 %d)", stats.CurrentStreak, stats.MaxWinStreak)
		sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.BoxStyle.Padding(0, 2).Render(body.String())))
	}

	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.HintStyle.Render("按 ESC 返回大厅")))
	return sb.String()
}
