// Package input handles keyboard input processing.
package input

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/ui/handler"
	"github.com/palemoky/kang357/internal/ui/model"
)

// roomCodeLength 房间号长度
const roomCodeLength = 6

// leaderboardSize 排行榜请求条数
const leaderboardSize = 10

// sendFailed 发送失败时提示
func sendFailed(m model.Model, err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return handler.Notify(m, model.NotifyError, fmt.Sprintf("⚠️ 发送消息失败: %v", err))
}

// HandleKeyPress handles keyboard input and returns whether it was handled.
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return true, tea.Quit
	}

	if inRoom(m.Phase()) && m.Game().ChatInput().Focused() {
		return true, handleChatKey(m, msg)
	}

	switch m.Phase() {
	case model.PhaseLobby:
		return handleLobbyKey(m, msg)
	case model.PhaseRoomList:
		return true, handleRoomListKey(m, msg)
	case model.PhaseLeaderboard, model.PhaseStats, model.PhaseRules:
		if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
			m.EnterLobby()
		}
		return true, nil
	case model.PhaseWaiting:
		return true, handleWaitingKey(m, msg)
	case model.PhasePlaying:
		return true, handleGameKey(m, msg)
	case model.PhaseGameOver:
		return true, handleGameOverKey(m, msg)
	}
	return false, nil
}

func inRoom(phase model.GamePhase) bool {
	return phase == model.PhaseWaiting || phase == model.PhasePlaying || phase == model.PhaseGameOver
}

// --- 大厅 ---

func handleLobbyKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return true, tea.Quit
	case tea.KeyUp:
		m.Lobby().MoveCursor(m.Phase(), -1)
		return true, nil
	case tea.KeyDown:
		m.Lobby().MoveCursor(m.Phase(), 1)
		return true, nil
	case tea.KeyEnter:
		return true, handleLobbyEnter(m)
	}
	return false, nil
}

// handleLobbyEnter 输入 1-6 选择菜单，6 位字符按房间号加入，空输入执行当前选中项
func handleLobbyEnter(m model.Model) tea.Cmd {
	value := strings.TrimSpace(m.Input().Value())
	m.Input().Reset()

	switch {
	case value == "":
		return selectLobbyItem(m, m.Lobby().SelectedIndex())
	case len(value) == 1 && value[0] >= '1' && value[0] < '1'+model.LobbyMenuCount:
		idx := int(value[0] - '1')
		m.Lobby().SetSelectedIndex(idx)
		return selectLobbyItem(m, idx)
	case len(value) == roomCodeLength:
		return joinRoom(m, value)
	default:
		return handler.Notify(m, model.NotifyError, "⚠️ 请输入菜单编号或 6 位房间号")
	}
}

func selectLobbyItem(m model.Model, idx int) tea.Cmd {
	c := m.Client()
	switch idx {
	case 0:
		if m.IsMaintenanceMode() {
			return handler.Notify(m, model.NotifyError, "⚠️ 服务器维护中，暂时无法创建房间")
		}
		return sendFailed(m, c.CreateRoom(m.PlayerName()))
	case 1:
		m.Input().Placeholder = "输入 6 位房间号后回车"
		return nil
	case 2:
		return sendFailed(m, c.GetRoomList())
	case 3:
		return sendFailed(m, c.GetLeaderboard(leaderboardSize))
	case 4:
		return sendFailed(m, c.GetStats())
	case 5:
		m.SetPhase(model.PhaseRules)
		return nil
	}
	return nil
}

func joinRoom(m model.Model, code string) tea.Cmd {
	if m.IsMaintenanceMode() {
		return handler.Notify(m, model.NotifyError, "⚠️ 服务器维护中，暂时无法加入房间")
	}
	return sendFailed(m, m.Client().JoinRoom(strings.ToLower(code), m.PlayerName()))
}

func handleRoomListKey(m model.Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.EnterLobby()
	case tea.KeyUp:
		m.Lobby().MoveCursor(m.Phase(), -1)
	case tea.KeyDown:
		m.Lobby().MoveCursor(m.Phase(), 1)
	case tea.KeyEnter:
		room, ok := m.Lobby().SelectedRoom()
		if !ok {
			return nil
		}
		if room.MaxPlayers > 0 && room.PlayerCount >= room.MaxPlayers {
			return handler.Notify(m, model.NotifyError, "⚠️ 房间已满")
		}
		return joinRoom(m, room.RoomID)
	case tea.KeyRunes:
		if isKey(msg, "r") {
			return sendFailed(m, m.Client().GetRoomList())
		}
	}
	return nil
}

// --- 房间内 ---

func handleChatKey(m model.Model, msg tea.KeyMsg) tea.Cmd {
	chatInput := m.Game().ChatInput()
	switch msg.Type {
	case tea.KeyEnter:
		content := strings.TrimSpace(chatInput.Value())
		chatInput.Reset()
		chatInput.Blur()
		if content == "" {
			return nil
		}
		return sendFailed(m, m.Client().Chat(content))
	case tea.KeyEsc:
		chatInput.Reset()
		chatInput.Blur()
		return nil
	default:
		var cmd tea.Cmd
		*chatInput, cmd = chatInput.Update(msg)
		return cmd
	}
}

func focusChat(m model.Model) tea.Cmd {
	return m.Game().ChatInput().Focus()
}

func handleWaitingKey(m model.Model, msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc:
		err := m.Client().LeaveRoom()
		m.EnterLobby()
		return sendFailed(m, err)
	case isKey(msg, "/"):
		return focusChat(m)
	case isKey(msg, "s"):
		return sendFailed(m, m.Client().StartGame())
	}
	return nil
}

func handleGameOverKey(m model.Model, msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter:
		err := m.Client().LeaveRoom()
		m.EnterLobby()
		return sendFailed(m, err)
	case isKey(msg, "/"):
		return focusChat(m)
	}
	return nil
}

func handleGameKey(m model.Model, msg tea.KeyMsg) tea.Cmd {
	game := m.Game()

	if game.ShowingHelp() {
		if msg.Type == tea.KeyEsc || isKey(msg, "h") {
			game.SetShowingHelp(false)
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return handler.Notify(m, model.NotifyError, "⚠️ 游戏进行中，无法退出！")
	case tea.KeyLeft:
		game.MoveCursor(-1)
		return nil
	case tea.KeyRight:
		game.MoveCursor(1)
		return nil
	case tea.KeySpace:
		game.ToggleSelected(game.Cursor())
		return nil
	case tea.KeyEnter:
		return discardSelected(m)
	case tea.KeyRunes:
	default:
		return nil
	}

	key := strings.ToLower(msg.String())
	switch key {
	case "/":
		return focusChat(m)
	case "h":
		game.SetShowingHelp(true)
	case "c":
		game.SetCardCounterEnabled(!game.CardCounterEnabled())
	case "d":
		return sendFailed(m, m.Client().Draw())
	case "k":
		return sendFailed(m, m.Client().Showdown())
	case "r":
		return react(m)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			game.ToggleSelected(int(key[0] - '1'))
		}
	}
	return nil
}

// discardSelected 出选中的牌，本地先做张数和同点检查
func discardSelected(m model.Model) tea.Cmd {
	selected := m.Game().Selected()
	switch {
	case len(selected) == 0:
		return handler.Notify(m, model.NotifyError, "⚠️ 请先用空格选择要出的牌")
	case len(selected) > 2:
		return handler.Notify(m, model.NotifyError, "⚠️ 一次最多出 2 张")
	case !card.SameValue(selected):
		return handler.Notify(m, model.NotifyError, "⚠️ 一次只能出同点数的牌")
	}
	return sendFailed(m, m.Client().Discard(selected))
}

// react 直接跟出提示的同点牌
func react(m model.Model) tea.Cmd {
	reaction := m.Game().State().ReactionCard
	if reaction == nil {
		return handler.Notify(m, model.NotifyError, "⚠️ 现在没有可以跟的牌")
	}
	return sendFailed(m, m.Client().Discard([]card.Card{*reaction}))
}

func isKey(msg tea.KeyMsg, key string) bool {
	return msg.Type == tea.KeyRunes && strings.EqualFold(msg.String(), key)
}
