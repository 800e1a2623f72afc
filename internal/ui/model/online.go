// Package model contains the UI model implementations.
package model

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/ui/common"
)

const (
	heartbeatInterval = 10 * time.Second
	connectTimeout    = 10 * time.Second
	lobbyPlaceholder  = "↑↓ 选择 | 回车确认 | 或输入房间号"
)

// OnlineModel is the main model for online game mode.
type OnlineModel struct {
	conn  Connection
	phase GamePhase
	error string

	// Player info
	playerID   string
	playerName string

	// Network state
	latency int64

	// Maintenance mode
	maintenanceMode bool

	// System notifications
	notifications map[NotificationType]*SystemNotification

	// Sub-models
	lobby *LobbyModel
	game  *GameModel

	// UI components
	input  *textinput.Model
	width  int
	height int

	// Injected to break circular imports
	viewRenderer         func(Model, GamePhase) string
	keyHandler           func(Model, tea.KeyMsg) (bool, tea.Cmd)
	serverMessageHandler func(Model, *protocol.Message) tea.Cmd
}

// NewOnlineModel creates a new OnlineModel.
func NewOnlineModel(conn Connection) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = lobbyPlaceholder
	ti.CharLimit = 20
	ti.Width = 36
	ti.Focus()

	return &OnlineModel{
		conn:          conn,
		phase:         PhaseConnecting,
		input:         &ti,
		lobby:         NewLobbyModel(),
		game:          NewGameModel(),
		notifications: make(map[NotificationType]*SystemNotification),
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
	)
}

func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := m.conn.Connect(ctx); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.conn.Receive()
		if !ok {
			return ConnectionErrorMsg{Err: ErrDisconnected}
		}
		return ServerMessage{Msg: msg}
	}
}

func heartbeat() tea.Cmd {
	return tea.Tick(heartbeatInterval, func(time.Time) tea.Msg {
		return HeartbeatMsg{}
	})
}

// --- Model interface implementation ---

func (m *OnlineModel) Phase() GamePhase         { return m.phase }
func (m *OnlineModel) SetPhase(phase GamePhase) { m.phase = phase }
func (m *OnlineModel) PlayerID() string         { return m.playerID }
func (m *OnlineModel) PlayerName() string       { return m.playerName }
func (m *OnlineModel) SetPlayerInfo(id, name string) {
	m.playerID = id
	m.playerName = name
}
func (m *OnlineModel) Client() GameClient      { return m.conn }
func (m *OnlineModel) Input() *textinput.Model { return m.input }
func (m *OnlineModel) Lobby() LobbyAccessor    { return m.lobby }
func (m *OnlineModel) Game() GameAccessor      { return m.game }
func (m *OnlineModel) Width() int              { return m.width }
func (m *OnlineModel) Height() int             { return m.height }
func (m *OnlineModel) Latency() int64          { return m.latency }
func (m *OnlineModel) SetLatency(l int64)      { m.latency = l }

func (m *OnlineModel) SetNotification(notifyType NotificationType, message string, temporary bool) {
	m.notifications[notifyType] = &SystemNotification{
		Message:   message,
		Type:      notifyType,
		Temporary: temporary,
	}
}

func (m *OnlineModel) ClearNotification(notifyType NotificationType) {
	delete(m.notifications, notifyType)
}

func (m *OnlineModel) GetCurrentNotification() *SystemNotification {
	priorityOrder := []NotificationType{
		NotifyError,
		NotifyRateLimit,
		NotifyMaintenance,
		NotifyOnlineCount,
	}

	for _, notifyType := range priorityOrder {
		if notification, exists := m.notifications[notifyType]; exists {
			return notification
		}
	}
	return nil
}

// EnterLobby returns to the lobby and clears the finished game.
func (m *OnlineModel) EnterLobby() {
	m.phase = PhaseLobby
	m.error = ""
	m.input.Reset()
	m.input.Placeholder = lobbyPlaceholder
	m.input.Focus()

	m.game.State().Reset()
	m.game.ClearSelection()
	m.game.ClearChatHistory()
	m.game.ChatInput().Blur()
	m.game.SetShowingHelp(false)
}

func (m *OnlineModel) IsMaintenanceMode() bool      { return m.maintenanceMode }
func (m *OnlineModel) SetMaintenanceMode(mode bool) { m.maintenanceMode = mode }

// Error returns the current connection error message.
func (m *OnlineModel) Error() string { return m.error }

// Update handles tea messages.
func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ConnectedMsg:
		m.EnterLobby()
		_ = m.conn.GetOnlineCount()
		cmds = append(cmds, m.listenForMessages(), heartbeat())

	case ConnectionErrorMsg:
		m.error = fmt.Sprintf("无法连接到服务器: %v\n\n按 ESC 退出", msg.Err)
		m.phase = PhaseConnecting

	case HeartbeatMsg:
		if m.phase != PhaseConnecting {
			_ = m.conn.Ping()
			cmds = append(cmds, heartbeat())
		}

	case ClearSystemNotificationMsg:
		m.ClearNotification(NotifyError)
		m.ClearNotification(NotifyRateLimit)

	case ServerMessage:
		if m.serverMessageHandler != nil {
			if cmd := m.serverMessageHandler(m, msg.Msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, m.listenForMessages())

	case tea.KeyMsg:
		if m.phase == PhaseConnecting && (msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC) {
			return m, tea.Quit
		}
		if m.keyHandler != nil {
			handled, keyCmd := m.keyHandler(m, msg)
			if keyCmd != nil {
				cmds = append(cmds, keyCmd)
			}
			if handled {
				return m, tea.Batch(cmds...)
			}
		}
	}

	if m.phase == PhaseLobby {
		newInput, cmd := m.input.Update(msg)
		*m.input = newInput
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the model.
func (m *OnlineModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	default:
		if m.viewRenderer != nil {
			content = m.viewRenderer(m, m.phase)
		} else {
			content = "View renderer not initialized"
		}
	}

	return common.DocStyle.Render(content)
}

// SetViewRenderer sets the view rendering function.
func (m *OnlineModel) SetViewRenderer(fn func(Model, GamePhase) string) {
	m.viewRenderer = fn
}

// SetKeyHandler sets the keyboard event handler function.
func (m *OnlineModel) SetKeyHandler(fn func(Model, tea.KeyMsg) (bool, tea.Cmd)) {
	m.keyHandler = fn
}

// SetServerMessageHandler sets the server message handler function.
func (m *OnlineModel) SetServerMessageHandler(fn func(Model, *protocol.Message) tea.Cmd) {
	m.serverMessageHandler = fn
}

func (m *OnlineModel) connectingView() string {
	var sb string
	if m.error != "" {
		sb = common.ErrorStyle.Render(m.error)
	} else {
		sb = "正在连接服务器..."
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb)
}
