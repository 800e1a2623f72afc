// Package model defines the core types and interfaces for the UI.
package model

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	gameClient "github.com/palemoky/kang357/internal/client"
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/protocol"
)

// GamePhase represents the current screen.
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseLobby
	PhaseRoomList
	PhaseWaiting
	PhasePlaying
	PhaseGameOver
	PhaseLeaderboard
	PhaseStats
	PhaseRules
)

// LobbyMenuCount is the number of lobby menu entries.
const LobbyMenuCount = 6

// ErrDisconnected is reported when the server closes the connection.
var ErrDisconnected = errors.New("与服务器的连接已断开")

// NotificationType represents types of system notifications.
type NotificationType int

const (
	NotifyError       NotificationType = iota // 错误信息（临时）
	NotifyRateLimit                           // 限频提示（临时）
	NotifyMaintenance                         // 维护通知（持久）
	NotifyOnlineCount                         // 在线人数（持久）
)

// SystemNotification represents a system notification.
type SystemNotification struct {
	Message   string
	Type      NotificationType
	Temporary bool // 是否为临时通知（3秒后自动消失）
}

// --- Tea Messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// HeartbeatMsg triggers a ping to the server.
type HeartbeatMsg struct{}

// ClearSystemNotificationMsg clears temporary notifications.
type ClearSystemNotificationMsg struct{}

// --- Client Interfaces ---

// GameClient sends player intents to the server.
type GameClient interface {
	Ping() error
	CreateRoom(name string) error
	JoinRoom(code, name string) error
	LeaveRoom() error
	StartGame() error
	Draw() error
	Discard(cards []card.Card) error
	Showdown() error
	Chat(text string) error
	GetRoomList() error
	GetOnlineCount() error
	GetStats() error
	GetLeaderboard(limit int) error
}

// Connection is a GameClient with a connection lifecycle.
type Connection interface {
	GameClient
	Connect(ctx context.Context) error
	Receive() <-chan *protocol.Message
	Close()
}

// --- Model Interface ---

// Model is the main interface for OnlineModel, used by handler/view/input packages.
type Model interface {
	// Phase management
	Phase() GamePhase
	SetPhase(GamePhase)

	// Player info
	PlayerID() string
	PlayerName() string
	SetPlayerInfo(id, name string)

	// Client access
	Client() GameClient

	// UI components
	Input() *textinput.Model

	// Sub-models
	Lobby() LobbyAccessor
	Game() GameAccessor

	// Notification management
	SetNotification(notifyType NotificationType, message string, temporary bool)
	ClearNotification(notifyType NotificationType)
	GetCurrentNotification() *SystemNotification

	// State management
	EnterLobby()
	IsMaintenanceMode() bool
	SetMaintenanceMode(bool)

	// Network
	Latency() int64
	SetLatency(int64)

	// Dimensions
	Width() int
	Height() int
}

// LobbyAccessor provides access to lobby data.
type LobbyAccessor interface {
	OnlineCount() int
	SetOnlineCount(int)
	AvailableRooms() []protocol.RoomListItem
	SetAvailableRooms([]protocol.RoomListItem)
	SelectedRoomIdx() int
	SetSelectedRoomIdx(int)
	SelectedIndex() int
	SetSelectedIndex(int)
	Leaderboard() []protocol.LeaderboardEntry
	SetLeaderboard([]protocol.LeaderboardEntry)
	MyStats() *protocol.StatsResultPayload
	SetMyStats(*protocol.StatsResultPayload)

	SelectedRoom() (protocol.RoomListItem, bool)
	MoveCursor(phase GamePhase, delta int)
}

// GameAccessor provides access to game data.
type GameAccessor interface {
	State() *gameClient.GameState

	// Card selection
	Cursor() int
	MoveCursor(delta int)
	ToggleSelected(idx int)
	IsSelected(c card.Card) bool
	Selected() []card.Card
	ClearSelection()

	// Features
	CardCounterEnabled() bool
	SetCardCounterEnabled(bool)
	ShowingHelp() bool
	SetShowingHelp(bool)

	// Chat
	ChatHistory() []string
	AddChatMessage(string)
	ClearChatHistory()
	ChatInput() *textinput.Model
}

// --- Handler Interface ---

// Handler processes server messages.
type Handler interface {
	HandleServerMessage(m Model, msg *protocol.Message) tea.Cmd
}

// InputHandler processes keyboard input.
type InputHandler interface {
	HandleKeyPress(m Model, msg tea.KeyMsg) (handled bool, cmd tea.Cmd)
}
