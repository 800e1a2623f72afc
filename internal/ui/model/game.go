package model

import (
	"github.com/charmbracelet/bubbles/textinput"

	gameClient "github.com/palemoky/kang357/internal/client"
	"github.com/palemoky/kang357/internal/game/card"
)

const (
	chatHistoryLimit = 50
	chatInputWidth   = 40
)

// GameModel handles game-specific UI state.
type GameModel struct {
	// Game state (business logic)
	state *gameClient.GameState

	// Card selection
	cursor   int
	selected map[card.Card]bool

	// Features
	cardCounterEnabled bool
	showingHelp        bool

	// Chat UI
	chatHistory []string
	chatInput   textinput.Model
}

// NewGameModel creates a new GameModel.
func NewGameModel() *GameModel {
	chatInput := textinput.New()
	chatInput.Placeholder = "输入聊天内容，回车发送"
	chatInput.CharLimit = 200
	chatInput.Width = chatInputWidth

	return &GameModel{
		state:     gameClient.NewGameState(),
		selected:  make(map[card.Card]bool),
		chatInput: chatInput,
	}
}

// --- GameAccessor implementation ---

func (m *GameModel) State() *gameClient.GameState { return m.state }

func (m *GameModel) Cursor() int {
	if n := len(m.state.Hand); m.cursor >= n {
		return max(n-1, 0)
	}
	return m.cursor
}

// MoveCursor moves the cursor across the hand, wrapping at both ends.
func (m *GameModel) MoveCursor(delta int) {
	n := len(m.state.Hand)
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = ((m.Cursor()+delta)%n + n) % n
}

// ToggleSelected flips the selection of the card at idx.
func (m *GameModel) ToggleSelected(idx int) {
	if idx < 0 || idx >= len(m.state.Hand) {
		return
	}
	c := m.state.Hand[idx]
	if m.selected[c] {
		delete(m.selected, c)
	} else {
		m.selected[c] = true
	}
}

func (m *GameModel) IsSelected(c card.Card) bool { return m.selected[c] }

// Selected returns the selected cards still in hand, in hand order.
func (m *GameModel) Selected() []card.Card {
	var cards []card.Card
	for _, c := range m.state.Hand {
		if m.selected[c] {
			cards = append(cards, c)
		}
	}
	return cards
}

func (m *GameModel) ClearSelection() {
	clear(m.selected)
	m.cursor = 0
}

func (m *GameModel) CardCounterEnabled() bool           { return m.cardCounterEnabled }
func (m *GameModel) SetCardCounterEnabled(enabled bool) { m.cardCounterEnabled = enabled }
func (m *GameModel) ShowingHelp() bool                  { return m.showingHelp }
func (m *GameModel) SetShowingHelp(showing bool)        { m.showingHelp = showing }

func (m *GameModel) ChatHistory() []string { return m.chatHistory }
func (m *GameModel) AddChatMessage(msg string) {
	m.chatHistory = append(m.chatHistory, msg)
	if len(m.chatHistory) > chatHistoryLimit {
		m.chatHistory = m.chatHistory[len(m.chatHistory)-chatHistoryLimit:]
	}
}
func (m *GameModel) ClearChatHistory()           { m.chatHistory = nil }
func (m *GameModel) ChatInput() *textinput.Model { return &m.chatInput }
