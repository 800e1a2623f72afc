// Package client holds the terminal client's view of a game in progress.
package client

import (
	"cmp"
	"slices"

	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/protocol"
)

// Phase names as sent in turn-changed
const (
	PhaseDraw    = "draw"
	PhaseDiscard = "discard"
)

// Result is the final state announced by game-ended
type Result struct {
	WinnerID    string
	Reason      string
	Combination string
	Multiplier  int
	Scores      map[string]int
	Hands       map[string][]card.Card
}

// GameState manages client-side game state
type GameState struct {
	// Player data
	Hand    []card.Card
	Special *protocol.SpecialInfo

	// Room
	RoomCode   string
	Players    []protocol.PlayerInfo
	HandCounts map[string]int

	// Game progress
	CurrentTurn   string
	TurnPhase     string
	LastDiscardBy string
	LastDiscard   []card.Card
	ReactionCard  *card.Card

	// Game result
	Result *Result

	// Features
	CardCounter *CardCounter
}

// NewGameState creates a new game state
func NewGameState() *GameState {
	return &GameState{
		HandCounts:  make(map[string]int),
		CardCounter: NewCardCounter(),
	}
}

// SortHand sorts the player's hand by value, then suit
func (gs *GameState) SortHand() {
	slices.SortFunc(gs.Hand, func(a, b card.Card) int {
		if c := cmp.Compare(a.Value.RankIndex(), b.Value.RankIndex()); c != 0 {
			return c
		}
		return cmp.Compare(a.Suit, b.Suit)
	})
}

// SetPlayers replaces the room's player list
func (gs *GameState) SetPlayers(players []protocol.PlayerInfo) {
	gs.Players = slices.Clone(players)
}

// OrderPlayers puts the player list in seating order
func (gs *GameState) OrderPlayers(ids []string) {
	byID := make(map[string]protocol.PlayerInfo, len(gs.Players))
	for _, p := range gs.Players {
		byID[p.ID] = p
	}
	ordered := make([]protocol.PlayerInfo, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			p = protocol.PlayerInfo{ID: id, Name: id}
		}
		ordered = append(ordered, p)
	}
	gs.Players = ordered
}

// PlayerName returns the display name of a player, or the id when unknown
func (gs *GameState) PlayerName(id string) string {
	for _, p := range gs.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

// HostID returns the current room host
func (gs *GameState) HostID() string {
	for _, p := range gs.Players {
		if p.Host {
			return p.ID
		}
	}
	return ""
}

// StartHand records a freshly dealt hand
func (gs *GameState) StartHand(hand []card.Card, special *protocol.SpecialInfo, playerIDs []string) {
	gs.Hand = slices.Clone(hand)
	gs.SortHand()
	gs.Special = special
	gs.OrderPlayers(playerIDs)
	gs.HandCounts = make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		gs.HandCounts[id] = len(hand)
	}
	gs.CurrentTurn = ""
	gs.TurnPhase = ""
	gs.LastDiscardBy = ""
	gs.LastDiscard = nil
	gs.ReactionCard = nil
	gs.Result = nil
	gs.CardCounter.Reset()
	gs.CardCounter.DeductCards(gs.Hand)
}

// AddCard adds a drawn card to the hand
func (gs *GameState) AddCard(c card.Card, selfID string) {
	gs.Hand = append(gs.Hand, c)
	gs.SortHand()
	gs.HandCounts[selfID] = len(gs.Hand)
	gs.CardCounter.DeductCards([]card.Card{c})
}

// ApplyDiscard records cards discarded by a player
func (gs *GameState) ApplyDiscard(playerID string, cards []card.Card, selfID string) {
	gs.LastDiscardBy = playerID
	gs.LastDiscard = cards
	gs.ReactionCard = nil
	if playerID == selfID {
		gs.Hand = card.RemoveCards(gs.Hand, cards)
		gs.HandCounts[selfID] = len(gs.Hand)
		return
	}
	// 只记录其他玩家出的牌
	gs.CardCounter.DeductCards(cards)
	gs.HandCounts[playerID] = max(0, gs.HandCounts[playerID]-len(cards))
}

// IsMyTurn reports whether selfID holds the turn
func (gs *GameState) IsMyTurn(selfID string) bool {
	return gs.CurrentTurn != "" && gs.CurrentTurn == selfID
}

// Points returns the current point total of the hand
func (gs *GameState) Points() int {
	return card.Points(gs.Hand)
}

// Reset clears all game state
func (gs *GameState) Reset() {
	gs.Hand = nil
	gs.Special = nil
	gs.RoomCode = ""
	gs.Players = nil
	gs.HandCounts = make(map[string]int)
	gs.CurrentTurn = ""
	gs.TurnPhase = ""
	gs.LastDiscardBy = ""
	gs.LastDiscard = nil
	gs.ReactionCard = nil
	gs.Result = nil
	gs.CardCounter = NewCardCounter()
}
