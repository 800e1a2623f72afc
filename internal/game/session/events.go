package session

import (
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/game/rule"
)

// Event 会话操作产生的领域事件，由房间层映射为协议消息并投递。
// 只有本包内的类型实现该接口。
type Event interface {
	isEvent()
}

// PlayerJoined 有玩家加入，广播给其他人
type PlayerJoined struct {
	Player  Player
	Players []Player
}

// PlayerLeft 有玩家离开，广播给剩余玩家
type PlayerLeft struct {
	PlayerID string
	Players  []Player
}

// HandDealt 发牌，只发给 PlayerID
type HandDealt struct {
	PlayerID     string
	Hand         []card.Card
	Special      *rule.Special
	PlayerIndex  int
	TotalPlayers int
	AllPlayerIDs []string
}

// YourTurn 通知 PlayerID 摸牌
type YourTurn struct {
	PlayerID string
}

// TurnChanged 回合变更。Phase 只发给 PlayerID 本人，其他人只知道轮到谁
type TurnChanged struct {
	PlayerID string
	Phase    Phase
}

// CardDrawn 摸到的牌，只发给 PlayerID
type CardDrawn struct {
	PlayerID string
	Card     card.Card
}

// PlayerDrew 有人摸牌，广播张数
type PlayerDrew struct {
	PlayerID  string
	HandCount int
}

// CardsDiscarded 出牌，广播
type CardsDiscarded struct {
	PlayerID string
	Cards    []card.Card
}

// ReactionAvailable PlayerID 手里有同点牌，可以不摸直接出
type ReactionAvailable struct {
	PlayerID string
	Card     card.Card
}

// EndReason 游戏结束原因
type EndReason string

const (
	EndSpecial  EndReason = "special"
	EndShowdown EndReason = "showdown"
	EndAbandon  EndReason = "abandon"
)

// GameEnded 游戏结束，广播。Scores 和 Hands 只在摊牌时完整给出
type GameEnded struct {
	WinnerID   string
	WinnerName string
	Reason     EndReason
	Special    *rule.Special
	Scores     map[string]int
	Hands      map[string][]card.Card
}

func (PlayerJoined) isEvent()      {}
func (PlayerLeft) isEvent()        {}
func (HandDealt) isEvent()         {}
func (YourTurn) isEvent()          {}
func (TurnChanged) isEvent()       {}
func (CardDrawn) isEvent()         {}
func (PlayerDrew) isEvent()        {}
func (CardsDiscarded) isEvent()    {}
func (ReactionAvailable) isEvent() {}
func (GameEnded) isEvent()         {}
