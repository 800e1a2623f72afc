// Package session 实现一个房间内的权威游戏状态与状态机。
//
// Session 不是并发安全的，调用方（房间）需要串行化所有操作。
// 每个操作要么返回事件列表，要么返回 *apperrors.GameError 并保持状态不变。
package session

import (
	"math/rand/v2"
	"slices"

	"github.com/palemoky/kang357/internal/apperrors"
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/game/rule"
)

// Phase 会话阶段
type Phase int

const (
	PhaseWaiting Phase = iota // 等待玩家
	PhaseDraw                 // 当前玩家需要摸牌
	PhaseDiscard              // 当前玩家需要出牌
	PhaseEnded                // 已结束，不再接受操作
)

var phaseNames = map[Phase]string{
	PhaseWaiting: "waiting",
	PhaseDraw:    "draw",
	PhaseDiscard: "discard",
	PhaseEnded:   "ended",
}

func (p Phase) String() string {
	return phaseNames[p]
}

// Playing 是否处于对局中
func (p Phase) Playing() bool {
	return p == PhaseDraw || p == PhaseDiscard
}

const (
	DefaultCapacity   = 4
	DefaultMinPlayers = 2
	// MaxDiscard 一次最多出的张数
	MaxDiscard = 2
)

// Player 玩家
type Player struct {
	ID   string
	Name string
}

// Options 会话参数
type Options struct {
	Capacity   int        // 满员自动开局，默认 4
	MinPlayers int        // 房主提前开局的最少人数，默认 2
	Rand       *rand.Rand // 洗牌随机源，nil 时使用 crypto/rand 播种的 ChaCha8
}

// Session 一局游戏的权威状态
type Session struct {
	players          []Player
	deck             card.Deck
	hands            map[string][]card.Card
	discards         map[string][]card.Card
	dead             []card.Card // 离开玩家留下的牌
	turnIndex        int
	phase            Phase
	lastDiscardValue card.Value
	hostID           string
	winnerID         string

	capacity   int
	minPlayers int
	rng        *rand.Rand
}

// New 创建等待中的会话
func New(opts Options) *Session {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.MinPlayers <= 0 {
		opts.MinPlayers = DefaultMinPlayers
	}
	opts.MinPlayers = min(opts.MinPlayers, opts.Capacity)
	return &Session{
		hands:      make(map[string][]card.Card),
		discards:   make(map[string][]card.Card),
		phase:      PhaseWaiting,
		capacity:   opts.Capacity,
		minPlayers: opts.MinPlayers,
		rng:        opts.Rand,
	}
}

// --- 操作 ---

// Join 玩家加入，人满时自动开局，开局事件一并返回
func (s *Session) Join(id, name string) ([]Event, error) {
	if s.phase != PhaseWaiting {
		return nil, apperrors.ErrGameStarted
	}
	if s.indexOf(id) >= 0 {
		return nil, apperrors.ErrAlreadyInRoom
	}
	if len(s.players) >= s.capacity {
		return nil, apperrors.ErrRoomFull
	}

	player := Player{ID: id, Name: name}
	s.players = append(s.players, player)
	if s.hostID == "" {
		s.hostID = id
	}

	events := []Event{PlayerJoined{Player: player, Players: s.Players()}}
	if len(s.players) == s.capacity {
		events = append(events, s.start()...)
	}
	return events, nil
}

// Start 房主提前开局
func (s *Session) Start(callerID string) ([]Event, error) {
	if s.indexOf(callerID) < 0 {
		return nil, apperrors.ErrNotInRoom
	}
	if s.phase != PhaseWaiting {
		return nil, apperrors.ErrGameStarted
	}
	if callerID != s.hostID {
		return nil, apperrors.ErrNotHost
	}
	if len(s.players) < s.minPlayers {
		return nil, apperrors.ErrNotEnoughPlayers
	}
	return s.start(), nil
}

// start 洗牌、按加入顺序每人发 5 张并判定特殊牌型
func (s *Session) start() []Event {
	deck := card.NewShuffledDeck(s.rng)
	ids := s.playerIDs()

	events := make([]Event, 0, len(s.players)+2)
	var (
		winner      = -1
		bestSpecial rule.Special
	)
	for i, p := range s.players {
		// 4 人共 20 张，52 张牌不会发完
		hand, _ := deck.Deal(rule.HandSize)
		s.hands[p.ID] = hand

		dealt := HandDealt{
			PlayerID:     p.ID,
			Hand:         slices.Clone(hand),
			PlayerIndex:  i,
			TotalPlayers: len(s.players),
			AllPlayerIDs: ids,
		}
		if special, ok := rule.Evaluate(hand); ok {
			dealt.Special = &special
			// 同等优先级时先发到牌的玩家胜
			if winner < 0 || special.Precedence() < bestSpecial.Precedence() {
				winner, bestSpecial = i, special
			}
		}
		events = append(events, dealt)
	}
	s.deck = deck
	s.turnIndex = 0

	if winner >= 0 {
		w := s.players[winner]
		s.phase = PhaseEnded
		s.winnerID = w.ID
		return append(events, GameEnded{
			WinnerID:   w.ID,
			WinnerName: w.Name,
			Reason:     EndSpecial,
			Special:    &bestSpecial,
			Hands:      map[string][]card.Card{w.ID: slices.Clone(s.hands[w.ID])},
		})
	}

	s.phase = PhaseDraw
	first := s.players[0].ID
	return append(events,
		TurnChanged{PlayerID: first, Phase: PhaseDraw},
		YourTurn{PlayerID: first},
	)
}

// Draw 当前玩家从牌堆末端摸一张牌
func (s *Session) Draw(id string) ([]Event, error) {
	if err := s.checkTurn(id, PhaseDraw); err != nil {
		return nil, err
	}
	c, err := s.deck.Draw()
	if err != nil {
		return nil, apperrors.ErrDeckEmpty
	}

	s.hands[id] = append(s.hands[id], c)
	s.phase = PhaseDiscard
	return []Event{
		CardDrawn{PlayerID: id, Card: c},
		PlayerDrew{PlayerID: id, HandCount: len(s.hands[id])},
	}, nil
}

// Discard 当前玩家打出 1~2 张同点牌，回合交给下家。
// 下家有同点牌时保持出牌阶段并提示下家直接跟出（只看紧邻的下家）。
func (s *Session) Discard(id string, cards []card.Card) ([]Event, error) {
	if err := s.checkTurn(id, PhaseDiscard); err != nil {
		return nil, err
	}
	if len(cards) == 0 || len(cards) > MaxDiscard {
		return nil, apperrors.ErrInvalidCards
	}
	hand := s.hands[id]
	for i, c := range cards {
		if slices.Contains(cards[:i], c) {
			return nil, apperrors.ErrInvalidCards
		}
		if !card.Contains(hand, c) {
			return nil, apperrors.ErrCardNotHeld
		}
	}
	if !card.SameValue(cards) {
		return nil, apperrors.ErrMixedValues
	}

	discarded := slices.Clone(cards)
	s.hands[id] = card.RemoveCards(hand, discarded)
	s.discards[id] = append(s.discards[id], discarded...)
	s.lastDiscardValue = discarded[0].Value
	s.turnIndex = (s.turnIndex + 1) % len(s.players)

	next := s.players[s.turnIndex].ID
	events := []Event{CardsDiscarded{PlayerID: id, Cards: discarded}}
	if match, ok := card.FindValue(s.hands[next], s.lastDiscardValue); ok {
		s.phase = PhaseDiscard
		return append(events,
			TurnChanged{PlayerID: next, Phase: PhaseDiscard},
			ReactionAvailable{PlayerID: next, Card: match},
		), nil
	}

	s.phase = PhaseDraw
	return append(events,
		TurnChanged{PlayerID: next, Phase: PhaseDraw},
		YourTurn{PlayerID: next},
	), nil
}

// Showdown 当前回合玩家摊牌：点数和严格最低者胜，同分按座位顺序取先者
func (s *Session) Showdown(callerID string) ([]Event, error) {
	if err := s.checkTurn(callerID, s.phase); err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(s.players))
	hands := make(map[string][]card.Card, len(s.players))
	winner := 0
	for i, p := range s.players {
		scores[p.ID] = rule.Score(s.hands[p.ID])
		hands[p.ID] = slices.Clone(s.hands[p.ID])
		if scores[p.ID] < scores[s.players[winner].ID] {
			winner = i
		}
	}

	w := s.players[winner]
	s.phase = PhaseEnded
	s.winnerID = w.ID
	return []Event{GameEnded{
		WinnerID:   w.ID,
		WinnerName: w.Name,
		Reason:     EndShowdown,
		Scores:     scores,
		Hands:      hands,
	}}, nil
}

// Leave 玩家离开。对局中手牌作废；剩一人时该玩家获胜；
// 否则修正回合指针，离开的若是当前玩家则由接替其座位的玩家摸牌。
func (s *Session) Leave(id string) ([]Event, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.ErrNotInRoom
	}

	wasPlaying := s.phase.Playing()
	wasHolder := idx == s.turnIndex

	s.players = slices.Delete(s.players, idx, idx+1)
	if hand, ok := s.hands[id]; ok {
		s.dead = append(s.dead, hand...)
		delete(s.hands, id)
	}
	if id == s.hostID {
		s.hostID = ""
		if len(s.players) > 0 {
			s.hostID = s.players[0].ID
		}
	}
	if idx < s.turnIndex {
		s.turnIndex--
	}
	if s.turnIndex >= len(s.players) {
		s.turnIndex = 0
	}

	events := []Event{PlayerLeft{PlayerID: id, Players: s.Players()}}
	if !wasPlaying {
		return events, nil
	}

	switch {
	case len(s.players) == 0:
		s.phase = PhaseEnded
	case len(s.players) == 1:
		w := s.players[0]
		s.phase = PhaseEnded
		s.winnerID = w.ID
		events = append(events, GameEnded{WinnerID: w.ID, WinnerName: w.Name, Reason: EndAbandon})
	case wasHolder:
		holder := s.players[s.turnIndex].ID
		s.phase = PhaseDraw
		events = append(events,
			TurnChanged{PlayerID: holder, Phase: PhaseDraw},
			YourTurn{PlayerID: holder},
		)
	}
	return events, nil
}

// checkTurn 校验调用者是本局玩家、对局进行中、轮到他且阶段为 want
func (s *Session) checkTurn(id string, want Phase) error {
	if s.indexOf(id) < 0 {
		return apperrors.ErrNotInRoom
	}
	switch s.phase {
	case PhaseWaiting:
		return apperrors.ErrGameNotStart
	case PhaseEnded:
		return apperrors.ErrGameEnded
	}
	if s.players[s.turnIndex].ID != id {
		return apperrors.ErrNotYourTurn
	}
	if s.phase != want {
		return apperrors.ErrWrongPhase
	}
	return nil
}

// --- 查询 ---

func (s *Session) indexOf(id string) int {
	return slices.IndexFunc(s.players, func(p Player) bool { return p.ID == id })
}

func (s *Session) playerIDs() []string {
	ids := make([]string, len(s.players))
	for i, p := range s.players {
		ids[i] = p.ID
	}
	return ids
}

// Players 按加入顺序返回玩家列表副本
func (s *Session) Players() []Player {
	return slices.Clone(s.players)
}

// HasPlayer 玩家是否在本局中
func (s *Session) HasPlayer(id string) bool {
	return s.indexOf(id) >= 0
}

// PlayerCount 玩家数量
func (s *Session) PlayerCount() int {
	return len(s.players)
}

// Capacity 满员人数
func (s *Session) Capacity() int {
	return s.capacity
}

// Phase 当前阶段
func (s *Session) Phase() Phase {
	return s.phase
}

// HostID 房主 ID，没有玩家时为空
func (s *Session) HostID() string {
	return s.hostID
}

// WinnerID 胜者 ID，未结束时为空
func (s *Session) WinnerID() string {
	return s.winnerID
}

// TurnHolder 当前回合玩家 ID，等待阶段为空
func (s *Session) TurnHolder() string {
	if s.phase == PhaseWaiting || len(s.players) == 0 {
		return ""
	}
	return s.players[s.turnIndex].ID
}

// TurnIndex 当前回合玩家下标
func (s *Session) TurnIndex() int {
	return s.turnIndex
}

// LastDiscardValue 最近一次出牌的点数
func (s *Session) LastDiscardValue() card.Value {
	return s.lastDiscardValue
}

// Hand 返回玩家手牌副本
func (s *Session) Hand(id string) []card.Card {
	return slices.Clone(s.hands[id])
}

// DeckCount 牌堆剩余张数
func (s *Session) DeckCount() int {
	return s.deck.Len()
}

// CardCount 牌堆、手牌、弃牌与作废牌的总数，开局后恒为 52
func (s *Session) CardCount() int {
	total := s.deck.Len() + len(s.dead)
	for _, hand := range s.hands {
		total += len(hand)
	}
	for _, pile := range s.discards {
		total += len(pile)
	}
	return total
}
