package session

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kang357/internal/apperrors"
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/game/rule"
)

func cd(v card.Value, s card.Suit) card.Card {
	return card.Card{Suit: s, Value: v}
}

var threePlayers = []Player{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}, {ID: "p3", Name: "Carol"}}

// plainHands 三手没有特殊牌型的牌，点数和分别为 2+4+6+9+11=32、3+5+7+10+12=37、2+4+6+9+13=34
func plainHands() [][]card.Card {
	return [][]card.Card{
		{cd(card.Two, card.Spade), cd(card.Four, card.Heart), cd(card.Six, card.Diamond), cd(card.Nine, card.Club), cd(card.Jack, card.Spade)},
		{cd(card.Three, card.Spade), cd(card.Five, card.Heart), cd(card.Seven, card.Diamond), cd(card.Ten, card.Club), cd(card.Queen, card.Spade)},
		{cd(card.Two, card.Heart), cd(card.Four, card.Diamond), cd(card.Six, card.Club), cd(card.Nine, card.Spade), cd(card.King, card.Heart)},
	}
}

func requireCardCount(t *testing.T, s *Session) {
	t.Helper()
	require.Equal(t, card.DeckSize, s.CardCount())
}

func findEvent[T Event](events []Event) (T, bool) {
	for _, e := range events {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestJoin(t *testing.T) {
	t.Parallel()

	s := New(Options{Capacity: 3})

	events, err := s.Join("p1", "Alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	joined := events[0].(PlayerJoined)
	assert.Equal(t, "p1", joined.Player.ID)
	assert.Equal(t, "p1", s.HostID())
	assert.Equal(t, PhaseWaiting, s.Phase())

	_, err = s.Join("p1", "Alice again")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	_, err = s.Join("p2", "Bob")
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, s.Phase())

	// 第三人入座即满员自动开局
	events, err = s.Join("p3", "Carol")
	require.NoError(t, err)
	assert.NotEqual(t, PhaseWaiting, s.Phase())
	_, dealt := findEvent[HandDealt](events)
	assert.True(t, dealt)
	requireCardCount(t, s)

	_, err = s.Join("p4", "Dave")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestJoin_RoomFull(t *testing.T) {
	t.Parallel()

	s := New(Options{Capacity: 2})
	s.players = []Player{{ID: "a"}, {ID: "b"}}
	_, err := s.Join("c", "C")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	var gameErr *apperrors.GameError
	require.ErrorAs(t, err, &gameErr)
	assert.Equal(t, apperrors.IllegalMove, gameErr.Kind)
}

func TestStart_Validation(t *testing.T) {
	t.Parallel()

	s := New(Options{Capacity: 4, MinPlayers: 2})
	_, _ = s.Join("p1", "Alice")

	_, err := s.Start("p1")
	assert.ErrorIs(t, err, apperrors.ErrNotEnoughPlayers)

	_, _ = s.Join("p2", "Bob")
	_, err = s.Start("p2")
	assert.ErrorIs(t, err, apperrors.ErrNotHost)

	_, err = s.Start("stranger")
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)

	assert.Equal(t, PhaseWaiting, s.Phase())
	assert.Equal(t, 0, s.CardCount(), "nothing dealt on rejection")

	events, err := s.Start("p1")
	require.NoError(t, err)
	assert.True(t, s.Phase() == PhaseDraw || s.Phase() == PhaseEnded)
	requireCardCount(t, s)

	dealtCount := 0
	for _, e := range events {
		if d, ok := e.(HandDealt); ok {
			dealtCount++
			assert.Len(t, d.Hand, rule.HandSize)
			assert.Equal(t, 2, d.TotalPlayers)
			assert.Equal(t, []string{"p1", "p2"}, d.AllPlayerIDs)
			assert.Equal(t, s.Hand(d.PlayerID), d.Hand)
		}
	}
	assert.Equal(t, 2, dealtCount)

	_, err = s.Start("p1")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestStart_Outcomes(t *testing.T) {
	t.Parallel()

	// 多个种子覆盖普通开局与特殊牌型直接获胜两种分支
	for seed := range uint64(200) {
		s := New(Options{Capacity: 4, Rand: rand.New(rand.NewPCG(seed, 99))})
		var events []Event
		for _, p := range []string{"a", "b", "c", "d"} {
			ev, err := s.Join(p, p)
			require.NoError(t, err)
			events = append(events, ev...)
		}
		requireCardCount(t, s)

		// 期望的胜者：优先级最高，同级取先发到的
		expected := ""
		best := rule.None.Precedence()
		for _, e := range events {
			if d, ok := e.(HandDealt); ok && d.Special != nil && d.Special.Precedence() < best {
				expected, best = d.PlayerID, d.Special.Precedence()
			}
		}

		ended, isEnded := findEvent[GameEnded](events)
		if expected == "" {
			require.False(t, isEnded)
			assert.Equal(t, PhaseDraw, s.Phase())
			assert.Equal(t, "a", s.TurnHolder())
			turn, ok := findEvent[YourTurn](events)
			require.True(t, ok)
			assert.Equal(t, "a", turn.PlayerID)
			continue
		}
		require.True(t, isEnded)
		assert.Equal(t, PhaseEnded, s.Phase())
		assert.Equal(t, EndSpecial, ended.Reason)
		assert.Equal(t, expected, ended.WinnerID)
		assert.Equal(t, best, ended.Special.Precedence())
	}
}

func TestDraw(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())
	requireCardCount(t, s)

	_, err := s.Draw("p2")
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	_, err = s.Draw("nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)

	before := s.DeckCount()
	events, err := s.Draw("p1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	drawn := events[0].(CardDrawn)
	assert.Equal(t, cd(card.Ace, card.Club), drawn.Card)
	assert.Equal(t, "p1", drawn.PlayerID)
	assert.Equal(t, PlayerDrew{PlayerID: "p1", HandCount: 6}, events[1])
	assert.Len(t, s.Hand("p1"), 6)
	assert.Equal(t, before-1, s.DeckCount())
	assert.Equal(t, PhaseDiscard, s.Phase())
	requireCardCount(t, s)

	_, err = s.Draw("p1")
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase)
}

func TestDraw_EmptyDeck(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())
	s.dead = append(s.dead, s.deck...)
	s.deck = nil

	_, err := s.Draw("p1")
	assert.ErrorIs(t, err, apperrors.ErrDeckEmpty)

	var gameErr *apperrors.GameError
	require.ErrorAs(t, err, &gameErr)
	assert.Equal(t, apperrors.ResourceExhausted, gameErr.Kind)
	assert.Equal(t, PhaseDraw, s.Phase())
	requireCardCount(t, s)
}

func TestDiscard_Validation(t *testing.T) {
	t.Parallel()

	hands := plainHands()
	hands[0][1] = cd(card.Two, card.Club) // p1: 2♠ 2♣ 6♦ 9♣ J♠
	s := NewPlayingForTest(threePlayers, hands)

	_, err := s.Discard("p1", []card.Card{cd(card.Two, card.Spade)})
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase, "must draw first")

	_, err = s.Draw("p1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		id    string
		cards []card.Card
		want  error
	}{
		{"not your turn", "p2", []card.Card{cd(card.Three, card.Spade)}, apperrors.ErrNotYourTurn},
		{"no cards", "p1", nil, apperrors.ErrInvalidCards},
		{"three cards", "p1", []card.Card{cd(card.Two, card.Spade), cd(card.Two, card.Club), cd(card.Six, card.Diamond)}, apperrors.ErrInvalidCards},
		{"duplicate card", "p1", []card.Card{cd(card.Two, card.Spade), cd(card.Two, card.Spade)}, apperrors.ErrInvalidCards},
		{"not held", "p1", []card.Card{cd(card.Two, card.Diamond)}, apperrors.ErrCardNotHeld},
		{"mixed values", "p1", []card.Card{cd(card.Two, card.Spade), cd(card.Six, card.Diamond)}, apperrors.ErrMixedValues},
	}

	for _, tt := range tests {
		_, err := s.Discard(tt.id, tt.cards)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	// 被拒绝的操作不改变状态
	assert.Equal(t, PhaseDiscard, s.Phase())
	assert.Equal(t, "p1", s.TurnHolder())
	assert.Len(t, s.Hand("p1"), 6)
	requireCardCount(t, s)
}

func TestDiscard_AdvancesToDraw(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())
	_, err := s.Draw("p1")
	require.NoError(t, err)

	// p2 没有 J
	events, err := s.Discard("p1", []card.Card{cd(card.Jack, card.Spade)})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, CardsDiscarded{PlayerID: "p1", Cards: []card.Card{cd(card.Jack, card.Spade)}}, events[0])
	assert.Equal(t, TurnChanged{PlayerID: "p2", Phase: PhaseDraw}, events[1])
	assert.Equal(t, YourTurn{PlayerID: "p2"}, events[2])

	assert.Equal(t, PhaseDraw, s.Phase())
	assert.Equal(t, "p2", s.TurnHolder())
	assert.Equal(t, card.Jack, s.LastDiscardValue())
	assert.Len(t, s.Hand("p1"), 5)
	requireCardCount(t, s)
}

func TestDiscard_TwoOfAKind(t *testing.T) {
	t.Parallel()

	hands := plainHands()
	hands[0][1] = cd(card.Two, card.Club)
	s := NewPlayingForTest(threePlayers, hands)
	_, err := s.Draw("p1")
	require.NoError(t, err)

	// p2 没有 2，p3 有 2♥ 但只检查紧邻下家
	events, err := s.Discard("p1", []card.Card{cd(card.Two, card.Spade), cd(card.Two, card.Club)})
	require.NoError(t, err)
	_, reaction := findEvent[ReactionAvailable](events)
	assert.False(t, reaction)
	assert.Len(t, s.Hand("p1"), 4)
	assert.Equal(t, PhaseDraw, s.Phase())
	assert.Equal(t, "p2", s.TurnHolder())
	requireCardCount(t, s)
}

func TestDiscard_ReactionWindow(t *testing.T) {
	t.Parallel()

	hands := plainHands()
	hands[1][0] = cd(card.Jack, card.Heart) // p2 持有 J♥
	s := NewPlayingForTest(threePlayers, hands)
	_, err := s.Draw("p1")
	require.NoError(t, err)

	events, err := s.Discard("p1", []card.Card{cd(card.Jack, card.Spade)})
	require.NoError(t, err)

	_, yourTurn := findEvent[YourTurn](events)
	assert.False(t, yourTurn, "reaction replaces your-turn")
	reaction, ok := findEvent[ReactionAvailable](events)
	require.True(t, ok)
	assert.Equal(t, ReactionAvailable{PlayerID: "p2", Card: cd(card.Jack, card.Heart)}, reaction)
	assert.Equal(t, PhaseDiscard, s.Phase())
	assert.Equal(t, "p2", s.TurnHolder())

	// p2 不摸牌直接出，手牌降到 4 张
	_, err = s.Draw("p2")
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase)
	events, err = s.Discard("p2", []card.Card{cd(card.Jack, card.Heart)})
	require.NoError(t, err)
	assert.Len(t, s.Hand("p2"), 4)
	assert.Equal(t, "p3", s.TurnHolder())

	// 反应只有一层：p3 没有 J，正常摸牌
	_, ok = findEvent[YourTurn](events)
	assert.True(t, ok)
	assert.Equal(t, PhaseDraw, s.Phase())
	requireCardCount(t, s)
}

func TestTurnRotation_RoundRobin(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())

	for i := range 9 {
		want := threePlayers[i%len(threePlayers)].ID
		require.Equal(t, want, s.TurnHolder(), "turn %d", i)
		require.Equal(t, i%len(threePlayers), s.TurnIndex())

		var discard card.Card
		if s.Phase() == PhaseDraw {
			events, err := s.Draw(want)
			require.NoError(t, err)
			discard = events[0].(CardDrawn).Card
		} else {
			// 反应窗口：跟出同点牌
			var ok bool
			discard, ok = card.FindValue(s.Hand(want), s.LastDiscardValue())
			require.True(t, ok)
		}

		_, err := s.Discard(want, []card.Card{discard})
		require.NoError(t, err)
		requireCardCount(t, s)
	}
}

func TestShowdown(t *testing.T) {
	t.Parallel()

	hands := [][]card.Card{
		// 7 分
		{cd(card.Ace, card.Spade), cd(card.Ace, card.Heart), cd(card.Two, card.Diamond), cd(card.Two, card.Club), cd(card.Ace, card.Diamond)},
		// 20 分
		{cd(card.Two, card.Spade), cd(card.Four, card.Heart), cd(card.Four, card.Spade), cd(card.Five, card.Club), cd(card.Five, card.Spade)},
		// 3 分（四张牌，反应后尚未补牌）
		{cd(card.Ace, card.Club), cd(card.Two, card.Heart)},
	}
	s := NewPlayingForTest(threePlayers, hands)

	events, err := s.Showdown("p1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	ended := events[0].(GameEnded)
	assert.Equal(t, "p3", ended.WinnerID)
	assert.Equal(t, "Carol", ended.WinnerName)
	assert.Equal(t, EndShowdown, ended.Reason)
	assert.Equal(t, map[string]int{"p1": 7, "p2": 20, "p3": 3}, ended.Scores)
	assert.Equal(t, hands[1], ended.Hands["p2"])
	assert.Equal(t, PhaseEnded, s.Phase())
	assert.Equal(t, "p3", s.WinnerID())

	// 结束后不再接受任何操作
	_, err = s.Draw("p1")
	assert.ErrorIs(t, err, apperrors.ErrGameEnded)
	_, err = s.Showdown("p1")
	assert.ErrorIs(t, err, apperrors.ErrGameEnded)
	_, err = s.Join("p4", "Dave")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestShowdown_TieGoesToFirst(t *testing.T) {
	t.Parallel()

	hands := plainHands()
	hands[2] = []card.Card{cd(card.Two, card.Heart), cd(card.Four, card.Diamond), cd(card.Six, card.Club), cd(card.Nine, card.Spade), cd(card.Jack, card.Heart)}
	s := NewPlayingForTest(threePlayers, hands)

	events, err := s.Showdown("p1")
	require.NoError(t, err)
	ended := events[0].(GameEnded)
	assert.Equal(t, 32, ended.Scores["p1"])
	assert.Equal(t, 32, ended.Scores["p3"])
	assert.Equal(t, "p1", ended.WinnerID)
}

func TestShowdown_Policy(t *testing.T) {
	t.Parallel()

	s := New(Options{})
	_, _ = s.Join("p1", "Alice")
	_, err := s.Showdown("p1")
	assert.ErrorIs(t, err, apperrors.ErrGameNotStart)

	s = NewPlayingForTest(threePlayers, plainHands())
	_, err = s.Showdown("p2")
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	_, err = s.Showdown("outsider")
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
	assert.Equal(t, PhaseDraw, s.Phase())

	// 摸牌后的出牌阶段也可以摊牌
	_, err = s.Draw("p1")
	require.NoError(t, err)
	_, err = s.Showdown("p1")
	require.NoError(t, err)
	assert.Equal(t, PhaseEnded, s.Phase())
}

func TestLeave_Waiting(t *testing.T) {
	t.Parallel()

	s := New(Options{})
	_, _ = s.Join("p1", "Alice")
	_, _ = s.Join("p2", "Bob")

	events, err := s.Leave("p1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	left := events[0].(PlayerLeft)
	assert.Equal(t, "p1", left.PlayerID)
	assert.Equal(t, []Player{{ID: "p2", Name: "Bob"}}, left.Players)
	assert.Equal(t, "p2", s.HostID(), "host passes to next joiner")

	_, err = s.Leave("p1")
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)

	_, err = s.Leave("p2")
	require.NoError(t, err)
	assert.Equal(t, 0, s.PlayerCount())
	assert.Empty(t, s.HostID())
}

func TestLeave_TurnHolder(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())
	_, err := s.Draw("p1")
	require.NoError(t, err)

	events, err := s.Leave("p1")
	require.NoError(t, err)
	requireCardCount(t, s)

	// p2 接替 p1 的座位并从摸牌开始
	assert.Equal(t, "p2", s.TurnHolder())
	assert.Equal(t, PhaseDraw, s.Phase())
	turn, ok := findEvent[YourTurn](events)
	require.True(t, ok)
	assert.Equal(t, "p2", turn.PlayerID)
	assert.Equal(t, "p2", s.HostID())

	_, err = s.Draw("p2")
	require.NoError(t, err)
	requireCardCount(t, s)
}

func TestLeave_LastSeatWrapsToFirst(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())
	s.turnIndex = 2

	_, err := s.Leave("p3")
	require.NoError(t, err)
	assert.Equal(t, 0, s.TurnIndex())
	assert.Equal(t, "p1", s.TurnHolder())
	assert.Equal(t, PhaseDraw, s.Phase())
	requireCardCount(t, s)
}

func TestLeave_BeforeTurnHolder(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())
	s.turnIndex = 2
	s.phase = PhaseDiscard

	events, err := s.Leave("p1")
	require.NoError(t, err)
	require.Len(t, events, 1, "turn holder unaffected")

	assert.Equal(t, 1, s.TurnIndex())
	assert.Equal(t, "p3", s.TurnHolder())
	assert.Equal(t, PhaseDiscard, s.Phase())
	requireCardCount(t, s)
}

func TestLeave_AfterTurnHolder(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers, plainHands())

	events, err := s.Leave("p3")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "p1", s.TurnHolder())
	assert.Equal(t, PhaseDraw, s.Phase())
	requireCardCount(t, s)
}

func TestLeave_LastOpponentEndsGame(t *testing.T) {
	t.Parallel()

	s := NewPlayingForTest(threePlayers[:2], plainHands()[:2])

	events, err := s.Leave("p1")
	require.NoError(t, err)
	ended, ok := findEvent[GameEnded](events)
	require.True(t, ok)
	assert.Equal(t, "p2", ended.WinnerID)
	assert.Equal(t, EndAbandon, ended.Reason)
	assert.Equal(t, PhaseEnded, s.Phase())
	requireCardCount(t, s)

	// 结束后离开只移除玩家
	events, err = s.Leave("p2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0, s.PlayerCount())
}

func TestCardCount_FullGame(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(2024, 7))
	for game := range 30 {
		s := New(Options{Capacity: 4, Rand: r})
		for _, id := range []string{"a", "b", "c", "d"} {
			_, err := s.Join(id, id)
			require.NoError(t, err)
		}

		for step := 0; s.Phase().Playing() && step < 40; step++ {
			requireCardCount(t, s)
			holder := s.TurnHolder()
			if s.Phase() == PhaseDraw {
				if s.DeckCount() == 0 {
					break
				}
				_, err := s.Draw(holder)
				require.NoError(t, err, "game %d step %d", game, step)
				continue
			}
			hand := s.Hand(holder)
			if len(hand) == 0 {
				break
			}
			_, err := s.Discard(holder, hand[:1])
			require.NoError(t, err, "game %d step %d", game, step)
		}
		requireCardCount(t, s)

		if s.Phase().Playing() {
			_, err := s.Showdown(s.TurnHolder())
			require.NoError(t, err)
		}
		assert.Equal(t, PhaseEnded, s.Phase())
		assert.NotEmpty(t, s.WinnerID())
	}
}
