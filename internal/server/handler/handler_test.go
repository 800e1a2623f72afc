package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/game/room"
	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/server/storage"
	"github.com/palemoky/kang357/internal/testutil"
)

func payloadOf[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return *p
}

func errorCode(t *testing.T, c *testutil.SimpleClient) int {
	t.Helper()
	return payloadOf[protocol.ErrorPayload](t, c.Last(protocol.MsgError)).Code
}

func newTestHandler(server *testutil.MockServer, lb Leaderboard) (*Handler, *room.Manager) {
	rm := room.NewManager(nil, nil, room.Options{PlayerCount: 3, MinPlayers: 2, RoomTimeout: 10 * time.Minute})
	h := NewHandler(HandlerDeps{
		Server:      server,
		RoomManager: rm,
		Leaderboard: lb,
	})
	return h, rm
}

func cd(v card.Value, s card.Suit) card.Card {
	return card.Card{Suit: s, Value: v}
}

// addPlayingRoom 三人对局，手牌均无特殊牌型，轮到 p1 摸牌，牌堆末端为 ♣A
func addPlayingRoom(rm *room.Manager) []*testutil.SimpleClient {
	clients := []*testutil.SimpleClient{
		testutil.NewSimpleClient("p1", "Alice"),
		testutil.NewSimpleClient("p2", "Bob"),
		testutil.NewSimpleClient("p3", "Carol"),
	}
	s := session.NewPlayingForTest(
		[]session.Player{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}, {ID: "p3", Name: "Carol"}},
		[][]card.Card{
			{cd(card.Two, card.Spade), cd(card.Four, card.Heart), cd(card.Six, card.Diamond), cd(card.Nine, card.Club), cd(card.Jack, card.Spade)},
			{cd(card.Three, card.Spade), cd(card.Five, card.Heart), cd(card.Seven, card.Diamond), cd(card.Ten, card.Club), cd(card.Queen, card.Spade)},
			{cd(card.Two, card.Heart), cd(card.Four, card.Diamond), cd(card.Six, card.Club), cd(card.Nine, card.Spade), cd(card.King, card.Heart)},
		},
	)
	rm.AddRoomForTest("abc123", s, clients[0], clients[1], clients[2])
	return clients
}

func TestHandler_UnknownType(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(new(testutil.MockServer), nil)
	client := testutil.NewSimpleClient("p1", "Alice")

	h.Handle(client, &protocol.Message{Type: "bid"})

	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, client))
}

func TestHandler_Ping(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(new(testutil.MockServer), nil)
	client := testutil.NewSimpleClient("p1", "Alice")

	h.Handle(client, codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 12345}))

	pong := payloadOf[protocol.PongPayload](t, client.Last(protocol.MsgPong))
	assert.Equal(t, int64(12345), pong.ClientTimestamp)
	assert.Positive(t, pong.ServerTimestamp)
}

func TestHandler_CreateRoom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested string
		expected  string
	}{
		{"requested name", "  Xiaoming ", "Xiaoming"},
		{"fallback to connection name", "", "Alice"},
		{"truncated", "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := new(testutil.MockServer)
			server.On("IsMaintenanceMode").Return(false)
			h, rm := newTestHandler(server, nil)
			client := testutil.NewSimpleClient("p1", "Alice")

			h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: tt.requested}))

			created := payloadOf[protocol.RoomCreatedPayload](t, client.Last(protocol.MsgRoomCreated))
			require.Len(t, created.Players, 1)
			assert.Equal(t, tt.expected, created.Players[0].Name)
			assert.True(t, created.Players[0].Host)
			assert.Equal(t, created.RoomID, client.GetRoom())
			assert.Equal(t, 1, rm.RoomCount())
		})
	}
}

func TestHandler_CreateRoom_Maintenance(t *testing.T) {
	t.Parallel()

	server := new(testutil.MockServer)
	server.On("IsMaintenanceMode").Return(true)
	h, rm := newTestHandler(server, nil)
	client := testutil.NewSimpleClient("p1", "Alice")

	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, nil))

	assert.Equal(t, protocol.ErrCodeServerMaintenance, errorCode(t, client))
	assert.Zero(t, rm.RoomCount())
	server.AssertExpectations(t)
}

func TestHandler_CreateRoom_AlreadyInRoom(t *testing.T) {
	t.Parallel()

	server := new(testutil.MockServer)
	server.On("IsMaintenanceMode").Return(false)
	h, _ := newTestHandler(server, nil)
	client := testutil.NewSimpleClient("p1", "Alice")

	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, nil))
	h.Handle(client, codec.MustNewMessage(protocol.MsgCreateRoom, nil))

	assert.Equal(t, protocol.ErrCodeAlreadyInRoom, errorCode(t, client))
}

func TestHandler_JoinRoom(t *testing.T) {
	t.Parallel()

	server := new(testutil.MockServer)
	server.On("IsMaintenanceMode").Return(false)
	h, _ := newTestHandler(server, nil)

	host := testutil.NewSimpleClient("p1", "Alice")
	h.Handle(host, codec.MustNewMessage(protocol.MsgCreateRoom, nil))
	code := host.GetRoom()
	require.NotEmpty(t, code)

	guest := testutil.NewSimpleClient("p2", "Bob")
	h.Handle(guest, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: code, PlayerName: "Bobby"}))

	joined := payloadOf[protocol.RoomJoinedPayload](t, guest.Last(protocol.MsgRoomJoined))
	assert.Equal(t, code, joined.RoomID)
	assert.Len(t, joined.Players, 2)

	notice := payloadOf[protocol.PlayerJoinedPayload](t, host.Last(protocol.MsgPlayerJoined))
	assert.Equal(t, "Bobby", notice.Player.Name)
}

func TestHandler_JoinRoom_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      *protocol.Message
		expected int
	}{
		{"missing room id", codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{}), protocol.ErrCodeInvalidMsg},
		{"unknown room", codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: "zzzzzz"}), protocol.ErrCodeRoomNotFound},
		{"malformed payload", &protocol.Message{Type: protocol.MsgJoinRoom, Payload: []byte(`"oops"`)}, protocol.ErrCodeInvalidMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := new(testutil.MockServer)
			server.On("IsMaintenanceMode").Return(false)
			h, _ := newTestHandler(server, nil)
			client := testutil.NewSimpleClient("p1", "Alice")

			h.Handle(client, tt.msg)

			assert.Equal(t, tt.expected, errorCode(t, client))
			assert.Empty(t, client.GetRoom())
		})
	}
}

func TestHandler_StartAndLeave(t *testing.T) {
	t.Parallel()

	server := new(testutil.MockServer)
	server.On("IsMaintenanceMode").Return(false)
	h, rm := newTestHandler(server, nil)

	host := testutil.NewSimpleClient("p1", "Alice")
	guest := testutil.NewSimpleClient("p2", "Bob")
	h.Handle(host, codec.MustNewMessage(protocol.MsgCreateRoom, nil))
	h.Handle(guest, codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: host.GetRoom()}))

	// 只有房主可以开局
	h.Handle(guest, &protocol.Message{Type: protocol.MsgStart})
	assert.Equal(t, protocol.ErrCodeNotHost, errorCode(t, guest))

	h.Handle(host, &protocol.Message{Type: protocol.MsgStart})
	assert.NotNil(t, host.Last(protocol.MsgHandDealt))
	assert.NotNil(t, guest.Last(protocol.MsgHandDealt))

	h.Handle(guest, &protocol.Message{Type: protocol.MsgLeaveRoom})
	assert.Empty(t, guest.GetRoom())
	assert.NotNil(t, host.Last(protocol.MsgPlayerLeft))

	h.Handle(host, &protocol.Message{Type: protocol.MsgLeaveRoom})
	assert.Zero(t, rm.RoomCount())

	// 不在房间中再次离开
	h.Handle(host, &protocol.Message{Type: protocol.MsgLeaveRoom})
	assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, host))
}

func TestHandler_DrawAndDiscard(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(new(testutil.MockServer), nil)
	clients := addPlayingRoom(h.roomManager)
	p1, p2 := clients[0], clients[1]

	h.Handle(p1, &protocol.Message{Type: protocol.MsgDraw})
	drawn := payloadOf[protocol.CardDrawnPayload](t, p1.Last(protocol.MsgCardDrawn))
	assert.Equal(t, protocol.CardInfo{Suit: "♣", Value: "A"}, drawn.Card)
	assert.Nil(t, p2.Last(protocol.MsgCardDrawn))
	assert.Equal(t, 6, payloadOf[protocol.PlayerDrewPayload](t, p2.Last(protocol.MsgPlayerDrew)).HandCount)

	h.Handle(p1, codec.MustNewMessage(protocol.MsgDiscard, protocol.DiscardPayload{
		Cards: []protocol.CardInfo{{Suit: "♣", Value: "A"}},
	}))

	discarded := payloadOf[protocol.CardsDiscardedPayload](t, p2.Last(protocol.MsgCardsDiscarded))
	assert.Equal(t, "p1", discarded.PlayerID)
	assert.NotNil(t, p2.Last(protocol.MsgYourTurn))
	assert.Nil(t, p1.Last(protocol.MsgError))
}

func TestHandler_GameErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		player   int
		msg      *protocol.Message
		expected int
	}{
		{"draw out of turn", 1, &protocol.Message{Type: protocol.MsgDraw}, protocol.ErrCodeNotYourTurn},
		{"discard before draw", 0, codec.MustNewMessage(protocol.MsgDiscard, protocol.DiscardPayload{
			Cards: []protocol.CardInfo{{Suit: "♠", Value: "2"}},
		}), protocol.ErrCodeWrongPhase},
		{"unparseable card", 0, codec.MustNewMessage(protocol.MsgDiscard, protocol.DiscardPayload{
			Cards: []protocol.CardInfo{{Suit: "X", Value: "2"}},
		}), protocol.ErrCodeInvalidCards},
		{"showdown out of turn", 2, &protocol.Message{Type: protocol.MsgShowdown}, protocol.ErrCodeNotYourTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _ := newTestHandler(new(testutil.MockServer), nil)
			clients := addPlayingRoom(h.roomManager)

			h.Handle(clients[tt.player], tt.msg)

			assert.Equal(t, tt.expected, errorCode(t, clients[tt.player]))
			for i, c := range clients {
				if i != tt.player {
					assert.Nil(t, c.Last(protocol.MsgError), "错误只发给发起者")
				}
			}
		})
	}
}

func TestHandler_NotInRoom(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(new(testutil.MockServer), nil)
	client := testutil.NewSimpleClient("p1", "Alice")

	for _, msgType := range []protocol.MessageType{protocol.MsgStart, protocol.MsgDraw, protocol.MsgShowdown, protocol.MsgKang} {
		client.Reset()
		h.Handle(client, &protocol.Message{Type: msgType})
		assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, client), msgType)
	}
}

func TestHandler_KangAlias(t *testing.T) {
	t.Parallel()

	h, rm := newTestHandler(new(testutil.MockServer), nil)
	clients := addPlayingRoom(rm)

	h.Handle(clients[0], &protocol.Message{Type: protocol.MsgKang})

	for _, c := range clients {
		ended := payloadOf[protocol.GameEndedPayload](t, c.Last(protocol.MsgGameEnded))
		assert.Equal(t, "p1", ended.WinnerID)
		assert.Equal(t, protocol.ReasonShowdown, ended.Reason)
		assert.Equal(t, 32, ended.Scores["p1"])
		assert.Len(t, ended.Hands, 3)
	}
}

func TestHandler_Chat(t *testing.T) {
	t.Parallel()

	limiter := new(testutil.MockChatLimiter)
	limiter.On("AllowChat", "p1").Return(true, "")
	limiter.On("AllowChat", "p2").Return(false, "慢一点")

	rm := room.NewManager(nil, nil, room.Options{PlayerCount: 3})
	h := NewHandler(HandlerDeps{Server: new(testutil.MockServer), RoomManager: rm, ChatLimiter: limiter})
	clients := addPlayingRoom(rm)

	h.Handle(clients[0], codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: " 杠！ "}))
	for _, c := range clients {
		chat := payloadOf[protocol.ChatPayload](t, c.Last(protocol.MsgChat))
		assert.Equal(t, "p1", chat.SenderID)
		assert.Equal(t, "Alice", chat.SenderName)
		assert.Equal(t, "杠！", chat.Message)
	}

	h.Handle(clients[1], codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: "spam"}))
	errPayload := payloadOf[protocol.ErrorPayload](t, clients[1].Last(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeRateLimit, errPayload.Code)
	assert.Equal(t, "慢一点", errPayload.Message)

	h.Handle(clients[2], codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: "   "}))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, clients[2]))

	lobby := testutil.NewSimpleClient("p9", "Lonely")
	h.Handle(lobby, codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: "hi"}))
	assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, lobby))

	limiter.AssertExpectations(t)
}

func TestHandler_GetStats(t *testing.T) {
	t.Parallel()

	t.Run("storage disabled", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestHandler(new(testutil.MockServer), nil)
		client := testutil.NewSimpleClient("p1", "Alice")

		h.Handle(client, &protocol.Message{Type: protocol.MsgGetStats})

		stats := payloadOf[protocol.StatsResultPayload](t, client.Last(protocol.MsgStatsResult))
		assert.Equal(t, "p1", stats.PlayerID)
		assert.Zero(t, stats.TotalGames)
	})

	t.Run("with stats", func(t *testing.T) {
		t.Parallel()

		lb := new(testutil.MockLeaderboard)
		lb.On("GetPlayerStats", mock.Anything, "p1").Return(&storage.PlayerStats{
			PlayerID: "p1", PlayerName: "Alice", TotalGames: 4, Wins: 3, Losses: 1, SpecialWins: 1, ShowdownWins: 2, Score: 42,
		}, nil)
		lb.On("GetPlayerRank", mock.Anything, "p1").Return(int64(2), nil)

		h, _ := newTestHandler(new(testutil.MockServer), lb)
		client := testutil.NewSimpleClient("p1", "Alice")

		h.Handle(client, &protocol.Message{Type: protocol.MsgGetStats})

		stats := payloadOf[protocol.StatsResultPayload](t, client.Last(protocol.MsgStatsResult))
		assert.Equal(t, 42, stats.Score)
		assert.Equal(t, 2, stats.Rank)
		assert.Equal(t, 1, stats.SpecialWins)
		assert.InDelta(t, 75.0, stats.WinRate, 0.001)
		lb.AssertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		lb := new(testutil.MockLeaderboard)
		lb.On("GetPlayerStats", mock.Anything, "p1").Return(nil, errors.New("redis down"))

		h, _ := newTestHandler(new(testutil.MockServer), lb)
		client := testutil.NewSimpleClient("p1", "Alice")

		h.Handle(client, &protocol.Message{Type: protocol.MsgGetStats})

		assert.Equal(t, protocol.ErrCodeUnknown, errorCode(t, client))
	})
}

func TestHandler_GetLeaderboard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{"default", 0, defaultLeaderboardLimit},
		{"custom", 20, 20},
		{"clamped", 500, defaultLeaderboardLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lb := new(testutil.MockLeaderboard)
			lb.On("GetLeaderboard", mock.Anything, tt.expectedLimit).Return([]*storage.LeaderboardEntry{
				{Rank: 1, PlayerID: "p1", PlayerName: "Alice", Score: 99, Wins: 9, WinRate: 90},
			}, nil)

			h, _ := newTestHandler(new(testutil.MockServer), lb)
			client := testutil.NewSimpleClient("p1", "Alice")

			h.Handle(client, codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: tt.limit}))

			result := payloadOf[protocol.LeaderboardResultPayload](t, client.Last(protocol.MsgLeaderboardResult))
			require.Len(t, result.Entries, 1)
			assert.Equal(t, 99, result.Entries[0].Score)
			lb.AssertExpectations(t)
		})
	}
}

func TestHandler_RoomListAndOnlineCount(t *testing.T) {
	t.Parallel()

	server := new(testutil.MockServer)
	server.On("IsMaintenanceMode").Return(false)
	server.On("GetOnlineCount").Return(7)
	h, _ := newTestHandler(server, nil)

	client := testutil.NewSimpleClient("p1", "Alice")
	h.Handle(client, &protocol.Message{Type: protocol.MsgGetRoomList})
	list := payloadOf[protocol.RoomListResultPayload](t, client.Last(protocol.MsgRoomListResult))
	assert.Empty(t, list.Rooms)

	host := testutil.NewSimpleClient("p2", "Bob")
	h.Handle(host, codec.MustNewMessage(protocol.MsgCreateRoom, nil))

	h.Handle(client, &protocol.Message{Type: protocol.MsgGetRoomList})
	list = payloadOf[protocol.RoomListResultPayload](t, client.Last(protocol.MsgRoomListResult))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, host.GetRoom(), list.Rooms[0].RoomID)
	assert.Equal(t, 3, list.Rooms[0].MaxPlayers)

	h.Handle(client, &protocol.Message{Type: protocol.MsgGetOnlineCount})
	assert.Equal(t, 7, payloadOf[protocol.OnlineCountPayload](t, client.Last(protocol.MsgOnlineCount)).Count)
}

func TestHandler_Tracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	rm := room.NewManager(nil, nil, room.Options{PlayerCount: 3})
	h := NewHandler(HandlerDeps{
		Server:      new(testutil.MockServer),
		RoomManager: rm,
		Tracer:      tp.Tracer("test"),
	})
	clients := addPlayingRoom(rm)

	h.Handle(clients[0], &protocol.Message{Type: protocol.MsgDraw})
	h.Handle(clients[1], &protocol.Message{Type: protocol.MsgDraw})

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "kang357/draw", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("room.code", "abc123"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("player.id", "p1"))

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1, "拒绝应记录为 span 错误事件")
}
