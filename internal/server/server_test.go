package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/kang357/internal/config"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
)

// newTestConfig 通过 Load 生成带默认值的配置，extra 为追加的 YAML
func newTestConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  player_count: 2\n"+extra), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		s.Shutdown(context.Background())
		ts.Close()
	})
	return s, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// testConn 测试用 WebSocket 客户端
type testConn struct {
	t     *testing.T
	conn  *websocket.Conn
	codec codec.Codec
}

func dial(t *testing.T, ts *httptest.Server, c codec.Codec) *testConn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &testConn{t: t, conn: conn, codec: c}
}

func (tc *testConn) send(msgType protocol.MessageType, payload any) {
	tc.t.Helper()
	data, err := tc.codec.Encode(codec.MustNewMessage(msgType, payload))
	require.NoError(tc.t, err)
	frame := websocket.TextMessage
	if tc.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	require.NoError(tc.t, tc.conn.WriteMessage(frame, data))
}

// waitFor 读取消息直到出现指定类型
func (tc *testConn) waitFor(msgType protocol.MessageType) *protocol.Message {
	tc.t.Helper()
	require.NoError(tc.t, tc.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		frame, data, err := tc.conn.ReadMessage()
		require.NoError(tc.t, err)
		if tc.codec.Binary() {
			require.Equal(tc.t, websocket.BinaryMessage, frame)
		} else {
			require.Equal(tc.t, websocket.TextMessage, frame)
		}
		msg, err := tc.codec.Decode(data)
		require.NoError(tc.t, err)
		if msg.Type == msgType {
			return &protocol.Message{Type: msg.Type, Payload: append([]byte(nil), msg.Payload...)}
		}
	}
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return *p
}

func jsonCodec(t *testing.T) codec.Codec {
	c, err := codec.New(codec.JSON)
	require.NoError(t, err)
	return c
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, newTestConfig(t, ""))

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status healthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status.Status)
	assert.False(t, status.Storage)
}

func TestServer_ConnectAndPlay(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, newTestConfig(t, ""))

	alice := dial(t, ts, jsonCodec(t))
	connected := payloadOf[protocol.ConnectedPayload](t, alice.waitFor(protocol.MsgConnected))
	assert.NotEmpty(t, connected.PlayerID)
	assert.NotEmpty(t, connected.PlayerName)

	alice.send(protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	created := payloadOf[protocol.RoomCreatedPayload](t, alice.waitFor(protocol.MsgRoomCreated))
	require.Len(t, created.RoomID, 6)

	bob := dial(t, ts, jsonCodec(t))
	bob.waitFor(protocol.MsgConnected)
	bob.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: created.RoomID, PlayerName: "Bob"})

	// 两人房满员自动开局
	joined := payloadOf[protocol.RoomJoinedPayload](t, bob.waitFor(protocol.MsgRoomJoined))
	assert.Len(t, joined.Players, 2)

	aliceHand := payloadOf[protocol.HandDealtPayload](t, alice.waitFor(protocol.MsgHandDealt))
	bobHand := payloadOf[protocol.HandDealtPayload](t, bob.waitFor(protocol.MsgHandDealt))
	assert.Len(t, aliceHand.Hand, 5)
	assert.Len(t, bobHand.Hand, 5)
	assert.Equal(t, 2, aliceHand.TotalPlayers)
	assert.Equal(t, 1, s.roomManager.RoomCount())
}

func TestServer_InvalidFrame(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, newTestConfig(t, ""))

	c := dial(t, ts, jsonCodec(t))
	c.waitFor(protocol.MsgConnected)
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	errPayload := payloadOf[protocol.ErrorPayload](t, c.waitFor(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errPayload.Code)

	c.send("bid", nil)
	errPayload = payloadOf[protocol.ErrorPayload](t, c.waitFor(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errPayload.Code)
}

func TestServer_ProtobufCodec(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, newTestConfig(t, "server:\n  codec: protobuf\n"))

	pb, err := codec.New(codec.Protobuf)
	require.NoError(t, err)

	c := dial(t, ts, pb)
	c.waitFor(protocol.MsgConnected)

	c.send(protocol.MsgPing, protocol.PingPayload{Timestamp: 42})
	pong := payloadOf[protocol.PongPayload](t, c.waitFor(protocol.MsgPong))
	assert.Equal(t, int64(42), pong.ClientTimestamp)
}

func TestServer_DisconnectLeavesRoom(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, newTestConfig(t, ""))

	c := dial(t, ts, jsonCodec(t))
	c.waitFor(protocol.MsgConnected)
	c.send(protocol.MsgCreateRoom, nil)
	c.waitFor(protocol.MsgRoomCreated)
	require.Equal(t, 1, s.roomManager.RoomCount())

	require.NoError(t, c.conn.Close())

	assert.Eventually(t, func() bool {
		return s.roomManager.RoomCount() == 0 && s.GetOnlineCount() == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestServer_MaintenanceRejectsConnections(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, newTestConfig(t, ""))
	s.EnterMaintenanceMode()
	assert.True(t, s.IsMaintenanceMode())

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_PushesOnlineCountToLobby(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, newTestConfig(t, ""))

	alice := dial(t, ts, jsonCodec(t))
	alice.waitFor(protocol.MsgConnected)

	bob := dial(t, ts, jsonCodec(t))
	bob.waitFor(protocol.MsgConnected)

	// alice 先收到自己连上时的人数，再收到 bob 连上后的人数
	count := 0
	for count != 2 {
		count = payloadOf[protocol.OnlineCountPayload](t, alice.waitFor(protocol.MsgOnlineCount)).Count
	}

	require.NoError(t, bob.conn.Close())
	assert.Equal(t, 1, payloadOf[protocol.OnlineCountPayload](t, alice.waitFor(protocol.MsgOnlineCount)).Count)
}

func TestServer_MaintenanceNotice(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, newTestConfig(t, ""))

	lobby := dial(t, ts, jsonCodec(t))
	lobby.waitFor(protocol.MsgConnected)

	host := dial(t, ts, jsonCodec(t))
	host.waitFor(protocol.MsgConnected)
	host.send(protocol.MsgCreateRoom, nil)
	host.waitFor(protocol.MsgRoomCreated)

	s.EnterMaintenanceMode()

	got := payloadOf[protocol.ErrorPayload](t, lobby.waitFor(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeServerMaintenance, got.Code)
	assert.Contains(t, got.Message, "暂停创建房间")

	got = payloadOf[protocol.ErrorPayload](t, host.waitFor(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeServerMaintenance, got.Code)
	assert.Contains(t, got.Message, "不再接受新玩家")
}

func TestServer_OriginRejected(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "security:\n  allowed_origins:\n    - \"https://kang.example\"\n")
	_, ts := newTestServer(t, cfg)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_WithRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	// 上次运行遗留的快照在启动时清理
	require.NoError(t, mr.Set("room:stale1", `{"code":"stale1"}`))

	s, ts := newTestServer(t, newTestConfig(t, "redis:\n  addr: \""+mr.Addr()+"\"\n"))
	assert.False(t, mr.Exists("room:stale1"))

	c := dial(t, ts, jsonCodec(t))
	c.waitFor(protocol.MsgConnected)

	c.send(protocol.MsgCreateRoom, nil)
	created := payloadOf[protocol.RoomCreatedPayload](t, c.waitFor(protocol.MsgRoomCreated))
	assert.Eventually(t, func() bool {
		return mr.Exists("room:" + created.RoomID)
	}, 3*time.Second, 20*time.Millisecond)

	c.send(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: 5})
	board := payloadOf[protocol.LeaderboardResultPayload](t, c.waitFor(protocol.MsgLeaderboardResult))
	assert.Empty(t, board.Entries)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var status healthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Storage)
	assert.Equal(t, 1, status.Rooms)
	assert.NotNil(t, s.redis)
}

func TestNewServer_RedisUnavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, err := NewServer(newTestConfig(t, "redis:\n  addr: \""+addr+"\"\n"))
	assert.Error(t, err)
}

func TestServer_GracefulShutdownWithoutGames(t *testing.T) {
	t.Parallel()

	s, err := NewServer(newTestConfig(t, ""))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.GracefulShutdown(context.Background(), time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("GracefulShutdown 未在超时内返回")
	}
	assert.True(t, s.IsMaintenanceMode())
}
