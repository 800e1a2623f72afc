// Package transport 是终端客户端的 WebSocket 连接层。
package transport

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/protocol/convert"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	bufferSize = 256
)

// ErrClosed 连接已关闭
var ErrClosed = errors.New("连接已关闭")

// Client WebSocket 客户端
type Client struct {
	ServerURL string

	codec   codec.Codec
	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	playerID   string
	playerName string
	latency    int64 // 网络延迟（毫秒）

	// 回调，在读协程中调用
	OnMessage       func(*protocol.Message)
	OnError         func(error)
	OnClose         func()
	OnLatencyUpdate func(int64)

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewClient 创建客户端，c 为空时使用 JSON 编码
func NewClient(serverURL string, c codec.Codec) *Client {
	if c == nil {
		c, _ = codec.New(codec.JSON)
	}
	return &Client{
		ServerURL: serverURL,
		codec:     c,
		send:      make(chan []byte, bufferSize),
		receive:   make(chan *protocol.Message, bufferSize),
		done:      make(chan struct{}),
	}
}

// Connect 连接服务器并启动读写协程
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, c.ServerURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	return nil
}

// Receive 返回收到的消息通道，连接关闭后关闭
func (c *Client) Receive() <-chan *protocol.Message {
	return c.receive
}

// ReceiveWithTimeout 等待下一条消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	select {
	case msg, ok := <-c.receive:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-time.After(timeout):
		return nil, errors.New("接收超时")
	}
}

// IsConnected 连接是否可用
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.closed
}

// Done 连接关闭时关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// PlayerID 服务器分配的玩家 ID
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// PlayerName 服务器分配的昵称
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// Latency 最近一次心跳的往返延迟（毫秒）
func (c *Client) Latency() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latency
}

// SendMessage 编码并放入发送队列
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("发送缓冲区已满")
	}
}

func (c *Client) sendTyped(msgType protocol.MessageType, payload any) error {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Close 关闭连接
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
}

// --- 客户端操作 ---

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.sendTyped(protocol.MsgPing, protocol.PingPayload{Timestamp: time.Now().UnixMilli()})
}

// CreateRoom 创建房间
func (c *Client) CreateRoom(name string) error {
	return c.sendTyped(protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: name})
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(code, name string) error {
	return c.sendTyped(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: code, PlayerName: name})
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.sendTyped(protocol.MsgLeaveRoom, nil)
}

// StartGame 房主开局
func (c *Client) StartGame() error {
	return c.sendTyped(protocol.MsgStart, nil)
}

// Draw 摸牌
func (c *Client) Draw() error {
	return c.sendTyped(protocol.MsgDraw, nil)
}

// Discard 出 1~2 张同点牌
func (c *Client) Discard(cards []card.Card) error {
	return c.sendTyped(protocol.MsgDiscard, protocol.DiscardPayload{Cards: convert.CardsToInfos(cards)})
}

// Showdown 杠：摊牌比点数
func (c *Client) Showdown() error {
	return c.sendTyped(protocol.MsgShowdown, nil)
}

// Chat 发送房间聊天
func (c *Client) Chat(text string) error {
	return c.sendTyped(protocol.MsgChat, protocol.ChatPayload{Message: text})
}

// GetRoomList 获取房间列表
func (c *Client) GetRoomList() error {
	return c.sendTyped(protocol.MsgGetRoomList, nil)
}

// GetOnlineCount 获取在线人数
func (c *Client) GetOnlineCount() error {
	return c.sendTyped(protocol.MsgGetOnlineCount, nil)
}

// GetStats 获取个人统计
func (c *Client) GetStats() error {
	return c.sendTyped(protocol.MsgGetStats, nil)
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(limit int) error {
	return c.sendTyped(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: limit})
}

func (c *Client) logf(format string, args ...any) {
	log.Printf("[transport] "+format, args...)
}
