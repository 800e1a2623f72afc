// Package room 管理房间注册表：房间号到 Room 的映射，以及每个房间的串行化执行与消息投递。
package room

import (
	"context"
	"sync"
	"time"

	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/server/storage"
	"github.com/palemoky/kang357/internal/types"
)

const (
	roomCodeLength  = 6               // 房间号长度
	cleanupInterval = 1 * time.Minute // 清理间隔
)

// Store 房间快照存储，nil 表示不持久化
type Store interface {
	SaveRoom(ctx context.Context, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, code string) error
}

// Recorder 对局结果记录，nil 表示不记录
type Recorder interface {
	RecordGameResult(ctx context.Context, result storage.GameResult) error
}

// Options 房间参数
type Options struct {
	PlayerCount int           // 满员自动开局人数
	MinPlayers  int           // 房主提前开局最少人数
	RoomTimeout time.Duration // 等待中的房间超时时间，0 表示不清理
}

// Room 游戏房间：一个 Session 加上在房间内的连接。
// mu 串行化房间内的所有操作，投递在持锁期间完成，保证消息顺序与处理顺序一致。
type Room struct {
	Code      string
	CreatedAt time.Time

	session   *session.Session
	clients   map[string]types.ClientInterface
	closed    bool
	manager   *Manager
	snapshots *snapshotWriter // 未配置存储时为 nil

	mu sync.Mutex
}

// Manager 房间管理器
type Manager struct {
	store    Store
	recorder Recorder
	opts     Options
	rooms    map[string]*Room
	mu       sync.RWMutex
}

// NewManager 创建房间管理器，store 和 recorder 均可为 nil
func NewManager(store Store, recorder Recorder, opts Options) *Manager {
	if opts.PlayerCount <= 0 {
		opts.PlayerCount = session.DefaultCapacity
	}
	if opts.MinPlayers <= 0 {
		opts.MinPlayers = session.DefaultMinPlayers
	}
	return &Manager{
		store:    store,
		recorder: recorder,
		opts:     opts,
		rooms:    make(map[string]*Room),
	}
}

func (rm *Manager) newRoom(code string) *Room {
	r := &Room{
		Code:      code,
		CreatedAt: time.Now(),
		session: session.New(session.Options{
			Capacity:   rm.opts.PlayerCount,
			MinPlayers: rm.opts.MinPlayers,
		}),
		clients: make(map[string]types.ClientInterface),
		manager: rm,
	}
	if rm.store != nil {
		r.snapshots = newSnapshotWriter(rm.store, code)
	}
	return r
}

// --- 投递，调用方必须持有 r.mu ---

func (r *Room) sendTo(playerID string, msg *protocol.Message) {
	if client, ok := r.clients[playerID]; ok {
		client.SendMessage(msg)
	}
}

func (r *Room) broadcast(msg *protocol.Message) {
	for _, client := range r.clients {
		client.SendMessage(msg)
	}
}

func (r *Room) broadcastExcept(excludeID string, msg *protocol.Message) {
	for id, client := range r.clients {
		if id != excludeID {
			client.SendMessage(msg)
		}
	}
}

// Broadcast 向房间内所有玩家广播
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(msg)
}

// playerInfos 按加入顺序返回玩家信息
func (r *Room) playerInfos() []protocol.PlayerInfo {
	players := r.session.Players()
	host := r.session.HostID()
	infos := make([]protocol.PlayerInfo, len(players))
	for i, p := range players {
		infos[i] = protocol.PlayerInfo{ID: p.ID, Name: p.Name, Host: p.ID == host}
	}
	return infos
}

// Players 返回房间内玩家信息
func (r *Room) Players() []protocol.PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerInfos()
}

// Phase 返回当前阶段
func (r *Room) Phase() session.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Phase()
}

// PlayerCount 返回玩家数量
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.PlayerCount()
}

// HasPlayer 玩家是否在房间内
func (r *Room) HasPlayer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.HasPlayer(id)
}

// PlayerName 返回玩家在房间内使用的名字
func (r *Room) PlayerName(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.session.Players() {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// roomCreated / roomJoined 回给发起者的确认消息
func (r *Room) roomCreated() *protocol.Message {
	return codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomID:  r.Code,
		Players: r.playerInfos(),
	})
}

func (r *Room) roomJoined() *protocol.Message {
	return codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomID:  r.Code,
		Players: r.playerInfos(),
	})
}
