package room

import (
	"cmp"
	"log"
	"slices"

	"github.com/palemoky/kang357/internal/apperrors"
	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/types"
)

// CreateRoom 创建房间，创建者作为第一位玩家（房主）加入
func (rm *Manager) CreateRoom(client types.ClientInterface, name string) (*Room, error) {
	if client.GetRoom() != "" {
		return nil, apperrors.ErrAlreadyInRoom
	}

	rm.mu.Lock()
	code := rm.generateRoomCode()
	room := rm.newRoom(code)
	rm.rooms[code] = room
	// 新房间尚未对外可见前加锁，之后的查找都会等待创建完成
	room.mu.Lock()
	rm.mu.Unlock()
	defer room.mu.Unlock()

	events, err := room.session.Join(client.GetID(), name)
	if err != nil {
		room.closed = true
		rm.removeRoom(room)
		return nil, err
	}
	room.clients[client.GetID()] = client
	client.SetRoom(code)

	log.Printf("🏠 房间 %s 已创建，玩家 %s", code, name)

	client.SendMessage(room.roomCreated())
	room.deliver(events)
	room.persist()

	return room, nil
}

// JoinRoom 加入房间，满员时自动开局
func (rm *Manager) JoinRoom(client types.ClientInterface, code, name string) (*Room, error) {
	if client.GetRoom() != "" {
		return nil, apperrors.ErrAlreadyInRoom
	}

	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return nil, apperrors.ErrRoomNotFound
	}

	events, err := room.session.Join(client.GetID(), name)
	if err != nil {
		return nil, err
	}
	room.clients[client.GetID()] = client
	client.SetRoom(code)

	log.Printf("👤 玩家 %s 加入房间 %s", name, code)

	client.SendMessage(room.roomJoined())
	room.deliver(events)
	room.persist()

	return room, nil
}

// LeaveRoom 离开房间，最后一人离开时销毁房间
func (rm *Manager) LeaveRoom(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	client.SetRoom("")

	room := rm.GetRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	events, err := room.session.Leave(client.GetID())
	if err != nil {
		return
	}
	delete(room.clients, client.GetID())

	log.Printf("👋 玩家 %s 离开房间 %s", client.GetName(), code)

	room.deliver(events)

	if room.session.PlayerCount() == 0 {
		room.closed = true
		rm.removeRoom(room)
		log.Printf("🏠 房间 %s 已解散", code)
		return
	}
	room.persist()
}

// removeRoom 从注册表和 Redis 中删除房间，调用方必须持有 room.mu
func (rm *Manager) removeRoom(room *Room) {
	rm.mu.Lock()
	delete(rm.rooms, room.Code)
	rm.mu.Unlock()
	if room.snapshots != nil {
		room.snapshots.delete()
	}
}

// GetRoom 获取房间
func (rm *Manager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// GetClientRoom 获取客户端所在的房间
func (rm *Manager) GetClientRoom(client types.ClientInterface) (*Room, error) {
	code := client.GetRoom()
	if code == "" {
		return nil, apperrors.ErrNotInRoom
	}
	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// snapshot 返回当前所有房间，避免持有注册表锁时再去锁房间
func (rm *Manager) snapshot() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetRoomList 获取可加入的房间列表（等待中且未满），按房间号排序
func (rm *Manager) GetRoomList() []protocol.RoomListItem {
	var rooms []protocol.RoomListItem
	for _, room := range rm.snapshot() {
		room.mu.Lock()
		s := room.session
		if !room.closed && s.Phase() == session.PhaseWaiting && s.PlayerCount() < s.Capacity() {
			rooms = append(rooms, protocol.RoomListItem{
				RoomID:      room.Code,
				PlayerCount: s.PlayerCount(),
				MaxPlayers:  s.Capacity(),
			})
		}
		room.mu.Unlock()
	}
	slices.SortFunc(rooms, func(a, b protocol.RoomListItem) int {
		return cmp.Compare(a.RoomID, b.RoomID)
	})
	return rooms
}

// GetActiveGamesCount 获取进行中的游戏数量，已结束等待解散的房间不计入
func (rm *Manager) GetActiveGamesCount() int {
	count := 0
	for _, room := range rm.snapshot() {
		room.mu.Lock()
		if room.session.Phase().Playing() {
			count++
		}
		room.mu.Unlock()
	}
	return count
}

// RoomCount 房间总数
func (rm *Manager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
