//go:build !production

package room

import (
	"time"

	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/types"
)

// AddRoomForTest 用给定会话和客户端直接注册一个房间
func (rm *Manager) AddRoomForTest(code string, s *session.Session, clients ...types.ClientInterface) *Room {
	room := rm.newRoom(code)
	room.session = s
	for _, c := range clients {
		room.clients[c.GetID()] = c
		c.SetRoom(code)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[code] = room
	return room
}

// SetCreatedAtForTest 修改房间创建时间
func (r *Room) SetCreatedAtForTest(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreatedAt = t
}
