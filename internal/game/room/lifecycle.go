package room

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
)

// generateRoomCode 生成房间号：取 UUID 的前 6 个十六进制字符，冲突时重试。
// 调用方必须持有 rm.mu
func (rm *Manager) generateRoomCode() string {
	for {
		code := strings.ReplaceAll(uuid.NewString(), "-", "")[:roomCodeLength]
		if _, exists := rm.rooms[code]; !exists {
			return code
		}
	}
}

// StartCleanup 启动超时房间清理，ctx 结束时退出
func (rm *Manager) StartCleanup(ctx context.Context) {
	if rm.opts.RoomTimeout <= 0 {
		return
	}
	go rm.cleanupLoop(ctx)
}

// cleanupLoop 定期清理超时房间
func (rm *Manager) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup 关闭等待时间超过 RoomTimeout 的房间，对局中的房间不受影响
func (rm *Manager) cleanup(now time.Time) int {
	removed := 0
	for _, room := range rm.snapshot() {
		room.mu.Lock()
		if room.closed || room.session.Phase() != session.PhaseWaiting || now.Sub(room.CreatedAt) <= rm.opts.RoomTimeout {
			room.mu.Unlock()
			continue
		}

		room.broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
		for _, client := range room.clients {
			client.SetRoom("")
		}
		room.closed = true
		rm.removeRoom(room)
		room.mu.Unlock()

		removed++
		log.Printf("🏠 房间 %s 超时已清理", room.Code)
	}
	return removed
}

// CloseAll 关闭所有房间，服务器停机时调用
func (rm *Manager) CloseAll() {
	for _, room := range rm.snapshot() {
		room.mu.Lock()
		if !room.closed {
			for _, client := range room.clients {
				client.SetRoom("")
			}
			room.closed = true
			rm.removeRoom(room)
		}
		room.mu.Unlock()
	}
}
