// Package types 放 server、handler 与 room 之间共享的接口，避免包之间互相引用
package types

import (
	"github.com/palemoky/kang357/internal/protocol"
)

// ServerStatus handler 只需要从服务器读到的状态
type ServerStatus interface {
	// IsMaintenanceMode 维护期间拒绝建房和入座
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// Player 牌桌上的一个座位
type Player interface {
	GetID() string
	GetName() string
}

// Sender 房间广播只需要能发消息
type Sender interface {
	SendMessage(msg *protocol.Message)
}

// ClientInterface 一条玩家连接。
// 同一连接同一时间最多在一个房间里，GetRoom 为空表示在大厅
type ClientInterface interface {
	Player
	Sender
	GetRoom() string
	SetRoom(code string)
	Close()
}

// ChatLimiter 房间聊天限流，拒绝时 reason 原样回给发送者
type ChatLimiter interface {
	AllowChat(clientID string) (allowed bool, reason string)
	RemoveClient(clientID string)
}
