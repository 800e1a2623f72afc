// Package handler processes server messages.
package handler

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/ui/model"
)

// notificationTTL 临时通知的显示时长
const notificationTTL = 3 * time.Second

// messageHandler 消息处理函数类型
type messageHandler func(m model.Model, msg *protocol.Message) tea.Cmd

// messageHandlers 消息处理器映射表
var messageHandlers = map[protocol.MessageType]messageHandler{
	// Connection
	protocol.MsgConnected:   handleMsgConnected,
	protocol.MsgPong:        handleMsgPong,
	protocol.MsgError:       handleMsgError,
	protocol.MsgOnlineCount: handleMsgOnlineCount,

	// Room
	protocol.MsgRoomCreated:    handleMsgRoomJoined,
	protocol.MsgRoomJoined:     handleMsgRoomJoined,
	protocol.MsgPlayerJoined:   handleMsgPlayerJoined,
	protocol.MsgPlayerLeft:     handleMsgPlayerLeft,
	protocol.MsgRoomListResult: handleMsgRoomListResult,

	// Game
	protocol.MsgHandDealt:         handleMsgHandDealt,
	protocol.MsgYourTurn:          handleMsgYourTurn,
	protocol.MsgTurnChanged:       handleMsgTurnChanged,
	protocol.MsgCardDrawn:         handleMsgCardDrawn,
	protocol.MsgPlayerDrew:        handleMsgPlayerDrew,
	protocol.MsgCardsDiscarded:    handleMsgCardsDiscarded,
	protocol.MsgReactionAvailable: handleMsgReactionAvailable,
	protocol.MsgGameEnded:         handleMsgGameEnded,

	// Stats
	protocol.MsgStatsResult:       handleMsgStatsResult,
	protocol.MsgLeaderboardResult: handleMsgLeaderboardResult,

	// Chat
	protocol.MsgChat: handleMsgChat,
}

// HandleServerMessage dispatches server messages to appropriate handlers.
func HandleServerMessage(m model.Model, msg *protocol.Message) tea.Cmd {
	if handler, ok := messageHandlers[msg.Type]; ok {
		return handler(m, msg)
	}
	return nil
}

// Notify 显示临时通知，到期后自动清除
func Notify(m model.Model, notifyType model.NotificationType, text string) tea.Cmd {
	m.SetNotification(notifyType, text, true)
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return model.ClearSystemNotificationMsg{}
	})
}
