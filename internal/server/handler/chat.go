package handler

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/types"
)

// maxChatLength 单条聊天消息最大长度（字符）
const maxChatLength = 200

// handleChat 处理房间聊天
func (h *Handler) handleChat(_ context.Context, client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		return newRequestError(protocol.ErrCodeInvalidMsg)
	}

	text := strings.TrimSpace(payload.Message)
	if text == "" {
		return newRequestErrorWithText(protocol.ErrCodeInvalidMsg, "消息内容不能为空")
	}
	if utf8.RuneCountInString(text) > maxChatLength {
		text = string([]rune(text)[:maxChatLength])
	}

	room, err := h.roomManager.GetClientRoom(client)
	if err != nil {
		return err
	}

	// 聊天限流检查
	if h.chatLimiter != nil {
		if allowed, reason := h.chatLimiter.AllowChat(client.GetID()); !allowed {
			return newRequestErrorWithText(protocol.ErrCodeRateLimit, reason)
		}
	}

	name := room.PlayerName(client.GetID())
	if name == "" {
		name = client.GetName()
	}

	room.Broadcast(codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		SenderID:   client.GetID(),
		SenderName: name,
		Message:    text,
		Time:       time.Now().Unix(),
	}))
	return nil
}
