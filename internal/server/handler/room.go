package handler

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/types"
)

// maxNameLength 玩家昵称最大长度（字符）
const maxNameLength = 16

// playerName 取请求中的昵称，为空时使用连接分配的昵称
func playerName(client types.Player, requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		return client.GetName()
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}

// checkMaintenance 维护模式下拒绝新的房间
func (h *Handler) checkMaintenance(text string) error {
	if h.server != nil && h.server.IsMaintenanceMode() {
		return newRequestErrorWithText(protocol.ErrCodeServerMaintenance, text)
	}
	return nil
}

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(_ context.Context, client types.ClientInterface, msg *protocol.Message) error {
	if err := h.checkMaintenance("服务器维护中，暂停创建房间"); err != nil {
		return err
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		return newRequestError(protocol.ErrCodeInvalidMsg)
	}

	_, err = h.roomManager.CreateRoom(client, playerName(client, payload.PlayerName))
	return err
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(_ context.Context, client types.ClientInterface, msg *protocol.Message) error {
	if err := h.checkMaintenance("服务器维护中，暂停加入房间"); err != nil {
		return err
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		return newRequestError(protocol.ErrCodeInvalidMsg)
	}

	code := strings.ToLower(strings.TrimSpace(payload.RoomID))
	if code == "" {
		return newRequestError(protocol.ErrCodeInvalidMsg)
	}

	_, err = h.roomManager.JoinRoom(client, code, playerName(client, payload.PlayerName))
	return err
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(_ context.Context, client types.ClientInterface, _ *protocol.Message) error {
	if _, err := h.roomManager.GetClientRoom(client); err != nil {
		return err
	}
	h.roomManager.LeaveRoom(client)
	return nil
}

// handleStart 房主提前开局
func (h *Handler) handleStart(_ context.Context, client types.ClientInterface, _ *protocol.Message) error {
	room, err := h.roomManager.GetClientRoom(client)
	if err != nil {
		return err
	}
	return room.Start(client)
}
