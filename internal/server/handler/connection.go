package handler

import (
	"context"
	"time"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(_ context.Context, client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return newRequestError(protocol.ErrCodeInvalidMsg)
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
	return nil
}
