package handler

import (
	"context"

	"github.com/palemoky/kang357/internal/apperrors"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/protocol/convert"
	"github.com/palemoky/kang357/internal/types"
)

// handleDraw 处理摸牌
func (h *Handler) handleDraw(_ context.Context, client types.ClientInterface, _ *protocol.Message) error {
	room, err := h.roomManager.GetClientRoom(client)
	if err != nil {
		return err
	}
	return room.Draw(client)
}

// handleDiscard 处理出牌
func (h *Handler) handleDiscard(_ context.Context, client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.DiscardPayload](msg)
	if err != nil {
		return newRequestError(protocol.ErrCodeInvalidMsg)
	}

	cards, err := convert.InfosToCards(payload.Cards)
	if err != nil {
		return apperrors.ErrInvalidCards.WithMessage(err.Error())
	}

	room, err := h.roomManager.GetClientRoom(client)
	if err != nil {
		return err
	}
	return room.Discard(client, cards)
}

// handleShowdown 处理摊牌（杠）
func (h *Handler) handleShowdown(_ context.Context, client types.ClientInterface, _ *protocol.Message) error {
	room, err := h.roomManager.GetClientRoom(client)
	if err != nil {
		return err
	}
	return room.Showdown(client)
}
