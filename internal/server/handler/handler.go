// Package handler 把客户端消息路由到房间注册表和会话操作。
package handler

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/palemoky/kang357/internal/apperrors"
	"github.com/palemoky/kang357/internal/game/room"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/server/storage"
	"github.com/palemoky/kang357/internal/types"
)

// Leaderboard 排行榜查询，nil 表示未启用存储
type Leaderboard interface {
	GetPlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error)
	GetPlayerRank(ctx context.Context, playerID string) (int64, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error)
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerStatus
	RoomManager *room.Manager
	ChatLimiter types.ChatLimiter
	Leaderboard Leaderboard
	Tracer      trace.Tracer // 为空时不记录链路
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerStatus
	roomManager *room.Manager
	chatLimiter types.ChatLimiter
	leaderboard Leaderboard
	tracer      trace.Tracer
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名，返回的错误只回给发起者
type handlerFunc func(ctx context.Context, client types.ClientInterface, msg *protocol.Message) error

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		chatLimiter: deps.ChatLimiter,
		leaderboard: deps.Leaderboard,
		tracer:      tracer,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom: h.handleCreateRoom,
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgLeaveRoom:  h.handleLeaveRoom,
		protocol.MsgStart:      h.handleStart,

		// 游戏操作
		protocol.MsgDraw:     h.handleDraw,
		protocol.MsgDiscard:  h.handleDiscard,
		protocol.MsgShowdown: h.handleShowdown,
		protocol.MsgKang:     h.handleShowdown,

		// 信息查询
		protocol.MsgGetStats:       h.handleGetStats,
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
		protocol.MsgGetRoomList:    h.handleGetRoomList,
		protocol.MsgGetOnlineCount: h.handleGetOnlineCount,
		protocol.MsgChat:           h.handleChat,
	}
}

// Handle 处理一条消息，每条消息一个 span
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	handler, ok := h.handlers[msg.Type]
	if !ok {
		log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, span := h.tracer.Start(context.Background(), "kang357/"+string(msg.Type),
		trace.WithAttributes(
			attribute.String("player.id", client.GetID()),
			attribute.String("room.code", client.GetRoom()),
		))
	defer span.End()

	if err := handler(ctx, client, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		client.SendMessage(errorMessage(err))
	}
}

// errorMessage 把错误转换为发给客户端的错误消息
func errorMessage(err error) *protocol.Message {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		if gameErr.Message != "" {
			return codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message)
		}
		return codec.NewErrorMessage(gameErr.Code)
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return codec.NewErrorMessageWithText(reqErr.code, reqErr.text)
	}
	return codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error())
}

// requestError 传输层自身的拒绝（格式错误、限流、维护中），不属于游戏状态
type requestError struct {
	code int
	text string
}

func (e *requestError) Error() string {
	return e.text
}

func newRequestError(code int) *requestError {
	return &requestError{code: code, text: protocol.ErrorMessages[code]}
}

func newRequestErrorWithText(code int, text string) *requestError {
	return &requestError{code: code, text: text}
}
