package apperrors

import (
	"github.com/palemoky/kang357/internal/protocol"
)

// Kind 错误分类
type Kind int

const (
	InvalidState      Kind = iota // 阶段或回合不对
	NotFound                      // 房间或玩家不存在
	IllegalMove                   // 出牌不合法、房间已满
	ResourceExhausted             // 牌堆已空
)

var kindNames = map[Kind]string{
	InvalidState:      "invalid_state",
	NotFound:          "not_found",
	IllegalMove:       "illegal_move",
	ResourceExhausted: "resource_exhausted",
}

func (k Kind) String() string {
	return kindNames[k]
}

// GameError 游戏错误（房间和会话共享），只回给发起者
type GameError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 按错误码比较，使 errors.Is 对 WithMessage 派生的错误同样成立
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage 复制错误并替换提示文本
func (e *GameError) WithMessage(msg string) *GameError {
	return &GameError{Kind: e.Kind, Code: e.Code, Message: msg}
}

func newError(kind Kind, code int) *GameError {
	return &GameError{Kind: kind, Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound     = newError(NotFound, protocol.ErrCodeRoomNotFound)
	ErrNotInRoom        = newError(NotFound, protocol.ErrCodeNotInRoom)
	ErrRoomFull         = newError(IllegalMove, protocol.ErrCodeRoomFull)
	ErrAlreadyInRoom    = newError(IllegalMove, protocol.ErrCodeAlreadyInRoom)
	ErrGameStarted      = newError(InvalidState, protocol.ErrCodeGameStarted)
	ErrGameNotStart     = newError(InvalidState, protocol.ErrCodeGameNotStart)
	ErrGameEnded        = newError(InvalidState, protocol.ErrCodeGameEnded)
	ErrNotHost          = newError(InvalidState, protocol.ErrCodeNotHost)
	ErrNotEnoughPlayers = newError(InvalidState, protocol.ErrCodeNotEnoughPlayers)
	ErrNotYourTurn      = newError(InvalidState, protocol.ErrCodeNotYourTurn)
	ErrWrongPhase       = newError(InvalidState, protocol.ErrCodeWrongPhase)
	ErrInvalidCards     = newError(IllegalMove, protocol.ErrCodeInvalidCards)
	ErrCardNotHeld      = newError(IllegalMove, protocol.ErrCodeCardNotHeld)
	ErrMixedValues      = newError(IllegalMove, protocol.ErrCodeMixedValues)
	ErrDeckEmpty        = newError(ResourceExhausted, protocol.ErrCodeDeckEmpty)
)
