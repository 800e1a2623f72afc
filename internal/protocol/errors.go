package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeAlreadyInRoom     = 2005
	ErrCodeNotHost           = 2006
	ErrCodeNotEnoughPlayers  = 2007
	ErrCodeGameNotStart      = 3001
	ErrCodeNotYourTurn       = 3002
	ErrCodeInvalidCards      = 3003
	ErrCodeWrongPhase        = 3004
	ErrCodeCardNotHeld       = 3005
	ErrCodeMixedValues       = 3006
	ErrCodeGameEnded         = 3007
	ErrCodeDeckEmpty         = 4001
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeGameStarted:       "游戏已开始",
	ErrCodeAlreadyInRoom:     "您已在房间中",
	ErrCodeNotHost:           "只有房主可以开始游戏",
	ErrCodeNotEnoughPlayers:  "人数不足",
	ErrCodeGameNotStart:      "游戏尚未开始",
	ErrCodeNotYourTurn:       "还没轮到您",
	ErrCodeInvalidCards:      "无效的出牌",
	ErrCodeWrongPhase:        "当前阶段不能这样操作",
	ErrCodeCardNotHeld:       "您没有这张牌",
	ErrCodeMixedValues:       "一次只能出同点数的牌",
	ErrCodeGameEnded:         "游戏已结束",
	ErrCodeDeckEmpty:         "牌堆已空",
	ErrCodeServerMaintenance: "服务器维护中",
}
