package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// DiscardPayload 出牌请求
type DiscardPayload struct {
	Cards []CardInfo `json:"cards"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"` // 数量
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"serverTimestamp"` // 服务器时间戳（毫秒）
}

// OnlineCountPayload 在线人数
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomID  string       `json:"roomId"`
	Players []PlayerInfo `json:"players"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomID  string       `json:"roomId"`
	Players []PlayerInfo `json:"players"` // 房间内所有玩家
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID string       `json:"playerId"`
	Players  []PlayerInfo `json:"players"`
}

// HandDealtPayload 发牌通知，只发给手牌的主人
type HandDealtPayload struct {
	Hand         []CardInfo   `json:"hand"`
	Special      *SpecialInfo `json:"special"` // 无特殊牌型时为 null
	PlayerIndex  int          `json:"playerIndex"`
	TotalPlayers int          `json:"totalPlayers"`
	AllPlayerIDs []string     `json:"allPlayerIds"`
}

// SpecialInfo 特殊牌型
type SpecialInfo struct {
	Combination string `json:"combination"`
	Multiplier  int    `json:"multiplier"`
}

// TurnChangedPayload 回合变更
type TurnChangedPayload struct {
	PlayerID string `json:"playerId"`
	Phase    string `json:"phase"` // draw/discard
}

// CardDrawnPayload 摸到的牌
type CardDrawnPayload struct {
	Card CardInfo `json:"card"`
}

// PlayerDrewPayload 有人摸牌
type PlayerDrewPayload struct {
	PlayerID  string `json:"playerId"`
	HandCount int    `json:"handCount"`
}

// CardsDiscardedPayload 出牌通知
type CardsDiscardedPayload struct {
	PlayerID string     `json:"playerId"`
	Cards    []CardInfo `json:"cards"`
}

// ReactionAvailablePayload 可跟出的同点牌
type ReactionAvailablePayload struct {
	Card CardInfo `json:"card"`
}

// GameEndedPayload 游戏结束通知
type GameEndedPayload struct {
	WinnerID    string                `json:"winnerId"`
	Reason      string                `json:"reason"` // special/showdown/abandon
	Combination string                `json:"combination,omitempty"`
	Multiplier  int                   `json:"multiplier,omitempty"`
	Scores      map[string]int        `json:"scores,omitempty"`
	Hands       map[string][]CardInfo `json:"hands,omitempty"`
}

// 游戏结束原因
const (
	ReasonSpecial  = "special"
	ReasonShowdown = "showdown"
	ReasonAbandon  = "abandon"
)

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatsResultPayload 个人统计结果
type StatsResultPayload struct {
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	TotalGames    int     `json:"totalGames"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"winRate"`
	SpecialWins   int     `json:"specialWins"`
	ShowdownWins  int     `json:"showdownWins"`
	Score         int     `json:"score"`
	Rank          int     `json:"rank"`
	CurrentStreak int     `json:"currentStreak"`
	MaxWinStreak  int     `json:"maxWinStreak"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"winRate"`
}

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// ChatPayload 聊天消息
type ChatPayload struct {
	SenderID   string `json:"senderId,omitempty"`   // 发送者 ID (服务端填充)
	SenderName string `json:"senderName,omitempty"` // 发送者名字 (服务端填充)
	Message    string `json:"message"`              // 消息内容
	Time       int64  `json:"time,omitempty"`       // 发送时间 (服务端填充)
	IsSystem   bool   `json:"isSystem,omitempty"`   // 是否是系统消息
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Host bool   `json:"host,omitempty"`
}

// CardInfo 牌信息，如 {"suit": "♥", "value": "10"}
type CardInfo struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}
