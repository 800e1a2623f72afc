package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create-room" // 创建房间
	MsgJoinRoom   MessageType = "join-room"   // 加入房间
	MsgLeaveRoom  MessageType = "leave-room"  // 离开房间
	MsgStart      MessageType = "start"       // 房主开始游戏

	// 游戏操作
	MsgDraw     MessageType = "draw"     // 摸牌
	MsgDiscard  MessageType = "discard"  // 出牌（1~2 张同点）
	MsgShowdown MessageType = "showdown" // 摊牌
	MsgKang     MessageType = "kang"     // 摊牌的别名

	// 查询
	MsgGetStats       MessageType = "get-stats"        // 获取个人统计
	MsgGetLeaderboard MessageType = "get-leaderboard"  // 获取排行榜
	MsgGetRoomList    MessageType = "get-room-list"    // 获取房间列表
	MsgGetOnlineCount MessageType = "get-online-count" // 获取在线人数
	MsgChat           MessageType = "chat"             // 聊天消息
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected   MessageType = "connected"    // 连接成功
	MsgPong        MessageType = "pong"         // 心跳 pong
	MsgOnlineCount MessageType = "online-count" // 在线人数

	// 房间相关
	MsgRoomCreated  MessageType = "room-created"  // 房间创建成功
	MsgRoomJoined   MessageType = "room-joined"   // 加入房间成功
	MsgPlayerJoined MessageType = "player-joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player-left"   // 玩家离开

	// 游戏流程
	MsgHandDealt         MessageType = "hand-dealt"         // 发牌
	MsgYourTurn          MessageType = "your-turn"          // 轮到你摸牌
	MsgTurnChanged       MessageType = "turn-changed"       // 回合变更
	MsgCardDrawn         MessageType = "card-drawn"         // 你摸到的牌
	MsgPlayerDrew        MessageType = "player-drew"        // 有人摸牌（只含张数）
	MsgCardsDiscarded    MessageType = "cards-discarded"    // 有人出牌
	MsgReactionAvailable MessageType = "reaction-available" // 可以直接跟出同点牌
	MsgGameEnded         MessageType = "game-ended"         // 游戏结束

	// 查询结果
	MsgStatsResult       MessageType = "stats-result"       // 个人统计结果
	MsgLeaderboardResult MessageType = "leaderboard-result" // 排行榜结果
	MsgRoomListResult    MessageType = "room-list-result"   // 房间列表结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
