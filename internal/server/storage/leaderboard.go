package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey = "player:stats:"
	leaderboardKey = "leaderboard:score"
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	// 总计
	TotalGames int `json:"total_games"` // 总场次
	Wins       int `json:"wins"`        // 胜场
	Losses     int `json:"losses"`      // 败场

	// 胜利方式
	SpecialWins  int `json:"special_wins"`  // 开局特殊牌型直接获胜
	ShowdownWins int `json:"showdown_wins"` // 摊牌获胜

	// 积分
	Score int `json:"score"`

	// 连胜/连败
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"` // 最大连胜

	// 时间
	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// 积分规则：基础分乘以牌型倍数，摊牌和弃局按 1 倍计
const (
	WinBase  = 10
	LoseBase = -5

	// 连胜加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// 结束原因，与协议一致
const (
	ReasonSpecial  = "special"
	ReasonShowdown = "showdown"
)

// GameResult 一名玩家在一局中的结果
type GameResult struct {
	PlayerID   string
	PlayerName string
	Won        bool
	Reason     string
	Multiplier int
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// GetPlayerStats 获取玩家统计，没有记录时返回 nil, nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.PlayerID, data, 0).Err()
}

func (lm *LeaderboardManager) getOrCreateStats(ctx context.Context, playerID, playerName string) (*PlayerStats, error) {
	stats, err := lm.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &PlayerStats{
			PlayerID:   playerID,
			PlayerName: playerName,
			CreatedAt:  time.Now().Unix(),
		}
	}
	return stats, nil
}

// updateWinLossStats 更新胜负统计和连胜/连败
func updateWinLossStats(stats *PlayerStats, result GameResult) {
	if !result.Won {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
		return
	}

	stats.Wins++
	stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
	switch result.Reason {
	case ReasonSpecial:
		stats.SpecialWins++
	case ReasonShowdown:
		stats.ShowdownWins++
	}
}

// calculateStreakBonus 计算连胜加成
func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// ScoreChange 计算一局结果带来的积分变化（不含连胜加成）
func ScoreChange(result GameResult) int {
	multiplier := max(1, result.Multiplier)
	if result.Won {
		return WinBase * multiplier
	}
	return LoseBase * multiplier
}

// RecordGameResult 记录游戏结果
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, result GameResult) error {
	stats, err := lm.getOrCreateStats(ctx, result.PlayerID, result.PlayerName)
	if err != nil {
		return err
	}

	stats.PlayerName = result.PlayerName
	stats.TotalGames++
	stats.LastPlayedAt = time.Now().Unix()
	updateWinLossStats(stats, result)

	change := ScoreChange(result)
	if result.Won {
		change += calculateStreakBonus(stats.CurrentStreak)
	}
	stats.Score = max(0, stats.Score+change)

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.redis.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(stats.Score),
		Member: stats.PlayerID,
	}).Err()
}

// GetLeaderboard 获取积分榜前 limit 名（从高到低）
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	results, err := lm.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}

		entries = append(entries, &LeaderboardEntry{
			Rank:       i + 1,
			PlayerID:   playerID,
			PlayerName: stats.PlayerName,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			WinRate:    WinRate(stats),
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}

// WinRate 胜率（百分比）
func WinRate(stats *PlayerStats) float64 {
	if stats == nil || stats.TotalGames == 0 {
		return 0
	}
	return float64(stats.Wins) / float64(stats.TotalGames) * 100
}
