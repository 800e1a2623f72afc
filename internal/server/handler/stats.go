package handler

import (
	"context"
	"fmt"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/server/storage"
	"github.com/palemoky/kang357/internal/types"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// handleGetStats 获取个人统计
func (h *Handler) handleGetStats(ctx context.Context, client types.ClientInterface, _ *protocol.Message) error {
	empty := protocol.StatsResultPayload{
		PlayerID:   client.GetID(),
		PlayerName: client.GetName(),
	}
	if h.leaderboard == nil {
		client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, empty))
		return nil
	}

	playerStats, err := h.leaderboard.GetPlayerStats(ctx, client.GetID())
	if err != nil {
		return fmt.Errorf("获取统计失败: %w", err)
	}
	if playerStats == nil {
		client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, empty))
		return nil
	}

	rank, _ := h.leaderboard.GetPlayerRank(ctx, client.GetID())

	client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, protocol.StatsResultPayload{
		PlayerID:      playerStats.PlayerID,
		PlayerName:    playerStats.PlayerName,
		TotalGames:    playerStats.TotalGames,
		Wins:          playerStats.Wins,
		Losses:        playerStats.Losses,
		WinRate:       storage.WinRate(playerStats),
		SpecialWins:   playerStats.SpecialWins,
		ShowdownWins:  playerStats.ShowdownWins,
		Score:         playerStats.Score,
		Rank:          int(rank),
		CurrentStreak: playerStats.CurrentStreak,
		MaxWinStreak:  playerStats.MaxWinStreak,
	}))
	return nil
}

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(ctx context.Context, client types.ClientInterface, msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		payload = &protocol.GetLeaderboardPayload{}
	}

	// 限制请求数量
	if payload.Limit <= 0 || payload.Limit > maxLeaderboardLimit {
		payload.Limit = defaultLeaderboardLimit
	}

	protocolEntries := []protocol.LeaderboardEntry{}
	if h.leaderboard != nil {
		entries, err := h.leaderboard.GetLeaderboard(ctx, payload.Limit)
		if err != nil {
			return fmt.Errorf("获取排行榜失败: %w", err)
		}
		for _, entry := range entries {
			protocolEntries = append(protocolEntries, protocol.LeaderboardEntry{
				Rank:       entry.Rank,
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Score:      entry.Score,
				Wins:       entry.Wins,
				WinRate:    entry.WinRate,
			})
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: protocolEntries,
	}))
	return nil
}

// handleGetRoomList 获取房间列表
func (h *Handler) handleGetRoomList(_ context.Context, client types.ClientInterface, _ *protocol.Message) error {
	rooms := h.roomManager.GetRoomList()
	if rooms == nil {
		rooms = []protocol.RoomListItem{}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: rooms,
	}))
	return nil
}

// handleGetOnlineCount 获取在线人数
func (h *Handler) handleGetOnlineCount(_ context.Context, client types.ClientInterface, _ *protocol.Message) error {
	client.SendMessage(codec.MustNewMessage(protocol.MsgOnlineCount, protocol.OnlineCountPayload{
		Count: h.server.GetOnlineCount(),
	}))
	return nil
}
