package handler

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/ui/model"
)

func handleMsgStatsResult(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.StatsResultPayload](msg)
	if err != nil {
		return nil
	}
	m.Lobby().SetMyStats(payload)
	m.SetPhase(model.PhaseStats)
	return nil
}

func handleMsgLeaderboardResult(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.LeaderboardResultPayload](msg)
	if err != nil {
		return nil
	}
	m.Lobby().SetLeaderboard(payload.Entries)
	m.SetPhase(model.PhaseLeaderboard)
	return nil
}
