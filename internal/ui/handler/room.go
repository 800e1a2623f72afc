package handler

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/ui/model"
)

// handleMsgRoomJoined 创建和加入房间的响应结构相同
func handleMsgRoomJoined(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
	if err != nil {
		return nil
	}

	state := m.Game().State()
	state.Reset()
	state.RoomCode = payload.RoomID
	state.SetPlayers(payload.Players)

	m.Game().ClearSelection()
	m.Game().ClearChatHistory()
	m.Input().Blur()
	m.SetPhase(model.PhaseWaiting)
	return nil
}

func handleMsgPlayerJoined(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg)
	if err != nil {
		return nil
	}
	m.Game().State().SetPlayers(payload.Players)
	m.Game().AddChatMessage(fmt.Sprintf("系统: %s 加入了房间", payload.Player.Name))
	return nil
}

func handleMsgPlayerLeft(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.PlayerLeftPayload](msg)
	if err != nil {
		return nil
	}

	state := m.Game().State()
	name := state.PlayerName(payload.PlayerID)
	state.SetPlayers(payload.Players)
	delete(state.HandCounts, payload.PlayerID)
	m.Game().AddChatMessage(fmt.Sprintf("系统: %s 离开了房间", name))
	return nil
}

func handleMsgRoomListResult(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RoomListResultPayload](msg)
	if err != nil {
		return nil
	}
	m.Lobby().SetAvailableRooms(payload.Rooms)
	m.SetPhase(model.PhaseRoomList)
	return nil
}
