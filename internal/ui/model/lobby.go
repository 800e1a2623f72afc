package model

import (
	"github.com/palemoky/kang357/internal/protocol"
)

// LobbyModel 大厅状态：菜单光标、房间列表光标和几个信息页的数据
type LobbyModel struct {
	menuCursor int
	roomCursor int

	onlineCount int
	rooms       []protocol.RoomListItem
	leaderboard []protocol.LeaderboardEntry
	myStats     *protocol.StatsResultPayload
}

func NewLobbyModel() *LobbyModel {
	return &LobbyModel{}
}

func (m *LobbyModel) OnlineCount() int                        { return m.onlineCount }
func (m *LobbyModel) SetOnlineCount(count int)                { m.onlineCount = count }
func (m *LobbyModel) AvailableRooms() []protocol.RoomListItem { return m.rooms }

// SetAvailableRooms 刷新列表后光标尽量停在原来的房间上
func (m *LobbyModel) SetAvailableRooms(rooms []protocol.RoomListItem) {
	var current string
	if room, ok := m.SelectedRoom(); ok {
		current = room.RoomID
	}
	m.rooms = rooms
	m.roomCursor = 0
	for i, room := range rooms {
		if current != "" && room.RoomID == current {
			m.roomCursor = i
			return
		}
	}
}

// SelectedRoom 光标所在的房间，列表为空时 ok 为 false
func (m *LobbyModel) SelectedRoom() (room protocol.RoomListItem, ok bool) {
	if m.roomCursor < 0 || m.roomCursor >= len(m.rooms) {
		return protocol.RoomListItem{}, false
	}
	return m.rooms[m.roomCursor], true
}

func (m *LobbyModel) SelectedRoomIdx() int                     { return m.roomCursor }
func (m *LobbyModel) SetSelectedRoomIdx(idx int)               { m.roomCursor = idx }
func (m *LobbyModel) SelectedIndex() int                       { return m.menuCursor }
func (m *LobbyModel) SetSelectedIndex(idx int)                 { m.menuCursor = idx }
func (m *LobbyModel) Leaderboard() []protocol.LeaderboardEntry { return m.leaderboard }
func (m *LobbyModel) SetLeaderboard(entries []protocol.LeaderboardEntry) {
	m.leaderboard = entries
}
func (m *LobbyModel) MyStats() *protocol.StatsResultPayload         { return m.myStats }
func (m *LobbyModel) SetMyStats(stats *protocol.StatsResultPayload) { m.myStats = stats }

// MoveCursor 按当前页面移动对应的光标，delta 为 -1 或 1，首尾循环
func (m *LobbyModel) MoveCursor(phase GamePhase, delta int) {
	switch phase {
	case PhaseLobby:
		m.menuCursor = wrap(m.menuCursor+delta, LobbyMenuCount)
	case PhaseRoomList:
		m.roomCursor = wrap(m.roomCursor+delta, len(m.rooms))
	}
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}
