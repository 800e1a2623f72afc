package server

import (
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
)

// GetOnlineCount 在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// onlineClients 复制一份连接列表，发送时不持有 clientsMu
func (s *Server) onlineClients() []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

// pushOnlineCount 连接数变化时推送给大厅里的玩家，房间内的玩家不打扰
func (s *Server) pushOnlineCount() {
	clients := s.onlineClients()
	msg := codec.MustNewMessage(protocol.MsgOnlineCount, protocol.OnlineCountPayload{Count: len(clients)})
	for _, c := range clients {
		if c.GetRoom() == "" {
			c.SendMessage(msg)
		}
	}
}

// notifyMaintenance 通知所有玩家进入维护：
// 大厅玩家不能再建房，对局中的玩家可以打完这一局，等待中的房间不再接受新玩家
func (s *Server) notifyMaintenance() {
	lobby := codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 服务器维护中，暂停创建房间")
	playing := codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 本局结束后服务器将进入维护")
	waiting := codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 服务器维护中，房间不再接受新玩家")

	for _, c := range s.onlineClients() {
		code := c.GetRoom()
		if code == "" {
			c.SendMessage(lobby)
			continue
		}
		r := s.roomManager.GetRoom(code)
		if r != nil && r.Phase().Playing() {
			c.SendMessage(playing)
		} else {
			c.SendMessage(waiting)
		}
	}
}
