package handler

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/ui/model"
)

func handleMsgConnected(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
	if err != nil {
		return nil
	}
	m.SetPlayerInfo(payload.PlayerID, payload.PlayerName)
	return nil
}

func handleMsgPong(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.PongPayload](msg)
	if err != nil || payload.ClientTimestamp == 0 {
		return nil
	}
	m.SetLatency(max(time.Now().UnixMilli()-payload.ClientTimestamp, 0))
	return nil
}

func handleMsgError(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return nil
	}

	switch payload.Code {
	case protocol.ErrCodeServerMaintenance:
		m.SetMaintenanceMode(true)
		m.SetNotification(model.NotifyMaintenance, "⚠️ 服务器维护中，暂停创建和加入房间", false)
		return nil
	case protocol.ErrCodeRateLimit:
		return Notify(m, model.NotifyRateLimit, "⏳ "+payload.Message)
	default:
		return Notify(m, model.NotifyError, fmt.Sprintf("⚠️ %s", payload.Message))
	}
}

func handleMsgOnlineCount(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.OnlineCountPayload](msg)
	if err != nil {
		return nil
	}
	m.Lobby().SetOnlineCount(payload.Count)
	m.SetNotification(model.NotifyOnlineCount, fmt.Sprintf("🟢 在线玩家: %d", payload.Count), false)
	return nil
}
