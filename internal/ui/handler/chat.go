package handler

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/ui/model"
)

func handleMsgChat(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		return nil
	}

	sender := payload.SenderName
	if sender == "" {
		sender = "未知"
	}

	timeStr := time.Unix(payload.Time, 0).Format("15:04")
	chatLine := fmt.Sprintf("[%s] %s: %s", timeStr, sender, payload.Message)
	if payload.IsSystem {
		chatLine = fmt.Sprintf("[%s] 系统: %s", timeStr, payload.Message)
	}

	m.Game().AddChatMessage(chatLine)
	return nil
}
