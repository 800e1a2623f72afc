package view

import (
	"strings"

	"github.com/palemoky/kang357/internal/ui/common"
)

// chatVisibleLines 聊天框显示的最近消息条数
const chatVisibleLines = 5

// RenderChatBox renders the chat box for room views.
func RenderChatBox(history []string) string {
	if len(history) == 0 {
		return ""
	}

	start := max(len(history)-chatVisibleLines, 0)
	var chatBuilder strings.Builder
	for _, line := range history[start:] {
		chatBuilder.WriteString(line + "\n")
	}
	return common.BoxStyle.Width(44).Render(strings.TrimSuffix(chatBuilder.String(), "\n"))
}
