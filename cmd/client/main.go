package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/kang357/internal/logger"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1357", "服务器地址")
	codecName := flag.String("codec", codec.JSON, "消息编码 (json/protobuf)，需与服务器一致")
	flag.Parse()

	// 终端被 TUI 占用，日志写入文件
	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)

	model, err := ui.NewOnlineModel(serverURL, *codecName)
	if err != nil {
		log.Fatalf("创建客户端失败: %v", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.LogError("客户端异常退出: %v", err)
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
