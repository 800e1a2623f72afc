package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/palemoky/kang357/internal/config"
	"github.com/palemoky/kang357/internal/server"
	"github.com/palemoky/kang357/internal/telemetry"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("关闭链路追踪失败: %v", err)
		}
	}()

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// 优雅关闭：第一次信号等待对局结束，第二次信号立即退出
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛠️ 收到关闭信号，进入维护模式...")
		go func() {
			<-quit
			log.Println("强制关闭")
			os.Exit(1)
		}()
		srv.GracefulShutdown(ctx, cfg.Game.ShutdownTimeoutDuration())
		cancel()
	}()

	// 启动服务器
	log.Println("🎮 三五七杠服务器启动中...")
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
	<-ctx.Done()
	log.Println("👋 服务器已关闭")
}
