// Package server 提供 WebSocket 服务端：连接管理、安全限制、生命周期。
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/kang357/internal/config"
	"github.com/palemoky/kang357/internal/game/room"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/server/handler"
	"github.com/palemoky/kang357/internal/server/storage"
	"github.com/palemoky/kang357/internal/telemetry"
)

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // 未配置 Redis 时为 nil
	redisStore  *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	roomManager *room.Manager
	codec       codec.Codec
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	chatLimiter    *ChatRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// NewServer 创建服务器实例。配置了 Redis 时会先检查连接并清理上次遗留的房间快照
func NewServer(cfg *config.Config) (*Server, error) {
	c, err := codec.New(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		codec:   c,
		clients: make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker: NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(
			cfg.Security.MessageLimit.MaxPerSecond,
			cfg.Security.MessageLimit.MaxGamePerSecond,
		),
		chatLimiter: NewChatRateLimiter(
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	// 存储是可选的，接口变量保持为 nil 而不是带类型的空指针
	var (
		store       room.Store
		recorder    room.Recorder
		leaderboard handler.Leaderboard
	)
	if cfg.Redis.Enabled() {
		if err := s.connectRedis(cfg.Redis); err != nil {
			s.rateLimiter.Stop()
			return nil, err
		}
		store, recorder, leaderboard = s.redisStore, s.leaderboard, s.leaderboard
	} else {
		log.Println("⚠️ 未配置 Redis，房间快照和排行榜已关闭")
	}

	s.roomManager = room.NewManager(store, recorder, room.Options{
		PlayerCount: cfg.Game.PlayerCount,
		MinPlayers:  cfg.Game.MinPlayers,
		RoomTimeout: cfg.Game.RoomTimeoutDuration(),
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		ChatLimiter: s.chatLimiter,
		Leaderboard: leaderboard,
		Tracer:      telemetry.Tracer(),
	})

	log.Printf("🔒 安全配置: 连接限制=%d/s, 消息限制=%d/s, 聊天限制=%d/s, 最大连接数=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond, cfg.Security.ChatLimit.MaxPerSecond, cfg.Server.MaxConnections)

	return s, nil
}

// connectRedis 连接 Redis 并清理遗留的房间快照
func (s *Server) connectRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis 连接失败: %w", err)
	}

	s.redis = rdb
	s.redisStore = storage.NewRedisStore(rdb)
	s.leaderboard = storage.NewLeaderboardManager(rdb)

	// 对局不跨重启恢复，上次的快照已无意义
	if n, err := s.redisStore.ClearRooms(ctx); err != nil {
		log.Printf("⚠️ 清理遗留房间快照失败: %v", err)
	} else if n > 0 {
		log.Printf("🧹 已清理 %d 个遗留房间快照", n)
	}
	return nil
}

// Routes 返回服务器的 HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start 启动服务器，阻塞直到 ctx 取消或监听失败
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Server.Addr()

	s.roomManager.StartCleanup(ctx)
	go s.monitorStats(ctx)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("🚀 服务器启动在 ws://%s/ws (编码: %s, CPU核心数: %d)", addr, s.codec.Name(), runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RoomManager 返回房间管理器
func (s *Server) RoomManager() *room.Manager {
	return s.roomManager
}
