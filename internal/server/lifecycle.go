package server

import (
	"context"
	"log"
	"runtime"
	"time"
)

// statsInterval 监控日志间隔
const statsInterval = 30 * time.Second

// monitorStats 定期输出服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			log.Printf("📊 [监控] 在线: %d | 房间: %d | 对局: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
				s.GetOnlineCount(),
				s.roomManager.RoomCount(),
				s.roomManager.GetActiveGamesCount(),
				runtime.NumGoroutine(),
				len(s.semaphore),
				s.maxConnections,
				float64(m.Alloc)/1024/1024)
		}
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.notifyMaintenance()

	log.Println("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束（最多 timeout），然后关闭
func (s *Server) GracefulShutdown(ctx context.Context, timeout time.Duration) {
	s.EnterMaintenanceMode()
	s.waitForGames(ctx, timeout, s.config.Game.ShutdownCheckIntervalDuration())
	s.Shutdown(ctx)
}

// waitForGames 轮询直到没有进行中的对局、超时或 ctx 取消
func (s *Server) waitForGames(ctx context.Context, timeout, interval time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		active := s.roomManager.GetActiveGamesCount()
		if active == 0 {
			log.Println("✅ 所有对局已结束")
			return
		}
		log.Printf("⏳ 等待 %d 个对局结束...", active)

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			log.Printf("⚠️ 超时，仍有 %d 个对局进行中，强制关闭", s.roomManager.GetActiveGamesCount())
			return
		case <-ticker.C:
		}
	}
}

// Shutdown 关闭 HTTP 服务、所有房间和连接，最后关闭 Redis
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP 服务关闭失败: %v", err)
		}
	}

	s.roomManager.CloseAll()

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	s.rateLimiter.Stop()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	log.Println("服务器已关闭")
}
