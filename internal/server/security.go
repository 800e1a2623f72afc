package server

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/kang357/internal/protocol"
)

// window 固定时间窗口计数器
type window struct {
	span  time.Duration
	start time.Time
	count int
}

// roll 窗口过期时清零
func (w *window) roll(now time.Time) {
	if now.Sub(w.start) >= w.span {
		w.start = now
		w.count = 0
	}
}

// hit 计一次并返回窗口内的次数
func (w *window) hit(now time.Time) int {
	w.roll(now)
	w.count++
	return w.count
}

// --- 建连限流（按 IP） ---

const rateIdleExpiry = 10 * time.Minute

// RateLimiter 按 IP 限制建立连接的频率，超限后封禁一段时间
type RateLimiter struct {
	mu      sync.Mutex
	byIP    map[string]*connRate
	perSec  int
	perMin  int
	banFor  time.Duration
	sweepAt time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

type connRate struct {
	second      window
	minute      window
	bannedUntil time.Time
}

// NewRateLimiter 创建建连限流器，并启动过期记录清理
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		byIP:    make(map[string]*connRate),
		perSec:  maxPerSecond,
		perMin:  maxPerMinute,
		banFor:  banDuration,
		sweepAt: 5 * time.Minute,
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow 记录一次建连，超限时封禁 banDuration
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rate, ok := rl.byIP[ip]
	if !ok {
		rate = &connRate{second: window{span: time.Second}, minute: window{span: time.Minute}}
		rl.byIP[ip] = rate
	}
	if now.Before(rate.bannedUntil) {
		return false
	}

	perSec, perMin := rate.second.hit(now), rate.minute.hit(now)
	if perSec > rl.perSec || perMin > rl.perMin {
		rate.bannedUntil = now.Add(rl.banFor)
		log.Printf("⚠️ IP %s 建连过于频繁，封禁 %v", ip, rl.banFor)
		return false
	}
	return true
}

// IsBanned IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rate, ok := rl.byIP[ip]
	return ok && time.Now().Before(rate.bannedUntil)
}

// Stop 停止清理协程
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweepAt)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

// sweep 删除长时间没有建连且不在封禁期的记录
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, rate := range rl.byIP {
		if now.Sub(rate.minute.start) > rateIdleExpiry && now.After(rate.bannedUntil) {
			delete(rl.byIP, ip)
		}
	}
}

// --- 来源校验 ---

// OriginChecker WebSocket 握手的 Origin 校验，配置为 "*" 时全部放行
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 终端客户端不带 Origin 头，直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return oc.allowAll || origin == "" || oc.allowed[strings.ToLower(origin)]
}

// GetClientIP 优先取反向代理头中的客户端地址
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息限流 ---

// intentClass 消息按限流方式分类
type intentClass int

const (
	intentGeneral intentClass = iota // 大厅、房间、聊天、查询
	intentGame                       // 开局、摸牌、出牌、摊牌，另有单独额度
	intentFree                       // 心跳，不计入
)

func classify(t protocol.MessageType) intentClass {
	switch t {
	case protocol.MsgPing:
		return intentFree
	case protocol.MsgStart, protocol.MsgDraw, protocol.MsgDiscard, protocol.MsgShowdown, protocol.MsgKang:
		return intentGame
	default:
		return intentGeneral
	}
}

// MessageRateLimiter 已连接客户端的消息限流。
// 所有非心跳消息共用 maxPerSecond；对局操作另受 maxGamePerSecond 限制，
// 一个回合最多摸一次、出一次，正常操作远低于该额度。
type MessageRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*messageRate

	maxPerSecond     int
	maxGamePerSecond int
}

type messageRate struct {
	all      window
	game     window
	warnings int
}

func NewMessageRateLimiter(maxPerSecond, maxGamePerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		clients:          make(map[string]*messageRate),
		maxPerSecond:     maxPerSecond,
		maxGamePerSecond: maxGamePerSecond,
	}
}

// AllowMessage 检查消息是否放行。warning 表示已用掉超过一半的总额度，或本条被拒绝
func (ml *MessageRateLimiter) AllowMessage(clientID string, msgType protocol.MessageType) (allowed bool, warning bool) {
	class := classify(msgType)
	if class == intentFree {
		return true, false
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	rate, ok := ml.clients[clientID]
	if !ok {
		rate = &messageRate{all: window{span: time.Second}, game: window{span: time.Second}}
		ml.clients[clientID] = rate
	}

	n := rate.all.hit(now)
	over := n > ml.maxPerSecond
	if class == intentGame && rate.game.hit(now) > ml.maxGamePerSecond {
		over = true
	}
	if over {
		rate.warnings++
		return false, true
	}
	return true, n > ml.maxPerSecond/2
}

// GetWarningCount 被拒绝的累计次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if rate, ok := ml.clients[clientID]; ok {
		return rate.warnings
	}
	return 0
}

func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.clients, clientID)
}

// --- 聊天限流 ---

// ChatRateLimiter 房间聊天限流：秒级超限进入冷却，分钟级超限只拒绝本条
type ChatRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*chatRate

	maxPerSecond int
	maxPerMinute int
	cooldown     time.Duration
}

type chatRate struct {
	second        window
	minute        window
	cooldownUntil time.Time
}

func NewChatRateLimiter(maxPerSecond, maxPerMinute int, cooldown time.Duration) *ChatRateLimiter {
	return &ChatRateLimiter{
		clients:      make(map[string]*chatRate),
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		cooldown:     cooldown,
	}
}

// AllowChat 拒绝时返回给发送者的提示
func (cl *ChatRateLimiter) AllowChat(clientID string) (allowed bool, reason string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	rate, ok := cl.clients[clientID]
	if !ok {
		rate = &chatRate{second: window{span: time.Second}, minute: window{span: time.Minute}}
		cl.clients[clientID] = rate
	}

	if now.Before(rate.cooldownUntil) {
		return false, fmt.Sprintf("发言太快，%v 后再试", rate.cooldownUntil.Sub(now).Round(time.Second))
	}

	rate.second.roll(now)
	rate.minute.roll(now)
	if rate.minute.count >= cl.maxPerMinute {
		return false, "本分钟发言次数已用完"
	}
	if rate.second.count >= cl.maxPerSecond {
		rate.cooldownUntil = now.Add(cl.cooldown)
		return false, fmt.Sprintf("发言太快，冷静 %v", cl.cooldown)
	}

	rate.second.count++
	rate.minute.count++
	return true, ""
}

func (cl *ChatRateLimiter) RemoveClient(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.clients, clientID)
}
