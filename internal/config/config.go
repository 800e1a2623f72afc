package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 KANG_SERVER_PORT
const EnvPrefix = "KANG_"

// DefaultPath 默认配置文件路径
const DefaultPath = "configs/config.yaml"

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1357
	defaultMaxConnections = 10000
	defaultCodec          = "json"
	defaultRedisAddr      = "localhost:6379"

	defaultPlayerCount           = 4
	defaultMinPlayers            = 2
	defaultRoomTimeout           = 10 // 分钟
	defaultShutdownTimeout       = 30 // 分钟
	defaultShutdownCheckInterval = 5  // 秒

	defaultRateMaxPerSecond    = 10
	defaultRateMaxPerMinute    = 60
	defaultBanDuration         = 60 // 秒
	defaultMessageMaxPerSecond = 20
	defaultGameMaxPerSecond    = 4
	defaultChatMaxPerSecond    = 1
	defaultChatMaxPerMinute    = 20
	defaultChatCooldown        = 5 // 秒

	defaultServiceName = "kang357"

	minPlayerCount = 2
	maxPlayerCount = 4
)

// Config 服务端配置
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Game      GameConfig      `yaml:"game" envPrefix:"GAME_"`
	Security  SecurityConfig  `yaml:"security" envPrefix:"SECURITY_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host" env:"HOST"`
	Port           int    `yaml:"port" env:"PORT"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS"`
	Codec          string `yaml:"codec" env:"CODEC"` // json 或 protobuf
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置，Addr 为空时不启用存储
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// Enabled 是否配置了 Redis
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// GameConfig 游戏配置
type GameConfig struct {
	PlayerCount           int `yaml:"player_count" env:"PLAYER_COUNT"`                       // 房间人数，满员自动开局
	MinPlayers            int `yaml:"min_players" env:"MIN_PLAYERS"`                         // 房主提前开局的最少人数
	RoomTimeout           int `yaml:"room_timeout" env:"ROOM_TIMEOUT"`                       // 房间等待超时（分钟）
	ShutdownTimeout       int `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`               // 维护模式下等待对局结束的最长时间（分钟）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval" env:"SHUTDOWN_CHECK_INTERVAL"` // 检查对局是否结束的间隔（秒）
}

// RoomTimeoutDuration 返回房间等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// ShutdownTimeoutDuration 返回优雅关闭的最长等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回优雅关闭的检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      RateLimitConfig    `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit" envPrefix:"MESSAGE_LIMIT_"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit" envPrefix:"CHAT_LIMIT_"`
}

// RateLimitConfig 连接频率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"BAN_DURATION"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 单连接消息频率限制。
// MaxGamePerSecond 单独限制对局操作（开局、摸牌、出牌、摊牌），心跳不计入
type MessageLimitConfig struct {
	MaxPerSecond     int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxGamePerSecond int `yaml:"max_game_per_second" env:"MAX_GAME_PER_SECOND"`
}

// ChatLimitConfig 聊天频率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"MAX_PER_MINUTE"`
	Cooldown     int `yaml:"cooldown" env:"COOLDOWN"` // 秒
}

// CooldownDuration 返回触发限制后的冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// TelemetryConfig OpenTelemetry 链路追踪配置
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"` // OTLP/HTTP 地址，例如 localhost:4318
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// Load 加载配置文件，依次应用默认值和环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回默认配置。configs/config.yaml 存在时以其为准
func Default() *Config {
	if cfg, err := Load(DefaultPath); err == nil {
		return cfg
	}

	cfg := &Config{
		Redis: RedisConfig{Addr: defaultRedisAddr},
	}
	cfg.applyDefaults()
	_ = cfg.applyEnv()
	return cfg
}

// applyDefaults 为零值字段填充默认值。Redis 地址不填充，留空即关闭存储
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Server.Codec == "" {
		c.Server.Codec = defaultCodec
	}

	if c.Game.PlayerCount == 0 {
		c.Game.PlayerCount = defaultPlayerCount
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = defaultMinPlayers
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = defaultRoomTimeout
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = defaultShutdownCheckInterval
	}

	sec := &c.Security
	if len(sec.AllowedOrigins) == 0 {
		sec.AllowedOrigins = []string{"*"}
	}
	if sec.RateLimit.MaxPerSecond == 0 {
		sec.RateLimit.MaxPerSecond = defaultRateMaxPerSecond
	}
	if sec.RateLimit.MaxPerMinute == 0 {
		sec.RateLimit.MaxPerMinute = defaultRateMaxPerMinute
	}
	if sec.RateLimit.BanDuration == 0 {
		sec.RateLimit.BanDuration = defaultBanDuration
	}
	if sec.MessageLimit.MaxPerSecond == 0 {
		sec.MessageLimit.MaxPerSecond = defaultMessageMaxPerSecond
	}
	if sec.MessageLimit.MaxGamePerSecond == 0 {
		sec.MessageLimit.MaxGamePerSecond = defaultGameMaxPerSecond
	}
	if sec.ChatLimit.MaxPerSecond == 0 {
		sec.ChatLimit.MaxPerSecond = defaultChatMaxPerSecond
	}
	if sec.ChatLimit.MaxPerMinute == 0 {
		sec.ChatLimit.MaxPerMinute = defaultChatMaxPerMinute
	}
	if sec.ChatLimit.Cooldown == 0 {
		sec.ChatLimit.Cooldown = defaultChatCooldown
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
}

// applyEnv 用 KANG_ 前缀的环境变量覆盖配置
func (c *Config) applyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	g := c.Game
	if g.PlayerCount < minPlayerCount || g.PlayerCount > maxPlayerCount {
		return fmt.Errorf("game.player_count 必须在 %d..%d 之间，当前为 %d", minPlayerCount, maxPlayerCount, g.PlayerCount)
	}
	if g.MinPlayers < minPlayerCount || g.MinPlayers > g.PlayerCount {
		return fmt.Errorf("game.min_players 必须在 %d..%d 之间，当前为 %d", minPlayerCount, g.PlayerCount, g.MinPlayers)
	}
	switch c.Server.Codec {
	case "json", "protobuf":
	default:
		return fmt.Errorf("server.codec 不支持: %q", c.Server.Codec)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 无效: %d", c.Server.Port)
	}
	return nil
}
