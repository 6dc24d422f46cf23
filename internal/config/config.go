package config

import (
	"time"

	"github.com/spf13/viper"
	pkgconfig "github.com/weiawesome/camlink/pkg/config"
	"github.com/weiawesome/camlink/pkg/pubsub"
	"github.com/weiawesome/camlink/pkg/storage"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Room      RoomConfig
	Reaper    ReaperConfig
	PubSub    pubsub.Config
	Events    EventsConfig
	Archive   ArchiveConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

type RoomConfig struct {
	// ActiveThreshold decides isActive in check-room responses.
	ActiveThreshold time.Duration `mapstructure:"active_threshold"`
	MaxCodeAttempts int           `mapstructure:"max_code_attempts"`
}

type ReaperConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type EventsConfig struct {
	QueueSize      int           `mapstructure:"queue_size"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type ArchiveConfig struct {
	Enabled         bool           `mapstructure:"enabled"`
	QueueSize       int            `mapstructure:"queue_size"`
	ThumbnailWidth  int            `mapstructure:"thumbnail_width"`
	ThumbnailHeight int            `mapstructure:"thumbnail_height"`
	JPEGQuality     int            `mapstructure:"jpeg_quality"`
	URLExpiry       time.Duration  `mapstructure:"url_expiry"`
	PurgeOnClose    bool           `mapstructure:"purge_on_close"`
	Storage         storage.Config `mapstructure:"storage"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads config.yaml from configPath (if present), applies defaults
// and environment overrides.
func Load(configPath string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, "config")
	if err != nil {
		return nil, err
	}

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ReadTimeout = pkgconfig.Duration(v, "server.read_timeout", 15*time.Second)
	cfg.Server.WriteTimeout = pkgconfig.Duration(v, "server.write_timeout", 15*time.Second)
	cfg.Server.IdleTimeout = pkgconfig.Duration(v, "server.idle_timeout", 60*time.Second)
	cfg.Server.ShutdownTimeout = pkgconfig.Duration(v, "server.shutdown_timeout", 30*time.Second)
	cfg.WebSocket.PingInterval = pkgconfig.Duration(v, "websocket.ping_interval", 25*time.Second)
	cfg.WebSocket.PongWait = pkgconfig.Duration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = pkgconfig.Duration(v, "websocket.write_wait", 10*time.Second)
	cfg.Room.ActiveThreshold = pkgconfig.Duration(v, "room.active_threshold", time.Hour)
	cfg.Reaper.Interval = pkgconfig.Duration(v, "reaper.interval", 5*time.Minute)
	cfg.Reaper.IdleTimeout = pkgconfig.Duration(v, "reaper.idle_timeout", time.Hour)
	cfg.Events.PublishTimeout = pkgconfig.Duration(v, "events.publish_timeout", 3*time.Second)
	cfg.Archive.URLExpiry = pkgconfig.Duration(v, "archive.url_expiry", 15*time.Minute)
	bus := pubsub.DefaultConfig()
	cfg.PubSub.Redis.ReadTimeout = pkgconfig.Duration(v, "pubsub.redis.read_timeout", bus.Redis.ReadTimeout)
	cfg.PubSub.Redis.WriteTimeout = pkgconfig.Duration(v, "pubsub.redis.write_timeout", bus.Redis.WriteTimeout)

	// The ping must fire before the peer's read deadline expires.
	if cfg.WebSocket.PingInterval >= cfg.WebSocket.PongWait {
		cfg.WebSocket.PingInterval = cfg.WebSocket.PongWait * 9 / 10
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("websocket.ping_interval", "25s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 8<<20)
	v.SetDefault("websocket.send_buffer", 64)
	v.SetDefault("room.active_threshold", "1h")
	v.SetDefault("room.max_code_attempts", 16)
	v.SetDefault("reaper.interval", "5m")
	v.SetDefault("reaper.idle_timeout", "1h")
	bus := pubsub.DefaultConfig()
	v.SetDefault("pubsub.driver", bus.Driver)
	v.SetDefault("pubsub.redis.address", bus.Redis.Address)
	v.SetDefault("pubsub.redis.password", "")
	v.SetDefault("pubsub.redis.db", 0)
	v.SetDefault("pubsub.redis.pool_size", bus.Redis.PoolSize)
	v.SetDefault("pubsub.kafka.brokers", bus.Kafka.Brokers)
	v.SetDefault("pubsub.kafka.group_id", bus.Kafka.GroupID)
	v.SetDefault("pubsub.kafka.partitions", bus.Kafka.Partitions)
	v.SetDefault("events.queue_size", 1024)
	v.SetDefault("events.publish_timeout", "3s")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.queue_size", 32)
	v.SetDefault("archive.thumbnail_width", 320)
	v.SetDefault("archive.thumbnail_height", 240)
	v.SetDefault("archive.jpeg_quality", 80)
	v.SetDefault("archive.url_expiry", "15m")
	v.SetDefault("archive.purge_on_close", false)
	v.SetDefault("archive.storage.backend", storage.BackendLocal)
	v.SetDefault("archive.storage.local.base_path", "./data/archive")
	v.SetDefault("archive.storage.local.url_prefix", "/archive")
	v.SetDefault("archive.storage.s3.region", "us-east-1")
	v.SetDefault("archive.storage.s3.bucket", "camlink-screenshots")
	v.SetDefault("archive.storage.s3.use_path_style", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("pubsub.kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("archive.enabled", "ARCHIVE_ENABLED")
	v.BindEnv("archive.storage.backend", "ARCHIVE_BACKEND")
	v.BindEnv("archive.storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("archive.storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("archive.storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("archive.storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("archive.storage.s3.public_url", "S3_PUBLIC_URL")
}
