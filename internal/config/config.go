package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Relay     RelayConfig     `yaml:"relay"`
	Matching  MatchingConfig  `yaml:"matching"`
	Presence  PresenceConfig  `yaml:"presence"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RedisConfig holds the presence store connection settings.
type RedisConfig struct {
	Addr         string        `yaml:"addr"          env:"REDIS_ADDR"          env-default:"localhost:6379"`
	Password     string        `yaml:"password"      env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db"            env:"REDIS_DB"            env-default:"0"`
	KeyPrefix    string        `yaml:"key_prefix"    env:"REDIS_KEY_PREFIX"    env-default:"hearme:"`
	DialTimeout  time.Duration `yaml:"dial_timeout"  env:"REDIS_DIAL_TIMEOUT"  env-default:"2s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"REDIS_READ_TIMEOUT"  env-default:"500ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"500ms"`
}

// KafkaConfig holds event channel settings.
type KafkaConfig struct {
	BrokersRaw         string        `yaml:"brokers"             env:"KAFKA_BROKERS"             env-default:"localhost:9092"`
	EventsTopic        string        `yaml:"events_topic"        env:"KAFKA_EVENTS_TOPIC"        env-default:"matching.events"`
	NotificationsTopic string        `yaml:"notifications_topic" env:"KAFKA_NOTIFICATIONS_TOPIC" env-default:"matching.notifications"`
	ConsumerGroup      string        `yaml:"consumer_group"      env:"KAFKA_CONSUMER_GROUP"      env-default:"matching-engine"`
	WriteTimeout       time.Duration `yaml:"write_timeout"       env:"KAFKA_WRITE_TIMEOUT"       env-default:"2s"`
	BatchTimeout       time.Duration `yaml:"batch_timeout"       env:"KAFKA_BATCH_TIMEOUT"       env-default:"10ms"`

	// Brokers is parsed from BrokersRaw during validation.
	Brokers []string `yaml:"-" env:"-"`
}

// RelayConfig holds circuit breaker and backup queue parameters.
type RelayConfig struct {
	SendTimeout          time.Duration `yaml:"send_timeout"           env:"RELAY_SEND_TIMEOUT"           env-default:"3s"`
	BackupQueueSize      int           `yaml:"backup_queue_size"      env:"RELAY_BACKUP_QUEUE_SIZE"      env-default:"10000"`
	DropPolicy           string        `yaml:"drop_policy"            env:"RELAY_DROP_POLICY"            env-default:"oldest"`
	DrainInterval        time.Duration `yaml:"drain_interval"         env:"RELAY_DRAIN_INTERVAL"         env-default:"5s"`
	DrainBatch           int           `yaml:"drain_batch"            env:"RELAY_DRAIN_BATCH"            env-default:"100"`
	FailureRateThreshold float64       `yaml:"failure_rate_threshold" env:"RELAY_FAILURE_RATE_THRESHOLD" env-default:"0.5"`
	MinRequests          int           `yaml:"min_requests"           env:"RELAY_MIN_REQUESTS"           env-default:"10"`
	Window               time.Duration `yaml:"window"                 env:"RELAY_WINDOW"                 env-default:"60s"`
	OpenTimeout          time.Duration `yaml:"open_timeout"           env:"RELAY_OPEN_TIMEOUT"           env-default:"30s"`
	HalfOpenMaxRequests  int           `yaml:"half_open_max_requests" env:"RELAY_HALF_OPEN_MAX_REQUESTS" env-default:"3"`
}

// MatchingConfig holds per-profile allowances.
type MatchingConfig struct {
	MaxActiveMatches       int `yaml:"max_active_matches"        env:"MATCHING_MAX_ACTIVE_MATCHES"        env-default:"3"`
	MaxRejectionsPerDay    int `yaml:"max_rejections_per_day"    env:"MATCHING_MAX_REJECTIONS_PER_DAY"    env-default:"20"`
	MaxCancellationsPerDay int `yaml:"max_cancellations_per_day" env:"MATCHING_MAX_CANCELLATIONS_PER_DAY" env-default:"10"`
}

// PresenceConfig holds presence cache TTLs.
type PresenceConfig struct {
	AvailableTTL      time.Duration `yaml:"available_ttl"      env:"PRESENCE_AVAILABLE_TTL"      env-default:"10m"`
	ActiveTTL         time.Duration `yaml:"active_ttl"         env:"PRESENCE_ACTIVE_TTL"         env-default:"24h"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval" env:"PRESENCE_RECONCILE_INTERVAL" env-default:"5m"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"hearme"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-profile request limits.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"             env:"RATE_LIMIT_ENABLED"             env-default:"true"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"RATE_LIMIT_REQUESTS_PER_SECOND" env-default:"5"`
	Burst             int           `yaml:"burst"               env:"RATE_LIMIT_BURST"               env-default:"10"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL"    env-default:"5m"`
}

// ParseList splits a comma-separated list, trimming blanks.
func ParseList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
