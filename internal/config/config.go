package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Argon2    Argon2Config
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
	Static    StaticConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type JWTConfig struct {
	SecretKey        string
	ExpiryHours      int
	AdminExpiryHours int
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type RateLimitConfig struct {
	AuthMax int
	Window  time.Duration
}

// BootstrapConfig seeds the first admin account when none exists.
type BootstrapConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type StaticConfig struct {
	ItemImagesDir string
}

var bindings = map[string]string{
	"app.env":                    "APP_ENV",
	"log.level":                  "LOG_LEVEL",
	"server.port":                "PORT",
	"server.read_timeout":        "SERVER_READ_TIMEOUT",
	"server.write_timeout":       "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":        "SERVER_IDLE_TIMEOUT",
	"server.allowed_origins":     "SERVER_ALLOWED_ORIGINS",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"database.auto_migrate":      "DATABASE_AUTO_MIGRATE",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"kafka.brokers":              "KAFKA_BROKERS",
	"kafka.topic":                "KAFKA_TOPIC",
	"jwt.secret_key":             "JWT_SECRET_KEY",
	"jwt.expiry_hours":           "JWT_EXPIRY_HOURS",
	"jwt.admin_expiry_hours":     "JWT_ADMIN_EXPIRY_HOURS",
	"argon2.time":                "ARGON2_TIME",
	"argon2.memory":              "ARGON2_MEMORY",
	"argon2.threads":             "ARGON2_THREADS",
	"argon2.key_length":          "ARGON2_KEY_LENGTH",
	"argon2.salt_length":         "ARGON2_SALT_LENGTH",
	"ratelimit.auth_max":         "RATELIMIT_AUTH_MAX",
	"ratelimit.window":           "RATELIMIT_WINDOW",
	"bootstrap.admin_name":       "BOOTSTRAP_ADMIN_NAME",
	"bootstrap.admin_email":      "BOOTSTRAP_ADMIN_EMAIL",
	"bootstrap.admin_password":   "BOOTSTRAP_ADMIN_PASSWORD",
	"static.item_images_dir":     "STATIC_ITEM_IMAGES_DIR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", "https://*,http://*")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "tuckshop")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "tuckshop.transactions")

	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("jwt.admin_expiry_hours", 8)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("ratelimit.auth_max", 10)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("bootstrap.admin_name", "Administrator")

	v.SetDefault("static.item_images_dir", "./static/item-images")
}

// Load reads an optional .env file, then environment variables, on top of defaults.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range bindings {
		v.BindEnv(key, env)
	}

	return FromViper(v)
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Env:      v.GetString("app.env"),
		LogLevel: v.GetString("log.level"),
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		JWT: JWTConfig{
			SecretKey:        v.GetString("jwt.secret_key"),
			ExpiryHours:      v.GetInt("jwt.expiry_hours"),
			AdminExpiryHours: v.GetInt("jwt.admin_expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		RateLimit: RateLimitConfig{
			AuthMax: v.GetInt("ratelimit.auth_max"),
			Window:  v.GetDuration("ratelimit.window"),
		},
		Bootstrap: BootstrapConfig{
			AdminName:     v.GetString("bootstrap.admin_name"),
			AdminEmail:    v.GetString("bootstrap.admin_email"),
			AdminPassword: v.GetString("bootstrap.admin_password"),
		},
		Static: StaticConfig{
			ItemImagesDir: v.GetString("static.item_images_dir"),
		},
	}
}

// Defaults returns the configuration with no file or environment applied.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	return FromViper(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
