package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the application.
// It includes the environment type, database configuration, Telegram bot
// settings, the HTTP server port and the attendance policy knobs.
type Config struct {
	Env        string           `yaml:"env"`        // Env is the current environment: local, dev, prod.
	Database   PostgresConfig   `yaml:"postgres"`   // Database holds the postgres database configuration
	Telegram   TelegramConfig   `yaml:"telegram"`   // Telegram holds the bot token and polling settings
	Server     ServerConfig     `yaml:"server"`     // Server holds the HTTP ingress settings
	Attendance AttendanceConfig `yaml:"attendance"` // Attendance holds the classification policy knobs
	RedisAddr  string           `yaml:"redis_addr"` // RedisAddr is the redis server address.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// TelegramConfig holds the bot token, the poller timeout and the admin
// chat that receives unknown-card alerts.
type TelegramConfig struct {
	Token         string        `yaml:"token"`          // Token is an unique telegram bot token
	PollerTimeout time.Duration `yaml:"poller_timeout"` // PollerTimeout is the long-poll close timeout
	AdminChatID   int64         `yaml:"admin_chat_id"`  // AdminChatID receives unknown card alerts
}

// ServerConfig holds the HTTP scan ingress settings.
type ServerConfig struct {
	Port int `yaml:"port"` // Port is the HTTP listen port for the reader API
}

// AttendanceConfig holds the attendance policy: the deployment timezone,
// the anti-bounce window and the auto-close schedule.
type AttendanceConfig struct {
	Timezone        string        `yaml:"timezone"`         // Timezone is the IANA zone all timestamps live in
	DuplicateWindow time.Duration `yaml:"duplicate_window"` // DuplicateWindow is the anti-bounce interval
	AutoCloseCutoff string        `yaml:"autoclose_cutoff"` // AutoCloseCutoff is the synthesized departure clock time
	SweepHour       int           `yaml:"sweep_hour"`       // SweepHour is the local hour the previous day is swept
}

// MustLoad loads the configuration from a YAML file and returns a Config struct.
func MustLoad() *Config {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		panic("config error: " + err.Error())
	}

	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("telegram.timeout", 10*time.Second)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("attendance.timezone", "Europe/Moscow")
	viper.SetDefault("attendance.duplicate_window", 5*time.Minute)
	viper.SetDefault("attendance.autoclose_cutoff", "17:00")
	viper.SetDefault("attendance.sweep_hour", 1)

	return &Config{
		Env: viper.GetString("env"),
		Telegram: TelegramConfig{
			Token:         viper.GetString("telegram.token"),
			PollerTimeout: viper.GetDuration("telegram.timeout"),
			AdminChatID:   viper.GetInt64("telegram.admin_chat_id"),
		},
		Server: ServerConfig{
			Port: viper.GetInt("server.port"),
		},
		Attendance: AttendanceConfig{
			Timezone:        viper.GetString("attendance.timezone"),
			DuplicateWindow: viper.GetDuration("attendance.duplicate_window"),
			AutoCloseCutoff: viper.GetString("attendance.autoclose_cutoff"),
			SweepHour:       viper.GetInt("attendance.sweep_hour"),
		},
		Database: PostgresConfig{
			Host:     viper.GetString("postgres.host"),
			Port:     viper.GetString("postgres.port"),
			User:     viper.GetString("postgres.user"),
			Password: viper.GetString("postgres.password"),
			Name:     viper.GetString("postgres.db_name"),
		},
		RedisAddr: viper.GetString("redis_addr"),
	}
}
