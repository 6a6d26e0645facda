package config_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/janus/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad_EmptyPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	assert.PanicsWithValue(t, "config path is empty", func() {
		config.MustLoad()
	})
}

func TestMustLoad_FileNotExist(t *testing.T) {
	t.Setenv("CONFIG_PATH", "./invalid/path")
	assert.PanicsWithValue(t, "config file does not exist: ./invalid/path", func() {
		config.MustLoad()
	})
}

func TestMustLoad_ReadError(t *testing.T) {
	tmpFile := filet.TmpFile(t, "", "::::bad_yaml")
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", tmpFile.Name())

	viper.SetConfigFile(tmpFile.Name())
	err := viper.ReadInConfig()
	require.Error(t, err)

	assert.PanicsWithValue(t, fmt.Sprintf("config error: %v", err), func() {
		config.MustLoad()
	})
}

func TestMustLoad_Success(t *testing.T) {
	configContent := `
---
env: "local"
telegram:
  token: test-token
  admin_chat_id: 42
server:
  port: 9090
attendance:
  timezone: "Europe/Moscow"
  duplicate_window: 3m
  autoclose_cutoff: "18:00"
postgres:
  host: localhost
  user: janus
  password: secret
  db_name: janus
redis_addr: "localhost:6379"
`
	tmpFile := filet.TmpFile(t, "", configContent)
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", tmpFile.Name())

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminChatID)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "5432", cfg.Database.Port, "default port applies")
	assert.Equal(t, 3*time.Minute, cfg.Attendance.DuplicateWindow)
	assert.Equal(t, "18:00", cfg.Attendance.AutoCloseCutoff)
	assert.Equal(t, 1, cfg.Attendance.SweepHour, "default sweep hour applies")
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}
