package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mkstudico/kinaflix-TV/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	viewersLimit = configVar[int]{
		envKey:       "SERVER_VIEWERS_LIMIT",
		flagKey:      "viewers-limit",
		defaultValue: 80,
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 25,
	}
	storageDir = configVar[string]{
		envKey:       "SERVER_STORAGE_DIR",
		flagKey:      "storage-dir",
		defaultValue: "/var/lib/kinaflix/videos",
	}
	retentionMaxAge = configVar[time.Duration]{
		envKey:       "SERVER_RETENTION_MAX_AGE",
		flagKey:      "retention-max-age",
		defaultValue: 14 * 24 * time.Hour,
	}
	retentionInterval = configVar[time.Duration]{
		envKey:       "SERVER_RETENTION_INTERVAL",
		flagKey:      "retention-interval",
		defaultValue: time.Hour,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Server secret granting admin role on join")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(viewersLimit.flagKey, viewersLimit.defaultValue, "Maximum number of viewers in the room")
	pflag.Int(playlistLimit.flagKey, playlistLimit.defaultValue, "Maximum number of videos in the playlist")
	pflag.String(storageDir.flagKey, storageDir.defaultValue, "Directory for uploaded video files")
	pflag.Duration(retentionMaxAge.flagKey, retentionMaxAge.defaultValue, "Age after which unreferenced stored files are removed")
	pflag.Duration(retentionInterval.flagKey, retentionInterval.defaultValue, "Interval between retention sweeps")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(secret.flagKey, secret.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(viewersLimit.flagKey, viewersLimit.envKey)
	viper.BindEnv(playlistLimit.flagKey, playlistLimit.envKey)
	viper.BindEnv(storageDir.flagKey, storageDir.envKey)
	viper.BindEnv(retentionMaxAge.flagKey, retentionMaxAge.envKey)
	viper.BindEnv(retentionInterval.flagKey, retentionInterval.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(secret.flagKey, secret.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(viewersLimit.flagKey, viewersLimit.defaultValue)
	viper.SetDefault(playlistLimit.flagKey, playlistLimit.defaultValue)
	viper.SetDefault(storageDir.flagKey, storageDir.defaultValue)
	viper.SetDefault(retentionMaxAge.flagKey, retentionMaxAge.defaultValue)
	viper.SetDefault(retentionInterval.flagKey, retentionInterval.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Secret:            viper.GetString(secret.flagKey),
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		ViewersLimit:      viper.GetInt(viewersLimit.flagKey),
		PlaylistLimit:     viper.GetInt(playlistLimit.flagKey),
		StorageDir:        viper.GetString(storageDir.flagKey),
		RetentionMaxAge:   viper.GetDuration(retentionMaxAge.flagKey),
		RetentionInterval: viper.GetDuration(retentionInterval.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
