package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lenshub/lenshub/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the LENSHUB_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LENSHUB_API_LISTEN, LENSHUB_SPARK_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: LENSHUB_SPARK_APP_ID, LENSHUB_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("LENSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.public_url", d.API.PublicURL)

	// Spark
	v.SetDefault("spark.app_id", d.Spark.AppID)
	v.SetDefault("spark.api_key", d.Spark.APIKey)
	v.SetDefault("spark.api_secret", d.Spark.APISecret)
	v.SetDefault("spark.transport", d.Spark.Transport)
	v.SetDefault("spark.ws_url", d.Spark.WSURL)
	v.SetDefault("spark.chat_url", d.Spark.ChatURL)
	v.SetDefault("spark.domain", d.Spark.Domain)
	v.SetDefault("spark.model", d.Spark.Model)

	// DashScope
	v.SetDefault("dashscope.api_key", d.DashScope.APIKey)
	v.SetDefault("dashscope.translate_url", d.DashScope.TranslateURL)
	v.SetDefault("dashscope.image_url", d.DashScope.ImageURL)

	// Event stream
	v.SetDefault("event_stream.provider", d.EventStream.Provider)
	v.SetDefault("event_stream.brokers", d.EventStream.Brokers)
	v.SetDefault("event_stream.topic", d.EventStream.Topic)
}

// ConfigFromViper materializes a Config from the resolved viper state.
func ConfigFromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver:     v.GetString("storage.driver"),
			SQLitePath: v.GetString("storage.sqlite_path"),
		},
		API: APIConfig{
			Listen:    v.GetString("api.listen"),
			PublicURL: v.GetString("api.public_url"),
		},
		Spark: SparkConfig{
			AppID:     v.GetString("spark.app_id"),
			APIKey:    v.GetString("spark.api_key"),
			APISecret: v.GetString("spark.api_secret"),
			Transport: v.GetString("spark.transport"),
			WSURL:     v.GetString("spark.ws_url"),
			ChatURL:   v.GetString("spark.chat_url"),
			Domain:    v.GetString("spark.domain"),
			Model:     v.GetString("spark.model"),
		},
		DashScope: DashScopeConfig{
			APIKey:       v.GetString("dashscope.api_key"),
			TranslateURL: v.GetString("dashscope.translate_url"),
			ImageURL:     v.GetString("dashscope.image_url"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("event_stream.provider"),
			Brokers:  v.GetStringSlice("event_stream.brokers"),
			Topic:    v.GetString("event_stream.topic"),
		},
	}
}
