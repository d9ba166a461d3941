package config

// Config represents the persistent lenshub configuration stored as
// config.toml in the .lenshub/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Spark       SparkConfig       `toml:"spark"`
	DashScope   DashScopeConfig   `toml:"dashscope"`
	EventStream EventStreamConfig `toml:"event_stream"`
}

// StorageConfig holds record-store settings.
type StorageConfig struct {
	Driver     string `toml:"driver,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`

	// PublicURL is the externally visible base URL, used to build links to
	// uploaded assets.
	PublicURL string `toml:"public_url,omitempty"`
}

// SparkConfig holds the chat vendor's credentials and transport selection.
type SparkConfig struct {
	AppID     string `toml:"app_id,omitempty"`
	APIKey    string `toml:"api_key,omitempty"`
	APISecret string `toml:"api_secret,omitempty"`

	// Transport is "websocket" or "sse".
	Transport string `toml:"transport,omitempty"`

	WSURL   string `toml:"ws_url,omitempty"`
	ChatURL string `toml:"chat_url,omitempty"`
	Domain  string `toml:"domain,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// DashScopeConfig holds the translation and image vendor's settings.
type DashScopeConfig struct {
	APIKey       string `toml:"api_key,omitempty"`
	TranslateURL string `toml:"translate_url,omitempty"`
	ImageURL     string `toml:"image_url,omitempty"`
}

// EventStreamConfig holds component event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// Broker lists are only editable through the file itself.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.public_url": {
		get: func(c *Config) string { return c.API.PublicURL },
		set: func(c *Config, v string) error { c.API.PublicURL = v; return nil },
	},
	"spark.app_id": {
		get: func(c *Config) string { return c.Spark.AppID },
		set: func(c *Config, v string) error { c.Spark.AppID = v; return nil },
	},
	"spark.api_key": {
		get: func(c *Config) string { return c.Spark.APIKey },
		set: func(c *Config, v string) error { c.Spark.APIKey = v; return nil },
	},
	"spark.api_secret": {
		get: func(c *Config) string { return c.Spark.APISecret },
		set: func(c *Config, v string) error { c.Spark.APISecret = v; return nil },
	},
	"spark.transport": {
		get: func(c *Config) string { return c.Spark.Transport },
		set: func(c *Config, v string) error { c.Spark.Transport = v; return nil },
	},
	"spark.ws_url": {
		get: func(c *Config) string { return c.Spark.WSURL },
		set: func(c *Config, v string) error { c.Spark.WSURL = v; return nil },
	},
	"spark.chat_url": {
		get: func(c *Config) string { return c.Spark.ChatURL },
		set: func(c *Config, v string) error { c.Spark.ChatURL = v; return nil },
	},
	"spark.domain": {
		get: func(c *Config) string { return c.Spark.Domain },
		set: func(c *Config, v string) error { c.Spark.Domain = v; return nil },
	},
	"spark.model": {
		get: func(c *Config) string { return c.Spark.Model },
		set: func(c *Config, v string) error { c.Spark.Model = v; return nil },
	},
	"dashscope.api_key": {
		get: func(c *Config) string { return c.DashScope.APIKey },
		set: func(c *Config, v string) error { c.DashScope.APIKey = v; return nil },
	},
	"dashscope.translate_url": {
		get: func(c *Config) string { return c.DashScope.TranslateURL },
		set: func(c *Config, v string) error { c.DashScope.TranslateURL = v; return nil },
	},
	"dashscope.image_url": {
		get: func(c *Config) string { return c.DashScope.ImageURL },
		set: func(c *Config, v string) error { c.DashScope.ImageURL = v; return nil },
	},
	"event_stream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"event_stream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}
