package config

const (
	defaultStorageDriver = "sqlite"

	defaultAPIListen = ":8080"
	defaultPublicURL = "http://localhost:8080"

	defaultSparkTransport = "websocket"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "lenshub.components"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
// Vendor credentials have no defaults; they come from the file or env.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		API: APIConfig{
			Listen:    defaultAPIListen,
			PublicURL: defaultPublicURL,
		},
		Spark: SparkConfig{
			Transport: defaultSparkTransport,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
