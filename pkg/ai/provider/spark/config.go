package spark

import "github.com/lenshub/lenshub/pkg/ai"

const (
	defaultWSURL   = "wss://spark-api.xf-yun.com/chat/max-32k"
	defaultChatURL = "https://spark-api-open.xf-yun.com/v1/chat/completions"
	defaultDomain  = "max-32k"
	defaultModel   = "generalv3.5"

	defaultTemperature = 0.8
	defaultMaxTokens   = 2048
)

// Config holds everything needed to talk to the Spark vendor. Credentials
// are injected explicitly; nothing is read from ambient global state.
type Config struct {
	Credentials

	// WSURL is the signed WebSocket chat endpoint.
	WSURL string

	// ChatURL is the SSE-shaped HTTP chat completions endpoint.
	ChatURL string

	// Domain selects the model on the WebSocket protocol.
	Domain string

	// Model selects the model on the HTTP protocol.
	Model string

	Temperature float64
	MaxTokens   int
}

// withDefaults fills unset fields with the vendor defaults.
func (c Config) withDefaults() Config {
	if c.WSURL == "" {
		c.WSURL = defaultWSURL
	}
	if c.ChatURL == "" {
		c.ChatURL = defaultChatURL
	}
	if c.Domain == "" {
		c.Domain = defaultDomain
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	return c
}

func (c Credentials) validate() error {
	if c.AppID == "" {
		return &ai.ConfigError{Field: "spark.app_id"}
	}
	if c.APIKey == "" {
		return &ai.ConfigError{Field: "spark.api_key"}
	}
	if c.APISecret == "" {
		return &ai.ConfigError{Field: "spark.api_secret"}
	}
	return nil
}
