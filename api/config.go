// Package api provides the HTTP server for the component marketplace and its
// AI endpoints.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// PublicURL is the externally visible base URL, used to build links to
	// uploaded assets.
	PublicURL string
}
