package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai/provider/spark"
)

// Supported chat transport constants
const (
	WebSocket = "websocket"
	SSE       = "sse"
)

// SupportedTransports returns the list of all supported chat transport names.
func SupportedTransports() []string {
	return []string{WebSocket, SSE}
}

// NewChatStreamer creates the chat streamer for the configured transport.
// Returns an error if the transport is not recognized or the credentials are
// incomplete.
func NewChatStreamer(transport string, cfg spark.Config, log *zap.Logger) (ChatStreamer, error) {
	switch transport {
	case WebSocket:
		return spark.NewWSStreamer(cfg, log)
	case SSE:
		return spark.NewSSEStreamer(cfg, log)
	default:
		return nil, fmt.Errorf("unknown chat transport: %q (supported: %v)", transport, SupportedTransports())
	}
}
