// Package provider defines the vendor capability interfaces of the AI layer
// and the factory that selects an implementation from configuration. Each
// vendor subpackage knows how to authenticate against and speak its specific
// wire protocol.
package provider

import (
	"context"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
)

// ChatStreamer produces a chat completion by driving a stream.Aggregator.
//
// Terminal contract: on success the implementation has fired agg.Complete
// and returns a nil error. On failure BEFORE any content accumulated, the
// implementation returns the error and leaves the aggregator untouched so
// the caller may substitute a fallback stream. On failure AFTER partial
// content, the implementation fires agg.Fail exactly once and returns the
// same error.
type ChatStreamer interface {
	// Name returns the canonical provider name (e.g. "spark-ws", "spark-sse", "local")
	Name() string

	// StreamChat sends the conversation and folds the vendor's incremental
	// response into agg. Usage is non-nil only when the vendor reported it.
	StreamChat(ctx context.Context, messages []ai.Message, agg *stream.Aggregator) (*ai.Usage, error)
}

// Translator translates text in a single request/response exchange.
type Translator interface {
	Name() string

	// Translate returns the translated text. There is no fallback at this
	// level; errors propagate to the caller.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// ImageGenerator synthesizes an image for a prompt and returns its URL.
type ImageGenerator interface {
	Name() string

	// GenerateImage returns the URL of the generated image. It returns
	// ai.ErrTaskPending when the vendor's asynchronous task was still not
	// ready after the single allowed poll.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
