package spark

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
	"github.com/lenshub/lenshub/pkg/sse"
)

const sseDoneMarker = "[DONE]"

// SSEStreamer streams chat completions over the vendor's HTTP chat
// completions endpoint with server-sent events.
type SSEStreamer struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// NewSSEStreamer builds the SSE chat transport. It fails only on missing
// credentials.
func NewSSEStreamer(cfg Config, log *zap.Logger) (*SSEStreamer, error) {
	if err := cfg.Credentials.validate(); err != nil {
		return nil, err
	}

	return &SSEStreamer{
		cfg:    cfg.withDefaults(),
		client: &http.Client{Timeout: 120 * time.Second},
		log:    log,
	}, nil
}

func (s *SSEStreamer) Name() string {
	return "spark-sse"
}

type sseRequest struct {
	Model    string       `json:"model"`
	Messages []ai.Message `json:"messages"`
	Stream   bool         `json:"stream"`
}

// StreamChat posts the conversation and folds "data:" chunks into agg until
// the [DONE] marker or the body ending.
func (s *SSEStreamer) StreamChat(ctx context.Context, messages []ai.Message, agg *stream.Aggregator) (*ai.Usage, error) {
	body, err := json.Marshal(sseRequest{
		Model:    s.cfg.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, &ai.TransportError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ChatURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ai.TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey+":"+s.cfg.APISecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &ai.TransportError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ai.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	return s.readEvents(resp.Body, agg)
}

func (s *SSEStreamer) readEvents(body io.Reader, agg *stream.Aggregator) (*ai.Usage, error) {
	reader := sse.NewReader(body)
	var usage *ai.Usage

	for {
		ev, err := reader.Next()
		if err != nil {
			if agg.ChannelClosed() {
				s.log.Debug("stream broke after partial content, treating as complete",
					zap.Int("bytes", agg.Len()))
				return usage, nil
			}
			return nil, &ai.TransportError{Op: "read", Err: err}
		}
		if ev == nil {
			// Body ended without [DONE]; partial content still completes.
			if agg.ChannelClosed() {
				return usage, nil
			}
			return nil, &ai.TransportError{Op: "read", Err: io.ErrUnexpectedEOF}
		}

		if ev.Data == sseDoneMarker {
			agg.Complete()
			return usage, nil
		}

		var chunk sseChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			s.log.Debug("skipping malformed chunk", zap.Error(err))
			continue
		}

		if chunk.Code != 0 {
			perr := &ai.ProviderError{Code: chunk.Code, Message: chunk.Message}
			if agg.Len() > 0 {
				agg.Fail(perr)
			}
			return nil, perr
		}

		for _, c := range chunk.Choices {
			agg.Append(c.Delta.Content)
		}
		if chunk.Usage != nil {
			usage = &ai.Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}
	}
}
