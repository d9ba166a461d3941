// Package facade is the single entry point for AI capabilities: streamed
// chat, translation, and image generation. It owns the degradation policy —
// which failures fall back to the local provider and which propagate — so
// callers never reason about vendors.
package facade

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/provider"
	"github.com/lenshub/lenshub/pkg/ai/provider/local"
	"github.com/lenshub/lenshub/pkg/ai/stream"
)

// Degradation messages returned alongside image URLs. The image capability
// never fails; the message tells the client which path produced the URL.
const (
	msgImageOK       = "图片生成成功"
	msgImageAPIFail  = "使用占位图片（API调用失败）"
	msgImagePending  = "图片生成中，请稍后重试"
	msgImageInternal = "生成失败"
)

// Facade composes the vendor capabilities behind one API.
//
// The failure policy is asymmetric on purpose: chat degrades to the local
// canned provider, image generation degrades to a placeholder URL, and
// translation fails hard because no local fallback for it exists.
//
// Providers may be swapped at runtime when credentials rotate; all access
// goes through the mutex.
type Facade struct {
	mu         sync.RWMutex
	chat       provider.ChatStreamer
	translator provider.Translator
	images     provider.ImageGenerator

	fallback provider.ChatStreamer
	log      *zap.Logger
}

// New builds a facade over the given capabilities. Any capability may be
// nil: nil chat always answers from the local fallback, nil translation
// reports a configuration error, nil image generation always degrades to a
// placeholder.
func New(chat provider.ChatStreamer, translator provider.Translator, images provider.ImageGenerator, log *zap.Logger) *Facade {
	return &Facade{
		chat:       chat,
		translator: translator,
		images:     images,
		fallback:   local.New(),
		log:        log,
	}
}

// SetProviders swaps the vendor capabilities, e.g. after a credential
// rotation. In-flight calls finish against the providers they started with.
func (f *Facade) SetProviders(chat provider.ChatStreamer, translator provider.Translator, images provider.ImageGenerator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chat = chat
	f.translator = translator
	f.images = images
}

func (f *Facade) providers() (provider.ChatStreamer, provider.Translator, provider.ImageGenerator) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.chat, f.translator, f.images
}

// Chat streams a completion into cb and returns the aggregated result.
//
// A primary failure before any content arrived swaps in the local fallback
// transparently; the caller sees a normal stream with Degraded set. A failure
// after partial content is a hard error — the stream already fired OnError
// and cannot be restarted without replaying text the caller has seen.
func (f *Facade) Chat(ctx context.Context, messages []ai.Message, cb stream.Callbacks) (*ai.ChatResult, error) {
	chat, _, _ := f.providers()
	agg := stream.New(cb)

	if chat == nil {
		return f.degradedChat(ctx, messages, agg)
	}

	usage, err := chat.StreamChat(ctx, messages, agg)
	if err == nil {
		return &ai.ChatResult{Content: agg.Content(), Usage: usage}, nil
	}

	if agg.Len() > 0 || agg.Done() {
		return nil, err
	}

	f.log.Warn("chat provider unreachable, using local fallback",
		zap.String("provider", chat.Name()),
		zap.Error(err))

	return f.degradedChat(ctx, messages, agg)
}

func (f *Facade) degradedChat(ctx context.Context, messages []ai.Message, agg *stream.Aggregator) (*ai.ChatResult, error) {
	if _, err := f.fallback.StreamChat(ctx, messages, agg); err != nil {
		return nil, err
	}
	return &ai.ChatResult{Content: agg.Content(), Degraded: true}, nil
}

// Translate translates text between language codes. Vendor errors propagate
// unchanged; there is no fallback for translation.
func (f *Facade) Translate(ctx context.Context, text, source, target string) (*ai.TranslateResult, error) {
	_, translator, _ := f.providers()
	if translator == nil {
		return nil, &ai.ConfigError{Field: "dashscope.api_key"}
	}

	translated, err := translator.Translate(ctx, text, source, target)
	if err != nil {
		return nil, err
	}

	return &ai.TranslateResult{
		TranslatedText: translated,
		Source:         source,
		Target:         target,
	}, nil
}

// GenerateImage synthesizes an image for the prompt. It never returns an
// error: every failure path yields a placeholder URL plus a message naming
// the degradation.
func (f *Facade) GenerateImage(ctx context.Context, prompt string) *ai.ImageResult {
	_, _, images := f.providers()
	if images == nil {
		return &ai.ImageResult{
			ImageURL: local.PlaceholderImage(prompt),
			Message:  msgImageAPIFail,
			Degraded: true,
		}
	}

	url, err := images.GenerateImage(ctx, prompt)
	if err == nil {
		return &ai.ImageResult{ImageURL: url, Message: msgImageOK}
	}

	result := &ai.ImageResult{
		ImageURL: local.PlaceholderImage(prompt),
		Degraded: true,
	}

	var statusErr *ai.StatusError
	switch {
	case errors.Is(err, ai.ErrTaskPending):
		result.Message = msgImagePending
	case errors.As(err, &statusErr):
		result.Message = msgImageAPIFail
	default:
		result.Message = msgImageInternal
	}

	f.log.Warn("image generation degraded to placeholder",
		zap.String("provider", images.Name()),
		zap.String("message", result.Message),
		zap.Error(err))

	return result
}
