// Package ai holds the transport-neutral types shared by the AI capability
// layer: chat messages, token usage, and the results the facade hands back to
// the HTTP surface. Vendor specifics live under pkg/ai/provider.
package ai

// Message is one turn of a chat conversation. Order carries the meaning;
// messages have no identity beyond their position.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Usage reports vendor token accounting for a completed chat exchange.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is the outcome of a chat call: the full aggregated text plus
// optional usage, and whether the local fallback produced it.
type ChatResult struct {
	Content  string
	Usage    *Usage
	Degraded bool
}

// TranslateResult is the outcome of a translation call.
type TranslateResult struct {
	TranslatedText string
	Source         string
	Target         string
}

// ImageResult is the outcome of an image-generation call. Message describes
// degradation when the placeholder path produced the URL.
type ImageResult struct {
	ImageURL string
	Message  string
	Degraded bool
}

// TaskStatus is the lifecycle state of an asynchronous vendor-side
// image-generation job.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskSucceeded TaskStatus = "SUCCEEDED"
	TaskFailed    TaskStatus = "FAILED"
)

// LatestUserContent returns the content of the last user message, or the
// last message of any role when no user message exists. The local fallback
// keys its canned answers off this text.
func LatestUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

// languageNames maps ISO language codes to the display names used when
// building translation prompts. Unknown codes fall through as-is.
var languageNames = map[string]string{
	"zh": "中文",
	"en": "英语",
	"ja": "日语",
	"ko": "韩语",
	"es": "西班牙语",
	"fr": "法语",
	"de": "德语",
	"ru": "俄语",
}

// LanguageName returns the display name for a language code, or the code
// itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
