package spark

import "github.com/lenshub/lenshub/pkg/ai"

// chatRequest is the single request frame sent after the WebSocket upgrade.
type chatRequest struct {
	Header    requestHeader    `json:"header"`
	Parameter requestParameter `json:"parameter"`
	Payload   requestPayload   `json:"payload"`
}

type requestHeader struct {
	AppID string `json:"app_id"`
	UID   string `json:"uid"`
}

type requestParameter struct {
	Chat chatParameter `json:"chat"`
}

type chatParameter struct {
	Domain      string  `json:"domain"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type requestPayload struct {
	Message requestMessage `json:"message"`
}

type requestMessage struct {
	Text []ai.Message `json:"text"`
}

// Frame status values carried in header.status.
const (
	statusFirst = 0
	statusMore  = 1
	statusFinal = 2
)

// chatFrame is one inbound WebSocket message. A non-zero header.code is a
// provider-level error; header.status == statusFinal marks the last frame.
type chatFrame struct {
	Header struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		SID     string `json:"sid"`
		Status  int    `json:"status"`
	} `json:"header"`
	Payload *framePayload `json:"payload"`
}

type framePayload struct {
	Choices struct {
		Status int `json:"status"`
		Seq    int `json:"seq"`
		Text   []struct {
			Content string `json:"content"`
			Role    string `json:"role"`
			Index   int    `json:"index"`
		} `json:"text"`
	} `json:"choices"`
	Usage *frameUsage `json:"usage"`
}

type frameUsage struct {
	Text struct {
		QuestionTokens   int `json:"question_tokens"`
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"text"`
}

func (u *frameUsage) toUsage() *ai.Usage {
	if u == nil {
		return nil
	}
	return &ai.Usage{
		PromptTokens:     u.Text.PromptTokens,
		CompletionTokens: u.Text.CompletionTokens,
		TotalTokens:      u.Text.TotalTokens,
	}
}

// sseChunk is one decoded "data:" payload on the SSE transport
// (OpenAI-compatible chat completions shape).
type sseChunk struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
