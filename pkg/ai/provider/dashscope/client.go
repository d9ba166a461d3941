// Package dashscope implements the Alibaba DashScope vendor: synchronous
// text translation and asynchronous image synthesis over its bearer-token
// HTTP API.
package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai"
)

const (
	defaultTranslateURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/translation/translation"
	defaultImageURL     = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text2image/image-synthesis"

	translateModel = "qwen-turbo"
	imageModel     = "wanx-v1"

	defaultPollDelay = 3 * time.Second
)

// Config configures the DashScope client.
type Config struct {
	// APIKey is the bearer token. Required.
	APIKey string

	// TranslateURL and ImageURL override the vendor endpoints, mainly for
	// tests.
	TranslateURL string
	ImageURL     string

	// PollDelay is the single wait before polling an asynchronous image
	// task.
	PollDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.TranslateURL == "" {
		c.TranslateURL = defaultTranslateURL
	}
	if c.ImageURL == "" {
		c.ImageURL = defaultImageURL
	}
	if c.PollDelay == 0 {
		c.PollDelay = defaultPollDelay
	}
	return c
}

// Client talks to DashScope. It implements provider.Translator and
// provider.ImageGenerator.
type Client struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger

	// sleep is swappable in tests so the image poll does not take wall
	// time.
	sleep func(d time.Duration)
}

// NewClient builds a DashScope client. It fails only on a missing API key.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ai.ConfigError{Field: "dashscope.api_key"}
	}

	return &Client{
		cfg:    cfg.withDefaults(),
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log,
		sleep:  time.Sleep,
	}, nil
}

func (c *Client) Name() string {
	return "dashscope"
}

type generationRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []ai.Message `json:"messages"`
	} `json:"input"`
	Parameters struct {
		ResultFormat string `json:"result_format"`
	} `json:"parameters"`
}

type generationResponse struct {
	Output struct {
		Text    string `json:"text"`
		Choices []struct {
			Message ai.Message `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

// Translate translates text via a single qwen-turbo generation call. The
// system prompt pins the model to translation-only output; both source and
// target are rendered as display names.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	var req generationRequest
	req.Model = translateModel
	req.Input.Messages = []ai.Message{
		{
			Role: ai.RoleSystem,
			Content: fmt.Sprintf(
				"你是一个专业的翻译助手。将用户输入的文本从%s翻译成%s。只返回翻译结果，不要添加任何解释。",
				ai.LanguageName(source), ai.LanguageName(target),
			),
		},
		{Role: ai.RoleUser, Content: text},
	}
	req.Parameters.ResultFormat = "text"

	var resp generationResponse
	if err := c.post(ctx, c.cfg.TranslateURL, req, nil, &resp); err != nil {
		return "", err
	}

	translated := resp.Output.Text
	if translated == "" && len(resp.Output.Choices) > 0 {
		translated = resp.Output.Choices[0].Message.Content
	}
	if translated == "" {
		return "", ai.ErrMissingResult
	}

	return translated, nil
}

type imageRequest struct {
	Model string `json:"model"`
	Input struct {
		Prompt string `json:"prompt"`
	} `json:"input"`
	Parameters struct {
		Size string `json:"size"`
		N    int    `json:"n"`
	} `json:"parameters"`
}

type imageResponse struct {
	Output struct {
		TaskID     string        `json:"task_id"`
		TaskStatus ai.TaskStatus `json:"task_status"`
		Results    []struct {
			URL string `json:"url"`
		} `json:"results"`
	} `json:"output"`
}

// GenerateImage submits an asynchronous wanx-v1 synthesis task, waits one
// fixed delay, and polls the task exactly once. It returns ai.ErrTaskPending
// when the task has not succeeded by then; callers decide how to degrade.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var req imageRequest
	req.Model = imageModel
	req.Input.Prompt = prompt
	req.Parameters.Size = "512*512"
	req.Parameters.N = 1

	headers := http.Header{}
	headers.Set("X-DashScope-Async", "enable")

	var resp imageResponse
	if err := c.post(ctx, c.cfg.ImageURL, req, headers, &resp); err != nil {
		return "", err
	}

	// Some responses carry the result inline without a task round-trip.
	if len(resp.Output.Results) > 0 && resp.Output.Results[0].URL != "" {
		return resp.Output.Results[0].URL, nil
	}

	switch resp.Output.TaskStatus {
	case ai.TaskPending, ai.TaskRunning:
		return c.pollTask(ctx, resp.Output.TaskID)
	default:
		return "", ai.ErrTaskPending
	}
}

// pollTask performs the single follow-up poll. The poll is detached from the
// caller's cancellation: once the task is submitted the vendor is doing the
// work regardless, and the result is still worth fetching.
func (c *Client) pollTask(ctx context.Context, taskID string) (string, error) {
	ctx = context.WithoutCancel(ctx)
	c.sleep(c.cfg.PollDelay)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ImageURL+"/"+taskID, nil)
	if err != nil {
		return "", &ai.TransportError{Op: "build poll request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return "", &ai.TransportError{Op: "poll", Err: err}
	}
	defer httpResp.Body.Close()

	var resp imageResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", &ai.TransportError{Op: "decode poll response", Err: err}
	}

	if resp.Output.TaskStatus == ai.TaskSucceeded && len(resp.Output.Results) > 0 {
		return resp.Output.Results[0].URL, nil
	}

	c.log.Debug("image task not ready after poll",
		zap.String("task_id", taskID),
		zap.String("status", string(resp.Output.TaskStatus)))
	return "", ai.ErrTaskPending
}

func (c *Client) post(ctx context.Context, url string, payload any, extra http.Header, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ai.TransportError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ai.TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &ai.TransportError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ai.StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ai.TransportError{Op: "decode response", Err: err}
	}
	return nil
}
