// Package local is the in-process fallback provider. It answers chat from a
// small canned-response table keyed on the user's latest message and builds
// placeholder image URLs. Nothing here touches the network, so nothing here
// can fail.
package local

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
)

// cannedResponses maps prompt keywords to themed answers. The first matching
// entry wins, in declaration order.
var cannedResponses = []struct {
	keywords []string
	answer   string
}{
	{
		keywords: []string{"组件", "component"},
		answer: "智能眼镜组件是运行在眼镜端的功能模块，常见类型包括显示组件、交互组件和传感器组件。\n\n" +
			"编写组件描述时，建议先用一句话说明组件解决什么问题，再列出两到三个核心能力，最后给出一个典型使用场景。" +
			"这样审核人员和使用者都能快速理解组件的价值。",
	},
	{
		keywords: []string{"翻译", "translate"},
		answer: "实时翻译组件可以把采集到的语音或文字即时转换为目标语言，并在镜片上以字幕形式呈现。\n\n" +
			"一个好的翻译组件描述应当说明支持的语言对、延迟水平以及离线能力。" +
			"如果组件支持中英日韩等多语言互译，建议在描述中逐一列出。",
	},
	{
		keywords: []string{"导航", "navigation"},
		answer: "导航组件通常结合定位数据与视野叠加，在镜片上渲染方向指示与路线提示。\n\n" +
			"描述导航组件时，可以强调步行与骑行模式的差异、转向提醒的触发方式，以及与地图服务的对接能力。",
	},
	{
		keywords: []string{"识别", "recognition"},
		answer: "识别类组件依托摄像头画面完成物体、文字或人脸的实时识别，并将结果标注在视野中。\n\n" +
			"建议在描述中说明识别类别、准确率范围和响应速度，并注明是否需要联网推理。",
	},
}

const genericAnswer = "你好，我是组件描述助手。\n\n" +
	"你可以告诉我组件的名称和主要功能，我会帮你生成一段简洁、突出核心价值的组件描述。" +
	"也可以直接粘贴已有的描述，我来帮你润色。"

// Provider implements chat from the canned table. It satisfies the chat
// streaming interface so the orchestrator can swap it in transparently.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return "local"
}

// StreamChat selects a canned answer by keyword and delivers it as a single
// increment followed by completion. It never returns an error.
func (p *Provider) StreamChat(_ context.Context, messages []ai.Message, agg *stream.Aggregator) (*ai.Usage, error) {
	agg.Append(Answer(ai.LatestUserContent(messages)))
	agg.Complete()
	return nil, nil
}

// Answer returns the canned answer for a prompt.
func Answer(prompt string) string {
	for _, c := range cannedResponses {
		for _, kw := range c.keywords {
			if strings.Contains(prompt, kw) {
				return c.answer
			}
		}
	}
	return genericAnswer
}

const placeholderMaxRunes = 20

// PlaceholderImage returns a deterministic placeholder URL carrying the
// prompt (truncated) as its text. The URL is always syntactically valid.
func PlaceholderImage(prompt string) string {
	if utf8.RuneCountInString(prompt) > placeholderMaxRunes {
		runes := []rune(prompt)
		prompt = string(runes[:placeholderMaxRunes])
	}
	if prompt == "" {
		prompt = "AI图片生成"
	}
	return "https://via.placeholder.com/512x512/6366f1/ffffff?text=" + url.QueryEscape(prompt)
}
