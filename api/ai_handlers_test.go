package api

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/provider/local"
)

// The test facade is wired with no vendor providers, so these specs exercise
// the degraded paths the handlers promise.
var _ = Describe("AI handlers", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Describe("POST /api/spark-chat", func() {
		It("answers with the canned fallback when no vendor is configured", func() {
			messages := []ai.Message{
				{Role: ai.RoleUser, Content: "帮我介绍一下导航功能"},
			}

			var body chatResponse
			resp := env.do(http.MethodPost, "/api/spark-chat", "", chatRequest{Messages: messages}, &body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body.Content).To(Equal(local.Answer("帮我介绍一下导航功能")))
			Expect(body.Usage).To(BeNil())
		})

		It("rejects empty messages", func() {
			resp := env.do(http.MethodPost, "/api/spark-chat", "", chatRequest{}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var errBody ErrorResponse
			resp = env.do(http.MethodPost, "/api/spark-chat", "", chatRequest{}, &errBody)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errBody.Error).To(Equal("Invalid messages"))
		})
	})

	Describe("POST /api/translate", func() {
		It("requires text", func() {
			var errBody ErrorResponse
			resp := env.do(http.MethodPost, "/api/translate", "", translateRequest{Source: "zh", Target: "en"}, &errBody)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errBody.Error).To(Equal("请提供要翻译的文本"))
		})

		It("answers 500 carrying the upstream error text when no translator is configured", func() {
			var errBody ErrorResponse
			resp := env.do(http.MethodPost, "/api/translate", "", translateRequest{
				Text:   "你好",
				Source: "zh",
				Target: "en",
			}, &errBody)
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(errBody.Error).To(Equal((&ai.ConfigError{Field: "dashscope.api_key"}).Error()))
		})
	})

	Describe("POST /api/generate-image", func() {
		It("requires a prompt", func() {
			var errBody ErrorResponse
			resp := env.do(http.MethodPost, "/api/generate-image", "", generateImageRequest{}, &errBody)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errBody.Error).To(Equal("请提供图片描述"))
		})

		It("degrades to a placeholder when no generator is configured", func() {
			var body generateImageResponse
			resp := env.do(http.MethodPost, "/api/generate-image", "", generateImageRequest{Prompt: "一只猫"}, &body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body.ImageURL).To(Equal(local.PlaceholderImage("一只猫")))
			Expect(body.Message).To(Equal("使用占位图片（API调用失败）"))
		})
	})
})
