package spark

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
)

var _ = Describe("SSEStreamer", func() {
	var (
		messages  []ai.Message
		updates   []string
		completes int
		failures  []error
		agg       *stream.Aggregator
	)

	BeforeEach(func() {
		messages = []ai.Message{{Role: ai.RoleUser, Content: "写一段组件描述"}}
		updates = nil
		completes = 0
		failures = nil
		agg = stream.New(stream.Callbacks{
			OnUpdate:   func(full string) { updates = append(updates, full) },
			OnComplete: func() { completes++ },
			OnError:    func(err error) { failures = append(failures, err) },
		})
	})

	newStreamer := func(url string) *SSEStreamer {
		s, err := NewSSEStreamer(Config{Credentials: testCreds, ChatURL: url}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	Describe("NewSSEStreamer", func() {
		It("rejects missing credentials", func() {
			_, err := NewSSEStreamer(Config{}, zap.NewNop())

			var cfgErr *ai.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
		})

		It("reports its transport name", func() {
			Expect(newStreamer("http://example.test").Name()).To(Equal("spark-sse"))
		})
	})

	Describe("StreamChat", func() {
		Context("with a well-formed stream", func() {
			It("aggregates deltas and reports usage", func() {
				var gotAuth, gotAccept string
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotAuth = r.Header.Get("Authorization")
					gotAccept = r.Header.Get("Accept")

					w.Header().Set("Content-Type", "text/event-stream")
					io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"你好\"}}]}\n\n")
					io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"，世界\"}}],\"usage\":{\"prompt_tokens\":5,\"completion_tokens\":7,\"total_tokens\":12}}\n\n")
					io.WriteString(w, "data: [DONE]\n\n")
				}))
				defer srv.Close()

				usage, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)
				Expect(err).NotTo(HaveOccurred())

				Expect(gotAuth).To(Equal("Bearer key-456:secret-789"))
				Expect(gotAccept).To(Equal("text/event-stream"))

				Expect(agg.Content()).To(Equal("你好，世界"))
				Expect(updates).To(Equal([]string{"你好", "你好，世界"}))
				Expect(completes).To(Equal(1))
				Expect(failures).To(BeEmpty())

				Expect(usage).NotTo(BeNil())
				Expect(usage.TotalTokens).To(Equal(12))
			})

			It("skips malformed chunks without failing the stream", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					io.WriteString(w, "data: not json at all\n\n")
					io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n")
					io.WriteString(w, "data: [DONE]\n\n")
				}))
				defer srv.Close()

				_, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)
				Expect(err).NotTo(HaveOccurred())
				Expect(agg.Content()).To(Equal("ok"))
			})
		})

		Context("when the vendor rejects the request", func() {
			It("returns a StatusError and leaves the aggregator untouched", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusUnauthorized)
					io.WriteString(w, `{"error":"bad credentials"}`)
				}))
				defer srv.Close()

				_, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)

				var statusErr *ai.StatusError
				Expect(errors.As(err, &statusErr)).To(BeTrue())
				Expect(statusErr.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(statusErr.Body).To(ContainSubstring("bad credentials"))

				Expect(agg.Len()).To(BeZero())
				Expect(agg.Done()).To(BeFalse())
			})
		})

		Context("when an error chunk arrives before any content", func() {
			It("returns a ProviderError and leaves the aggregator untouched", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					io.WriteString(w, "data: {\"code\":10013,\"message\":\"content audit failed\"}\n\n")
				}))
				defer srv.Close()

				_, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)

				var provErr *ai.ProviderError
				Expect(errors.As(err, &provErr)).To(BeTrue())
				Expect(provErr.Code).To(Equal(10013))

				Expect(agg.Done()).To(BeFalse())
				Expect(failures).To(BeEmpty())
			})
		})

		Context("when an error chunk arrives after partial content", func() {
			It("fails the stream once and returns the error", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
					io.WriteString(w, "data: {\"code\":10019,\"message\":\"session limit\"}\n\n")
				}))
				defer srv.Close()

				_, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)

				var provErr *ai.ProviderError
				Expect(errors.As(err, &provErr)).To(BeTrue())

				Expect(failures).To(HaveLen(1))
				Expect(completes).To(BeZero())
				Expect(agg.Content()).To(Equal("partial"))
			})
		})

		Context("when the stream ends without a done marker", func() {
			It("treats partial content as implicit completion", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"半截回答\"}}]}\n\n")
				}))
				defer srv.Close()

				_, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)
				Expect(err).NotTo(HaveOccurred())

				Expect(agg.Content()).To(Equal("半截回答"))
				Expect(completes).To(Equal(1))
			})

			It("fails when nothing arrived at all", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
				defer srv.Close()

				_, err := newStreamer(srv.URL).StreamChat(context.Background(), messages, agg)

				var transErr *ai.TransportError
				Expect(errors.As(err, &transErr)).To(BeTrue())
				Expect(errors.Is(err, io.ErrUnexpectedEOF)).To(BeTrue())
			})
		})
	})
})
