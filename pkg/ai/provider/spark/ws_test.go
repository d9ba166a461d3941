package spark

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
)

var _ = Describe("WSStreamer", func() {
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

	// newServer upgrades the connection, consumes the single request frame,
	// and hands the socket to fn for the response side of the conversation.
	newServer := func(fn func(ctx context.Context, conn *websocket.Conn, req chatRequest)) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()

			conn, err := websocket.Accept(w, r, nil)
			if err != nil {
				return
			}
			ctx := r.Context()

			var req chatRequest
			if _, data, err := conn.Read(ctx); err == nil {
				_ = json.Unmarshal(data, &req)
			}

			fn(ctx, conn, req)
		}))
	}

	wsURL := func(srv *httptest.Server) string {
		return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1.1/chat"
	}

	newStreamer := func(url string) *WSStreamer {
		s, err := NewWSStreamer(Config{Credentials: testCreds, WSURL: url}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	send := func(ctx context.Context, conn *websocket.Conn, frame string) {
		Expect(conn.Write(ctx, websocket.MessageText, []byte(frame))).To(Succeed())
	}

	Describe("NewWSStreamer", func() {
		It("rejects missing credentials", func() {
			_, err := NewWSStreamer(Config{}, zap.NewNop())

			var cfgErr *ai.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
		})

		It("reports its transport name", func() {
			Expect(newStreamer("ws://example.test/v1.1/chat").Name()).To(Equal("spark-ws"))
		})
	})

	Describe("StreamChat", func() {
		Context("with a well-formed conversation", func() {
			It("signs the upgrade, aggregates frames, and closes the socket", func() {
				var (
					gotQuery   url.Values
					gotRequest chatRequest
					serverDone = make(chan struct{})
				)

				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					gotQuery = r.URL.Query()

					conn, err := websocket.Accept(w, r, nil)
					if err != nil {
						return
					}
					ctx := r.Context()

					if _, data, err := conn.Read(ctx); err == nil {
						_ = json.Unmarshal(data, &gotRequest)
					}

					send(ctx, conn, `{"header":{"code":0,"status":0},"payload":{"choices":{"text":[{"content":"你好"}]}}}`)
					send(ctx, conn, `{"header":{"code":0,"status":1},"payload":{"choices":{"text":[{"content":"，世界"}]}}}`)
					send(ctx, conn, `{"header":{"code":0,"status":2},"payload":{"choices":{"text":[]},"usage":{"text":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}}}`)

					// The client closes after the final frame.
					_, _, err = conn.Read(ctx)
					Expect(err).To(HaveOccurred())
					close(serverDone)
				}))
				defer srv.Close()

				usage, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)
				Expect(err).NotTo(HaveOccurred())

				// The upgrade carries the three signed query parameters and
				// the signature recomputes for a GET at the dialed path.
				signer, sErr := NewSigner(testCreds)
				Expect(sErr).NotTo(HaveOccurred())
				Expect(gotQuery.Get("host")).NotTo(BeEmpty())
				Expect(gotQuery.Get("date")).NotTo(BeEmpty())
				Expect(gotQuery.Get("authorization")).To(Equal(signer.Authorization(
					gotQuery.Get("host"), "/v1.1/chat", http.MethodGet, gotQuery.Get("date"),
				)))

				Expect(gotRequest.Header.AppID).To(Equal("app-123"))
				Expect(gotRequest.Payload.Message.Text).To(Equal(messages))

				Expect(agg.Content()).To(Equal("你好，世界"))
				Expect(updates).To(Equal([]string{"你好", "你好，世界"}))
				Expect(completes).To(Equal(1))
				Expect(failures).To(BeEmpty())

				Expect(usage).NotTo(BeNil())
				Expect(usage.TotalTokens).To(Equal(12))

				Eventually(serverDone, 2*time.Second).Should(BeClosed())
			})

			It("skips malformed frames without failing the stream", func() {
				srv := newServer(func(ctx context.Context, conn *websocket.Conn, _ chatRequest) {
					send(ctx, conn, `not json at all`)
					send(ctx, conn, `{"header":{"code":0,"status":1},"payload":{"choices":{"text":[{"content":"ok"}]}}}`)
					send(ctx, conn, `{"header":{"code":0,"status":2},"payload":{"choices":{"text":[]}}}`)
				})
				defer srv.Close()

				_, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)
				Expect(err).NotTo(HaveOccurred())
				Expect(agg.Content()).To(Equal("ok"))
				Expect(completes).To(Equal(1))
			})
		})

		Context("when an error frame arrives before any content", func() {
			It("returns a ProviderError and leaves the aggregator untouched", func() {
				srv := newServer(func(ctx context.Context, conn *websocket.Conn, _ chatRequest) {
					send(ctx, conn, `{"header":{"code":10013,"message":"content audit failed","status":0}}`)
				})
				defer srv.Close()

				_, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)

				var provErr *ai.ProviderError
				Expect(errors.As(err, &provErr)).To(BeTrue())
				Expect(provErr.Code).To(Equal(10013))

				Expect(agg.Len()).To(BeZero())
				Expect(agg.Done()).To(BeFalse())
				Expect(failures).To(BeEmpty())
			})
		})

		Context("when an error frame arrives after partial content", func() {
			It("fails the stream once and returns the error", func() {
				srv := newServer(func(ctx context.Context, conn *websocket.Conn, _ chatRequest) {
					send(ctx, conn, `{"header":{"code":0,"status":0},"payload":{"choices":{"text":[{"content":"partial"}]}}}`)
					send(ctx, conn, `{"header":{"code":10019,"message":"session limit","status":1}}`)
				})
				defer srv.Close()

				_, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)

				var provErr *ai.ProviderError
				Expect(errors.As(err, &provErr)).To(BeTrue())

				Expect(failures).To(HaveLen(1))
				Expect(completes).To(BeZero())
				Expect(agg.Content()).To(Equal("partial"))
			})
		})

		Context("when the socket closes without a final frame", func() {
			It("treats partial content as implicit completion", func() {
				srv := newServer(func(ctx context.Context, conn *websocket.Conn, _ chatRequest) {
					send(ctx, conn, `{"header":{"code":0,"status":0},"payload":{"choices":{"text":[{"content":"半截回答"}]}}}`)
					conn.Close(websocket.StatusNormalClosure, "")
				})
				defer srv.Close()

				_, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)
				Expect(err).NotTo(HaveOccurred())

				Expect(agg.Content()).To(Equal("半截回答"))
				Expect(completes).To(Equal(1))
			})

			It("surfaces a TransportError when the socket closes before any frame", func() {
				srv := newServer(func(_ context.Context, conn *websocket.Conn, _ chatRequest) {
					conn.Close(websocket.StatusNormalClosure, "")
				})
				defer srv.Close()

				_, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)

				var transErr *ai.TransportError
				Expect(errors.As(err, &transErr)).To(BeTrue())

				// Nothing accumulated and no terminal callback fired, so the
				// facade is free to restart the conversation locally.
				Expect(agg.Len()).To(BeZero())
				Expect(agg.Done()).To(BeFalse())
				Expect(completes).To(BeZero())
				Expect(failures).To(BeEmpty())
			})
		})

		Context("when the endpoint refuses the dial", func() {
			It("returns a TransportError", func() {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusUnauthorized)
				}))
				defer srv.Close()

				_, err := newStreamer(wsURL(srv)).StreamChat(context.Background(), messages, agg)

				var transErr *ai.TransportError
				Expect(errors.As(err, &transErr)).To(BeTrue())
				Expect(agg.Done()).To(BeFalse())
			})
		})
	})
})
