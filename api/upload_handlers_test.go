package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai/facade"
	bloblocal "github.com/lenshub/lenshub/pkg/blob/local"
	"github.com/lenshub/lenshub/pkg/eventstream/nop"
	"github.com/lenshub/lenshub/pkg/session"
	"github.com/lenshub/lenshub/pkg/storage/inmemory"
)

var _ = Describe("POST /api/upload", func() {
	var (
		env   *testEnv
		blobs *bloblocal.Store
		token string
	)

	BeforeEach(func() {
		tmpDir, err := os.MkdirTemp("", "upload-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })

		blobs, err = bloblocal.NewStore(tmpDir, "http://localhost:8080/files")
		Expect(err).NotTo(HaveOccurred())

		store := inmemory.NewStore()
		sessions := session.NewManager()
		server := NewServer(
			Config{ListenAddr: ":0"},
			store, blobs, sessions, facade.New(nil, nil, nil, zap.NewNop()),
			nop.NewPublisher(), blobs.Dir(),
			zap.NewNop(),
		)

		env = &testEnv{server: server, store: store, sessions: sessions}
		token, _ = env.signUp("alice")
	})

	// upload posts a multipart body with a single "file" field.
	upload := func(token, filename string, content []byte) *http.Response {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(content)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := env.server.App().Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("stores the file and returns its public URL", func() {
		resp := upload(token, "bundle.zip", []byte("zip bytes"))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var body uploadResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		resp.Body.Close()

		Expect(body.URL).To(HavePrefix("http://localhost:8080/files/"))
		Expect(body.URL).To(HaveSuffix(".zip"))

		key := strings.TrimPrefix(body.URL, "http://localhost:8080/files/")
		stored, err := os.ReadFile(filepath.Join(blobs.Dir(), key))
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal([]byte("zip bytes")))
	})

	It("serves stored files back under /files/", func() {
		resp := upload(token, "preview.png", []byte{0x89, 'P', 'N', 'G'})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var body uploadResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		resp.Body.Close()

		path := strings.TrimPrefix(body.URL, "http://localhost:8080")
		req := httptest.NewRequest(http.MethodGet, path, nil)
		served, err := env.server.App().Test(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(served.StatusCode).To(Equal(http.StatusOK))
	})

	It("requires a session", func() {
		resp := upload("", "bundle.zip", []byte("zip bytes"))
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("rejects bodies without a file field", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := env.server.App().Test(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
