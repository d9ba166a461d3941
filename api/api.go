package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lenshub/lenshub/pkg/ai/facade"
	"github.com/lenshub/lenshub/pkg/blob"
	"github.com/lenshub/lenshub/pkg/eventstream"
	"github.com/lenshub/lenshub/pkg/session"
	"github.com/lenshub/lenshub/pkg/storage"
)

// Server is the HTTP server for the marketplace and its AI endpoints.
type Server struct {
	config   Config
	storer   storage.Store
	blobs    blob.Store
	sessions *session.Manager
	ai       *facade.Facade
	events   eventstream.Publisher
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server. Dependencies are injected so tests can
// substitute in-memory implementations. filesDir, when non-empty, is served
// under /files/ for locally stored uploads.
func NewServer(config Config, storer storage.Store, blobs blob.Store, sessions *session.Manager, ai *facade.Facade, events eventstream.Publisher, filesDir string, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	s := &Server{
		config:   config,
		storer:   storer,
		blobs:    blobs,
		sessions: sessions,
		ai:       ai,
		events:   events,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)

	// AI capabilities
	app.Post("/api/spark-chat", s.handleSparkChat)
	app.Post("/api/translate", s.handleTranslate)
	app.Post("/api/generate-image", s.handleGenerateImage)

	// Auth
	app.Post("/api/auth/signup", s.handleSignUp)
	app.Post("/api/auth/signin", s.handleSignIn)
	app.Post("/api/auth/signout", s.handleSignOut)

	// Components
	app.Get("/api/components", s.handleListComponents)
	app.Get("/api/components/categories", s.handleCategories)
	app.Get("/api/components/:id", s.handleGetComponent)
	app.Get("/api/components/:id/stats", s.handleComponentStats)
	app.Post("/api/components", s.handleCreateComponent)
	app.Put("/api/components/:id", s.handleUpdateComponent)
	app.Delete("/api/components/:id", s.handleDeleteComponent)
	app.Post("/api/components/:id/download", s.handleDownloadComponent)
	app.Put("/api/admin/components/:id/status", s.handleReviewComponent)

	// Comments
	app.Get("/api/components/:id/comments", s.handleListComments)
	app.Post("/api/components/:id/comments", s.handleCreateComment)
	app.Put("/api/comments/:id", s.handleUpdateComment)
	app.Delete("/api/comments/:id", s.handleDeleteComment)

	// Favorites
	app.Get("/api/users/:id/favorites", s.handleListFavorites)
	app.Get("/api/components/:id/favorite", s.handleIsFavorite)
	app.Post("/api/components/:id/favorite", s.handleAddFavorite)
	app.Delete("/api/components/:id/favorite", s.handleRemoveFavorite)

	// Announcements
	app.Get("/api/announcements", s.handleListAnnouncements)
	app.Post("/api/announcements", s.handleCreateAnnouncement)
	app.Put("/api/announcements/:id", s.handleUpdateAnnouncement)
	app.Delete("/api/announcements/:id", s.handleDeleteAnnouncement)

	// Profiles. by-username registers before the :id routes so a username
	// never shadows an ID segment.
	app.Get("/api/users", s.handleListProfiles)
	app.Get("/api/users/by-username/:username", s.handleGetProfileByUsername)
	app.Get("/api/users/:id", s.handleGetProfile)
	app.Put("/api/users/:id", s.handleUpdateProfile)
	app.Get("/api/users/:id/components", s.handleListUserComponents)

	// Uploads
	app.Post("/api/upload", s.handleUpload)
	if filesDir != "" {
		app.Use("/files/", adaptor.HTTPHandler(
			http.StripPrefix("/files/", http.FileServer(http.Dir(filesDir))),
		))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
