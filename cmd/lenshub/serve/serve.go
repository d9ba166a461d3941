// Package servecmder provides the serve command that runs the marketplace
// API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lenshub/lenshub/api"
	"github.com/lenshub/lenshub/pkg/ai/facade"
	"github.com/lenshub/lenshub/pkg/ai/provider"
	"github.com/lenshub/lenshub/pkg/ai/provider/dashscope"
	"github.com/lenshub/lenshub/pkg/ai/provider/spark"
	bloblocal "github.com/lenshub/lenshub/pkg/blob/local"
	"github.com/lenshub/lenshub/pkg/config"
	"github.com/lenshub/lenshub/pkg/dotdir"
	"github.com/lenshub/lenshub/pkg/eventstream"
	eskafka "github.com/lenshub/lenshub/pkg/eventstream/kafka"
	esnop "github.com/lenshub/lenshub/pkg/eventstream/nop"
	"github.com/lenshub/lenshub/pkg/logger"
	"github.com/lenshub/lenshub/pkg/session"
	"github.com/lenshub/lenshub/pkg/storage"
	"github.com/lenshub/lenshub/pkg/storage/inmemory"
	"github.com/lenshub/lenshub/pkg/storage/sqlite"
)

// serveFlags is the registry of flags the serve command exposes.
var serveFlags = config.FlagSet{
	config.FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagPublicURL: {
		Name:        "public-url",
		ViperKey:    "api.public_url",
		Description: "Externally visible base URL for uploaded assets",
	},
	config.FlagStorageDriver: {
		Name:        "storage-driver",
		ViperKey:    "storage.driver",
		Description: "Record store driver (sqlite, inmemory)",
	},
	config.FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite database (default: <dotdir>/lenshub.db)",
	},
	config.FlagSparkTransport: {
		Name:        "spark-transport",
		ViperKey:    "spark.transport",
		Description: "Chat transport (websocket, sse)",
	},
	config.FlagEventsProvider: {
		Name:        "events-provider",
		ViperKey:    "event_stream.provider",
		Description: "Component event publisher (nop, kafka)",
	},
	config.FlagEventsTopic: {
		Name:        "events-topic",
		ViperKey:    "event_stream.topic",
		Description: "Kafka topic for component events",
	},
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagPublicURL,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagSparkTransport,
	config.FlagEventsProvider,
	config.FlagEventsTopic,
}

type ServeCommander struct {
	listen         string
	publicURL      string
	storageDriver  string
	sqlitePath     string
	sparkTransport string
	eventsProvider string
	eventsTopic    string

	configDir string
	debug     bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the LensHub marketplace API server.

The server exposes the component marketplace (components, comments,
favorites, announcements, profiles) together with the AI endpoints
(chat, translation, image generation).`

const serveShortDesc string = "Run the LensHub API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagPublicURL, &cmder.publicURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagSparkTransport, &cmder.sparkTransport)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
	cfg := config.ConfigFromViper(v)

	ddm := dotdir.NewManager()

	storer, err := c.newStore(cfg, ddm)
	if err != nil {
		return err
	}
	defer storer.Close()

	uploadsDir, err := ddm.UploadsDir(c.configDir)
	if err != nil {
		return err
	}
	blobs, err := bloblocal.NewStore(uploadsDir, cfg.API.PublicURL+"/files")
	if err != nil {
		return fmt.Errorf("creating blob store: %w", err)
	}
	defer blobs.Close()

	events := c.newPublisher(cfg)
	defer events.Close()

	aiFacade := facade.New(c.newProviders(cfg))

	apiConfig := api.Config{
		ListenAddr: cfg.API.Listen,
		PublicURL:  cfg.API.PublicURL,
	}
	server := api.NewServer(apiConfig, storer, blobs, session.NewManager(), aiFacade, events, uploadsDir, c.logger)

	// Reload vendor credentials when config.toml changes.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.watchConfig(ctx, aiFacade)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *ServeCommander) newStore(cfg *config.Config, ddm *dotdir.Manager) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "inmemory":
		c.logger.Info("using in-memory storage")
		return inmemory.NewStore(), nil

	case "sqlite", "":
		path := cfg.Storage.SQLitePath
		if path == "" {
			target, err := ddm.Target(c.configDir)
			if err != nil {
				return nil, err
			}
			path = filepath.Join(target, "lenshub.db")
		}

		storer, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		c.logger.Info("using SQLite storage", zap.String("path", path))
		return storer, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q (supported: sqlite, inmemory)", cfg.Storage.Driver)
	}
}

// newProviders builds the vendor capabilities from configuration. Missing
// credentials are logged and leave the capability nil; the facade degrades
// per its policy instead of the server refusing to start.
func (c *ServeCommander) newProviders(cfg *config.Config) (provider.ChatStreamer, provider.Translator, provider.ImageGenerator, *zap.Logger) {
	sparkCfg := spark.Config{
		Credentials: spark.Credentials{
			AppID:     cfg.Spark.AppID,
			APIKey:    cfg.Spark.APIKey,
			APISecret: cfg.Spark.APISecret,
		},
		WSURL:   cfg.Spark.WSURL,
		ChatURL: cfg.Spark.ChatURL,
		Domain:  cfg.Spark.Domain,
		Model:   cfg.Spark.Model,
	}

	chat, err := provider.NewChatStreamer(cfg.Spark.Transport, sparkCfg, c.logger)
	if err != nil {
		c.logger.Warn("chat provider unavailable, chat will use local fallback", zap.Error(err))
		chat = nil
	}

	var translator provider.Translator
	var images provider.ImageGenerator
	ds, err := dashscope.NewClient(dashscope.Config{
		APIKey:       cfg.DashScope.APIKey,
		TranslateURL: cfg.DashScope.TranslateURL,
		ImageURL:     cfg.DashScope.ImageURL,
	}, c.logger)
	if err != nil {
		c.logger.Warn("dashscope unavailable, translation will fail and images will degrade", zap.Error(err))
	} else {
		translator = ds
		images = ds
	}

	return chat, translator, images, c.logger
}

func (c *ServeCommander) newPublisher(cfg *config.Config) eventstream.Publisher {
	switch cfg.EventStream.Provider {
	case "kafka":
		if len(cfg.EventStream.Brokers) == 0 {
			c.logger.Warn("kafka event stream configured without brokers, events disabled")
			return esnop.NewPublisher()
		}
		c.logger.Info("publishing component events to kafka",
			zap.Strings("brokers", cfg.EventStream.Brokers),
			zap.String("topic", cfg.EventStream.Topic))
		return eskafka.NewPublisher(cfg.EventStream.Brokers, cfg.EventStream.Topic)

	default:
		return esnop.NewPublisher()
	}
}

// watchConfig blocks on the config watcher and swaps vendor providers into
// the facade whenever config.toml changes.
func (c *ServeCommander) watchConfig(ctx context.Context, aiFacade *facade.Facade) {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		c.logger.Warn("config watcher disabled", zap.Error(err))
		return
	}

	err = cfger.Watch(ctx, func(cfg *config.Config) {
		chat, translator, images, _ := c.newProviders(cfg)
		aiFacade.SetProviders(chat, translator, images)
		c.logger.Info("reloaded vendor configuration")
	})
	if err != nil && ctx.Err() == nil {
		c.logger.Warn("config watcher stopped", zap.Error(err))
	}
}
