// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/agent"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/config"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/conversation"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/scheduler"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/server"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/singleton"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/store"
)

var (
	address           = flag.String("address", "", "The address to bind the server to")
	port              = flag.Int("port", 0, "The port to bind the server to")
	logLevel          = flag.String("log-level", "", "Logging level: debug, info, warn, error, fatal")
	logFile           = flag.String("log-file", "", "Log file path (default: stdout)")
	version           = flag.Bool("version", false, "Show version information and exit")
	aiProvider        = flag.String("ai-provider", "", "AI provider: openai or anthropic (default: openai)")
	aiBaseURL         = flag.String("ai-base-url", "", "Custom base URL for OpenAI-compatible endpoints (e.g. DIAL, Ollama, vLLM, LiteLLM)")
	aiModel           = flag.String("ai-model", "", "AI model to use for chat completions (default: gpt-4o)")
	aiMaxTurns        = flag.Int("ai-max-turns", 0, "Maximum tool-calling turns per chat invocation (default: 20)")
	mcpConfigPath     = flag.String("mcp-config-path", "", "Path to MCP configuration file (default: ~/.ums-agent/mcp.json)")
	dbPath            = flag.String("db-path", "", "Path to SQLite database for conversations (default: ~/.ums-agent/conversations.db)")
	retentionSchedule = flag.String("retention-schedule", "", "Cron schedule for the conversation retention sweep (enables retention)")
	retentionMaxAge   = flag.Duration("retention-max-age", 0, "Delete conversations untouched for longer than this (default: 720h)")
)

func main() {
	flag.Parse()

	cfg := loadConfig()

	if *version {
		log.Printf("%s version %s", cfg.Server.Name, cfg.Server.Version)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := createApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	waitForShutdown(cancel, app)
}

// loadConfig loads configuration from defaults, environment, and flags.
func loadConfig() *config.Config {
	cfg := config.DefaultConfig()
	config.FromEnv(cfg)
	applyCommandLineFlagsToConfig(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// applyCommandLineFlagsToConfig applies command line flags to the configuration
func applyCommandLineFlagsToConfig(cfg *config.Config) {
	if *address != "" {
		cfg.Server.Address = *address
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Logging.FilePath = *logFile
	}
	if *aiProvider != "" {
		cfg.AI.Provider = *aiProvider
	}
	if *aiBaseURL != "" {
		cfg.AI.BaseURL = *aiBaseURL
	}
	if *aiModel != "" {
		cfg.AI.Model = *aiModel
	}
	if *aiMaxTurns > 0 {
		cfg.AI.MaxTurns = *aiMaxTurns
	}
	if *mcpConfigPath != "" {
		cfg.AI.MCPConfigFilePath = *mcpConfigPath
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *retentionSchedule != "" {
		cfg.Retention.Schedule = *retentionSchedule
		cfg.Retention.Enabled = true
	}
	if *retentionMaxAge > 0 {
		cfg.Retention.MaxAge = *retentionMaxAge
	}
}

// Application holds the wired components of the running agent.
type Application struct {
	config    *config.Config
	lock      *singleton.Lock
	convStore model.ConversationStore
	closeMCP  func()
	sweeper   *scheduler.RetentionSweeper
	server    *server.Server
	logger    *logging.Logger
	serverErr chan error
}

// createApp wires the application: logger, singleton lock, store, MCP tools,
// provider, manager, HTTP server, and the optional retention sweeper.
func createApp(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	logging.SetDefaultLogger(logger)

	lock, isPrimary, err := singleton.TryAcquire(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if !isPrimary {
		return nil, fmt.Errorf("another instance already serves %s", cfg.Database.Path)
	}

	convStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		_ = lock.Release()
		return nil, fmt.Errorf("create conversation store: %w", err)
	}

	tools, invokers, closeMCP, err := agent.LoadMCPTools(ctx, cfg.AI.MCPConfigFilePath, cfg.Server.Name, cfg.Server.Version, logger)
	if err != nil {
		logger.Warnf("MCP tools unavailable, continuing without tools: %v", err)
		tools, invokers, closeMCP = nil, map[string]agent.ToolInvoker{}, func() {}
	}
	logger.Infof("Loaded %d tools from MCP servers", len(tools))

	provider, err := agent.NewChatProvider(cfg)
	if err != nil {
		closeMCP()
		_ = convStore.Close()
		_ = lock.Release()
		return nil, err
	}

	manager := conversation.NewManager(convStore, agent.Options{
		Provider: provider,
		Model:    cfg.AI.Model,
		Tools:    tools,
		Router:   agent.NewToolRouter(invokers, logger),
		MaxTurns: cfg.AI.MaxTurns,
		Logger:   logger,
	}, logger)

	app := &Application{
		config:    cfg,
		lock:      lock,
		convStore: convStore,
		closeMCP:  closeMCP,
		server:    server.New(cfg, manager, logger),
		logger:    logger,
		serverErr: make(chan error, 1),
	}
	if cfg.Retention.Enabled {
		app.sweeper = scheduler.NewRetentionSweeper(convStore, cfg.Retention.MaxAge, logger)
	}
	return app, nil
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.FilePath != "" {
		return logging.FileLogger(cfg.Logging.FilePath, level)
	}
	return logging.New(logging.Options{Level: level}), nil
}

// Start starts the application.
func (a *Application) Start(ctx context.Context) error {
	if a.sweeper != nil {
		if err := a.sweeper.Start(ctx, a.config.Retention.Schedule); err != nil {
			return fmt.Errorf("start retention sweeper: %w", err)
		}
	}

	go func() {
		a.serverErr <- a.server.Start()
	}()
	return nil
}

// Stop stops the application.
func (a *Application) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Errorf("Error stopping HTTP server: %v", err)
	}
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	a.closeMCP()
	if err := a.convStore.Close(); err != nil {
		a.logger.Errorf("Error closing conversation store: %v", err)
	}
	return a.lock.Release()
}

// waitForShutdown waits for termination signals or server exit and performs cleanup
func waitForShutdown(cancel context.CancelFunc, app *Application) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-signalCh:
		app.logger.Infof("Received termination signal, shutting down...")
	case err := <-app.serverErr:
		if err != nil {
			app.logger.Errorf("HTTP server exited: %v", err)
		} else {
			app.logger.Infof("HTTP server exited, shutting down...")
		}
	}

	cancel()

	if err := app.Stop(); err != nil {
		app.logger.Errorf("Error during shutdown: %v", err)
		return
	}
	app.logger.Infof("Graceful shutdown completed")
}
