package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/config"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/llm/providers"
)

// App represents the DhidarGPT application: its configuration and the AI
// gateway every surface talks to.
type App struct {
	Config        *config.Config
	Gateway       *llm.Gateway
	WorkspaceRoot string
}

// AppConfig represents configuration for app initialization
type AppConfig struct {
	WorkspaceRoot string
	Debug         bool

	// Config is used as is when set, instead of being loaded.
	Config *config.Config

	// Client overrides the Gemini client, for tests.
	Client llm.Client
}

// NewApp loads the configuration and builds the gateway. A missing API key
// is reported as config.ErrMissingAPIKey.
func NewApp(ctx context.Context, appConfig *AppConfig) (*App, error) {
	if appConfig == nil {
		appConfig = &AppConfig{}
	}

	workspaceRoot := appConfig.WorkspaceRoot
	if workspaceRoot == "" {
		workspaceRoot = "."
	}
	absWorkspace, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace path: %w", err)
	}

	cfg := appConfig.Config
	if cfg == nil {
		cfg, err = config.Load(absWorkspace, appConfig.Debug)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	client := appConfig.Client
	if client == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		client = providers.NewGeminiClient(cfg.APIKey)
	}

	app := &App{
		Config:        cfg,
		Gateway:       llm.NewGateway(client, cfg.GatewayModels()),
		WorkspaceRoot: absWorkspace,
	}

	models := app.Gateway.Models()
	log.Info("DhidarGPT initialized",
		"workspace", absWorkspace,
		"config", cfg.ConfigFile(),
		"chat", models.DefaultChat(),
		"summarize", models.Summarize,
		"imageEdit", models.ImageEdit,
		"imageGenerate", models.ImageGenerate,
	)
	return app, nil
}
