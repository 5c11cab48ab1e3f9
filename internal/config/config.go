package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no provider API key could be found.
var ErrMissingAPIKey = errors.New("no Gemini API key configured: set API_KEY, GEMINI_API_KEY or DHIDAR_API_KEY, or apiKey in ~/.dhidar.json")

// Models selects the provider models used by each feature
type Models struct {
	Chat          []llm.ModelOption `mapstructure:"chat" json:"chat,omitempty"`
	Summarize     string            `mapstructure:"summarize" json:"summarize,omitempty"`
	ImageEdit     string            `mapstructure:"imageEdit" json:"imageEdit,omitempty"`
	ImageGenerate string            `mapstructure:"imageGenerate" json:"imageGenerate,omitempty"`
}

// Data defines storage configuration
type Data struct {
	Directory string `mapstructure:"directory" json:"directory,omitempty"`
}

// Log defines logging configuration
type Log struct {
	Level string `mapstructure:"level" json:"level,omitempty"`
}

// Serve defines the local HTTP surface configuration
type Serve struct {
	Addr string `mapstructure:"addr" json:"addr,omitempty"`
}

// TUIConfig defines terminal UI configuration
type TUIConfig struct {
	Theme string `mapstructure:"theme" json:"theme"`
}

// Config is the main configuration structure for the application
type Config struct {
	APIKey     string    `mapstructure:"apiKey" json:"apiKey,omitempty"`
	Models     Models    `mapstructure:"models" json:"models"`
	Data       Data      `mapstructure:"data" json:"data"`
	Log        Log       `mapstructure:"log" json:"log"`
	Serve      Serve     `mapstructure:"serve" json:"serve"`
	TUI        TUIConfig `mapstructure:"tui" json:"tui"`
	WorkingDir string    `mapstructure:"-" json:"wd,omitempty"`
	Debug      bool      `mapstructure:"debug" json:"debug,omitempty"`

	configFile string
}

// Application constants
const (
	defaultDataDirectory = ".dhidar"
	defaultLogLevel      = "info"
	defaultServeAddr     = "127.0.0.1:47100"
	defaultTheme         = "dhidar"
	appName              = "dhidar"
)

// apiKeyEnv lists the environment variables holding the API key, in priority order.
var apiKeyEnv = []string{"DHIDAR_API_KEY", "GEMINI_API_KEY", "API_KEY"}

// Load reads the configuration from environment variables and the optional
// config file. Environment values win over the file.
func Load(workingDir string, debug bool) (*Config, error) {
	v := viper.New()
	configureViper(v)
	setDefaults(v, debug)

	cfg := &Config{}
	if err := readConfig(v, cfg); err != nil {
		return nil, err
	}
	cfg.WorkingDir = workingDir
	cfg.Debug = cfg.Debug || debug
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Data.Directory == "" {
		cfg.Data.Directory = defaultDataDirectory
	}
	return cfg, nil
}

// configureViper sets up viper's configuration paths and environment variables
func configureViper(v *viper.Viper) {
	v.SetConfigName(fmt.Sprintf(".%s", appName))
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
	v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(append([]string{"apiKey"}, apiKeyEnv...)...)
}

// setDefaults configures default values for configuration options
func setDefaults(v *viper.Viper, debug bool) {
	def := llm.DefaultModels()
	v.SetDefault("models.chat", def.Chat)
	v.SetDefault("models.summarize", def.Summarize)
	v.SetDefault("models.imageEdit", def.ImageEdit)
	v.SetDefault("models.imageGenerate", def.ImageGenerate)
	v.SetDefault("data.directory", defaultDataDirectory)
	v.SetDefault("serve.addr", defaultServeAddr)
	v.SetDefault("tui.theme", defaultTheme)

	if debug {
		v.SetDefault("debug", true)
		v.Set("log.level", "debug")
	} else {
		v.SetDefault("debug", false)
		v.SetDefault("log.level", defaultLogLevel)
	}
}

// readConfig reads the config file if there is one and decodes everything into cfg
func readConfig(v *viper.Viper, cfg *Config) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.configFile = v.ConfigFileUsed()
	return nil
}

// Validate reports configuration that prevents talking to the provider.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ConfigFile returns the path of the config file that was read, if any.
func (c *Config) ConfigFile() string { return c.configFile }

// DataDir returns the data directory, resolved against the working directory.
func (c *Config) DataDir() string {
	if filepath.IsAbs(c.Data.Directory) || c.WorkingDir == "" {
		return c.Data.Directory
	}
	return filepath.Join(c.WorkingDir, c.Data.Directory)
}

// GatewayModels converts the model selection for the AI gateway.
func (c *Config) GatewayModels() llm.Models {
	return llm.Models{
		Chat:          c.Models.Chat,
		Summarize:     c.Models.Summarize,
		ImageEdit:     c.Models.ImageEdit,
		ImageGenerate: c.Models.ImageGenerate,
	}
}
