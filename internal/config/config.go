package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Config holds all configuration from environment variables.
type Config struct {
	Token       string `envconfig:"TELEGRAM_BOT_TOKEN"`
	APIKey      string `envconfig:"GEMINI_API_KEY"`
	EndpointURL string `envconfig:"GEMINI_ENDPOINT_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Model       string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Bot messages loaded from config.toml
	Messages Messages `ignored:"true"`
}

// Messages holds the fixed bot replies loaded from config.toml.
type Messages struct {
	Greeting string `toml:"greeting"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Messages Messages `toml:"messages"`
}

// DefaultMessages provides fallback messages if config.toml is not found.
var DefaultMessages = Messages{
	Greeting: "Hello! I'm Kibo, your Gemini-powered AI bot 🤖. Ask me anything!",
}

// LoadDotenv loads variables from a .env file without overriding the ones
// already set. A missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoadEnv loads the configuration from environment variables.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads bot messages from config.toml file.
func (c *Config) LoadFile() error {
	configPath := c.ConfigFile
	if !filepath.IsAbs(configPath) {
		// Try current directory first, then the executable directory
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			execPath, err := os.Executable()
			if err == nil {
				configPath = filepath.Join(filepath.Dir(execPath), c.ConfigFile)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		c.Messages = DefaultMessages
		return nil
	}

	var fileConfig FileConfig
	if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
		return err
	}

	c.Messages = fileConfig.Messages
	if c.Messages.Greeting == "" {
		c.Messages.Greeting = DefaultMessages.Greeting
	}

	return nil
}

func NewConfig() (*Config, error) {
	if err := LoadDotenv(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}

	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	return &loadedCfg, nil
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
		),
	)
}
