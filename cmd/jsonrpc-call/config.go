package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/chenwencheng/jsonrpc/pkg/jsonrpc"
	"github.com/chenwencheng/jsonrpc/pkg/log"
	"github.com/chenwencheng/jsonrpc/pkg/sign"
)

const (
	configDirPathEnv     = "JSONRPC_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
)

// Config is read from the environment, after loading .env from the config
// directory when there is one.
type Config struct {
	URL       string        `env:"JSONRPC_URL" validate:"required,url"`
	Transport string        `env:"JSONRPC_TRANSPORT" env-default:"auto" validate:"oneof=auto http ws"`
	Timeout   time.Duration `env:"JSONRPC_TIMEOUT" env-default:"30s" validate:"gt=0"`

	// HMAC signing needs both. With EthPrivateKey, AppKey alone overrides
	// the address sent as app_key.
	AppKey        string `env:"JSONRPC_APP_KEY" validate:"required_with=AppSecret"`
	AppSecret     string `env:"JSONRPC_APP_SECRET" validate:"excluded_with=EthPrivateKey"`
	EthPrivateKey string `env:"JSONRPC_ETH_PRIVATE_KEY"`

	Log log.Config
}

// LoadConfig builds configuration from environment variables. overrides are
// applied before validation.
func LoadConfig(logger log.Logger, overrides ...func(*Config)) (*Config, error) {
	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	configDotEnvPath := filepath.Join(configDirPath, ".env")
	if err := godotenv.Load(configDotEnvPath); err != nil {
		logger.Debug(".env file not loaded", "path", configDotEnvPath, "error", err)
	}

	var conf Config
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	for _, override := range overrides {
		override(&conf)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.AppKey != "" && c.AppSecret == "" && c.EthPrivateKey == "" {
		return errors.New("invalid configuration: JSONRPC_APP_SECRET is required with JSONRPC_APP_KEY")
	}
	return nil
}

// Signer returns the configured signer, or nil when calls go unsigned.
func (c *Config) Signer() (sign.Signer, error) {
	switch {
	case c.EthPrivateKey != "":
		return sign.NewEthereumSigner(c.EthPrivateKey, c.AppKey)
	case c.AppKey != "":
		return sign.NewHMACSigner(c.AppKey, c.AppSecret)
	default:
		return nil, nil
	}
}

// NewTransport returns the configured transport with Timeout applied. In
// auto mode ws:// and wss:// URLs get a websocket transport and anything
// else HTTP.
func (c *Config) NewTransport() jsonrpc.Transport {
	kind := c.Transport
	if kind == "auto" || kind == "" {
		kind = "http"
		if jsonrpc.IsWebsocketURL(c.URL) {
			kind = "ws"
		}
	}

	switch kind {
	case "http":
		cfg := jsonrpc.DefaultHTTPTransportConfig
		cfg.Timeout = c.Timeout
		return jsonrpc.NewHTTPTransport(cfg)
	default:
		cfg := jsonrpc.DefaultWebsocketTransportConfig
		cfg.ReadTimeout = c.Timeout
		return jsonrpc.NewWebsocketTransport(cfg)
	}
}
