package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. ARC56_ALGOD_URL
const EnvPrefix = "ARC56"

type Config struct {
	// Algod node the client submits to and reads from
	AlgodURL   string `mapstructure:"algod_url" validate:"required,url"`
	AlgodToken string `mapstructure:"algod_token"`

	// Path to the ARC-56 document of the contract
	SpecPath string `mapstructure:"spec_path" validate:"required"`

	// Application to bind ( 0 means not created yet )
	AppID uint64 `mapstructure:"app_id"`

	// Default sender and the mnemonic that signs for it
	Sender         string `mapstructure:"sender"`
	SenderMnemonic string `mapstructure:"sender_mnemonic"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console text"`

	// Rounds to wait for group confirmation
	WaitRounds uint64 `mapstructure:"wait_rounds" validate:"gte=1"`

	// Where deployments and call activity are recorded
	StoreDriver string `mapstructure:"store_driver" validate:"oneof=none postgres bolt"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=StoreDriver postgres"`
	BoltPath    string `mapstructure:"bolt_path" validate:"required_if=StoreDriver bolt"`

	APIPort int `mapstructure:"api_port" validate:"gte=1,lte=65535"`

	// Entries kept per type cache of the codec
	ResolverCacheSize int `mapstructure:"resolver_cache_size" validate:"gte=1"`
}

var defaults = map[string]any{
	"algod_url":           "http://localhost:4001",
	"algod_token":         strings.Repeat("a", 64),
	"spec_path":           "",
	"app_id":              0,
	"sender":              "",
	"sender_mnemonic":     "",
	"log_level":           "info",
	"log_format":          "console",
	"wait_rounds":         4,
	"store_driver":        "none",
	"database_url":        "",
	"bolt_path":           "arc56.db",
	"api_port":            8080,
	"resolver_cache_size": 256,
}

// New returns a viper instance with defaults set and ARC56_* environment variables bound.
// A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
		// Unmarshal only sees env values for keys viper knows about
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the configuration from v, merging configFile first when given
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// CanSign reports whether submissions can be signed
func (c *Config) CanSign() bool {
	return c.SenderMnemonic != ""
}
