package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalFlags are the raw persistent flag values before merging.
type GlobalFlags struct {
	ConfigPath     string
	RPCEndpoint    string
	AssistEndpoint string
	LogLevel       string
	JSONLogs       bool
	NoMarket       bool
}

// Settings is the merged runtime configuration: defaults, then file, then
// environment, then flags.
type Settings struct {
	RPCEndpoint string
	Commitment  string
	SonicMint   string

	RefreshInterval time.Duration
	HistoryCapacity int
	PollInterval    time.Duration
	ConfirmTimeout  time.Duration

	HTTPTimeout time.Duration
	HTTPRetries int

	AssistEndpoint string
	AssistAPIKey   string
	MarketEnabled  bool

	HistoryPath     string
	HistoryLockPath string

	LogLevel string
	JSONLogs bool
}

type fileConfig struct {
	RPCEndpoint string `yaml:"rpc_endpoint"`
	Commitment  string `yaml:"commitment"`
	SonicMint   string `yaml:"sonic_mint"`
	Wallet      struct {
		RefreshInterval string `yaml:"refresh_interval"`
		HistoryCapacity *int   `yaml:"history_capacity"`
	} `yaml:"wallet"`
	Confirmation struct {
		PollInterval string `yaml:"poll_interval"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"confirmation"`
	Assist struct {
		Endpoint  string `yaml:"endpoint"`
		APIKey    string `yaml:"api_key"`
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"assist"`
	Market struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"market"`
	History struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"history"`
	HTTP struct {
		Timeout string `yaml:"timeout"`
		Retries *int   `yaml:"retries"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		JSON  *bool  `yaml:"json"`
	} `yaml:"log"`
}

// Load merges settings from defaults, the config file, the environment and
// the command-line flags, in that order of increasing precedence.
func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)
	applyFlags(flags, &settings)

	if settings.RPCEndpoint == "" {
		return Settings{}, errors.New("rpc endpoint must not be empty")
	}
	switch settings.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return Settings{}, fmt.Errorf("unsupported commitment %q", settings.Commitment)
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		RPCEndpoint:     "https://api.testnet.v1.sonic.game",
		Commitment:      "confirmed",
		SonicMint:       "7rh23QToLTBmYxR5jDiRbUtqcGey4xjDeU9JmtX6QChe",
		RefreshInterval: 30 * time.Second,
		HistoryCapacity: 10,
		PollInterval:    2 * time.Second,
		ConfirmTimeout:  90 * time.Second,
		HTTPTimeout:     30 * time.Second,
		HTTPRetries:     2,
		MarketEnabled:   true,
		HistoryPath:     filepath.Join(dataDir, "history.db"),
		HistoryLockPath: filepath.Join(dataDir, "history.lock"),
		LogLevel:        "info",
	}, nil
}

func resolveConfigPath(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "sona", "config.yaml"), nil
}

func resolveDataDir() (string, error) {
	base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "sona"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&settings.RPCEndpoint, cfg.RPCEndpoint)
	setString(&settings.Commitment, cfg.Commitment)
	setString(&settings.SonicMint, cfg.SonicMint)
	if err := setDuration(&settings.RefreshInterval, cfg.Wallet.RefreshInterval, "wallet.refresh_interval"); err != nil {
		return err
	}
	if cfg.Wallet.HistoryCapacity != nil && *cfg.Wallet.HistoryCapacity > 0 {
		settings.HistoryCapacity = *cfg.Wallet.HistoryCapacity
	}
	if err := setDuration(&settings.PollInterval, cfg.Confirmation.PollInterval, "confirmation.poll_interval"); err != nil {
		return err
	}
	if err := setDuration(&settings.ConfirmTimeout, cfg.Confirmation.Timeout, "confirmation.timeout"); err != nil {
		return err
	}
	setString(&settings.AssistEndpoint, cfg.Assist.Endpoint)
	setString(&settings.AssistAPIKey, cfg.Assist.APIKey)
	if envName := strings.TrimSpace(cfg.Assist.APIKeyEnv); envName != "" {
		setString(&settings.AssistAPIKey, os.Getenv(envName))
	}
	if cfg.Market.Enabled != nil {
		settings.MarketEnabled = *cfg.Market.Enabled
	}
	setString(&settings.HistoryPath, cfg.History.Path)
	setString(&settings.HistoryLockPath, cfg.History.LockPath)
	if err := setDuration(&settings.HTTPTimeout, cfg.HTTP.Timeout, "http.timeout"); err != nil {
		return err
	}
	if cfg.HTTP.Retries != nil && *cfg.HTTP.Retries >= 0 {
		settings.HTTPRetries = *cfg.HTTP.Retries
	}
	setString(&settings.LogLevel, cfg.Log.Level)
	if cfg.Log.JSON != nil {
		settings.JSONLogs = *cfg.Log.JSON
	}
	return nil
}

func applyEnv(settings *Settings) {
	setString(&settings.RPCEndpoint, os.Getenv("SONA_RPC_ENDPOINT"))
	setString(&settings.Commitment, os.Getenv("SONA_COMMITMENT"))
	setString(&settings.SonicMint, os.Getenv("SONA_SONIC_MINT"))
	setString(&settings.AssistEndpoint, os.Getenv("SONA_ASSIST_ENDPOINT"))
	setString(&settings.AssistAPIKey, os.Getenv("SONA_ASSIST_API_KEY"))
	setString(&settings.LogLevel, os.Getenv("SONA_LOG_LEVEL"))
}

func applyFlags(flags GlobalFlags, settings *Settings) {
	setString(&settings.RPCEndpoint, flags.RPCEndpoint)
	setString(&settings.AssistEndpoint, flags.AssistEndpoint)
	setString(&settings.LogLevel, flags.LogLevel)
	if flags.JSONLogs {
		settings.JSONLogs = true
	}
	if flags.NoMarket {
		settings.MarketEnabled = false
	}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setDuration(dst *time.Duration, v, field string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	*dst = d
	return nil
}
