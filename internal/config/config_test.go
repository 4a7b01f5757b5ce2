package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(GlobalFlags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.RPCEndpoint != "https://api.testnet.v1.sonic.game" {
		t.Fatalf("rpc endpoint = %q", settings.RPCEndpoint)
	}
	if settings.Commitment != "confirmed" {
		t.Fatalf("commitment = %q", settings.Commitment)
	}
	if settings.RefreshInterval != 30*time.Second {
		t.Fatalf("refresh interval = %v", settings.RefreshInterval)
	}
	if settings.HistoryCapacity != 10 {
		t.Fatalf("history capacity = %d", settings.HistoryCapacity)
	}
	if settings.ConfirmTimeout != 90*time.Second {
		t.Fatalf("confirm timeout = %v", settings.ConfirmTimeout)
	}
	if !settings.MarketEnabled {
		t.Fatal("market disabled by default")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
rpc_endpoint: https://rpc.example.test
commitment: finalized
wallet:
  refresh_interval: 10s
  history_capacity: 25
confirmation:
  poll_interval: 500ms
  timeout: 2m
assist:
  endpoint: https://assist.example.test
market:
  enabled: false
log:
  level: debug
`)
	settings, err := Load(GlobalFlags{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.RPCEndpoint != "https://rpc.example.test" {
		t.Fatalf("rpc endpoint = %q", settings.RPCEndpoint)
	}
	if settings.Commitment != "finalized" {
		t.Fatalf("commitment = %q", settings.Commitment)
	}
	if settings.RefreshInterval != 10*time.Second || settings.HistoryCapacity != 25 {
		t.Fatalf("wallet settings = %v, %d", settings.RefreshInterval, settings.HistoryCapacity)
	}
	if settings.PollInterval != 500*time.Millisecond || settings.ConfirmTimeout != 2*time.Minute {
		t.Fatalf("confirmation settings = %v, %v", settings.PollInterval, settings.ConfirmTimeout)
	}
	if settings.AssistEndpoint != "https://assist.example.test" {
		t.Fatalf("assist endpoint = %q", settings.AssistEndpoint)
	}
	if settings.MarketEnabled {
		t.Fatal("market not disabled by file")
	}
	if settings.LogLevel != "debug" {
		t.Fatalf("log level = %q", settings.LogLevel)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "rpc_endpoint: https://file.example.test\n")
	t.Setenv("SONA_RPC_ENDPOINT", "https://env.example.test")
	t.Setenv("SONA_LOG_LEVEL", "warn")

	settings, err := Load(GlobalFlags{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.RPCEndpoint != "https://env.example.test" {
		t.Fatalf("rpc endpoint = %q", settings.RPCEndpoint)
	}
	if settings.LogLevel != "warn" {
		t.Fatalf("log level = %q", settings.LogLevel)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SONA_RPC_ENDPOINT", "https://env.example.test")
	settings, err := Load(GlobalFlags{
		ConfigPath:  filepath.Join(t.TempDir(), "missing.yaml"),
		RPCEndpoint: "https://flag.example.test",
		LogLevel:    "debug",
		JSONLogs:    true,
		NoMarket:    true,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.RPCEndpoint != "https://flag.example.test" {
		t.Fatalf("rpc endpoint = %q", settings.RPCEndpoint)
	}
	if !settings.JSONLogs {
		t.Fatal("json logs flag ignored")
	}
	if settings.MarketEnabled {
		t.Fatal("no-market flag ignored")
	}
}

func TestLoadAPIKeyFromNamedEnv(t *testing.T) {
	path := writeConfig(t, "assist:\n  api_key_env: TEST_ASSIST_KEY\n")
	t.Setenv("TEST_ASSIST_KEY", "from-env")

	settings, err := Load(GlobalFlags{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.AssistAPIKey != "from-env" {
		t.Fatalf("api key = %q", settings.AssistAPIKey)
	}
}

func TestLoadRejectsBadCommitment(t *testing.T) {
	path := writeConfig(t, "commitment: eventual\n")
	if _, err := Load(GlobalFlags{ConfigPath: path}); err == nil {
		t.Fatal("expected error for unsupported commitment")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "wallet:\n  refresh_interval: soon\n")
	if _, err := Load(GlobalFlags{ConfigPath: path}); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
