package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ENuel20/SoNa/internal/version"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCommand(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errBuf strings.Builder
	r := NewRunnerWithStreams(strings.NewReader(""), &out, &errBuf)
	code = r.Run(args)
	return out.String(), errBuf.String(), code
}

func TestVersionCommand(t *testing.T) {
	stdout, _, code := runCommand(t, "version")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stdout) != version.Version {
		t.Fatalf("stdout = %q, want %q", stdout, version.Version)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	_, stderr, code := runCommand(t, "frobnicate")
	if code == 0 {
		t.Fatal("unknown command exited 0")
	}
	if !strings.Contains(stderr, "frobnicate") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestHistoryCommandEmptyStore(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	stdout, stderr, code := runCommand(t, "history", "--limit", "5")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "no transfers recorded") {
		t.Fatalf("stdout = %q", stdout)
	}
	if _, err := filepath.Glob(filepath.Join(dataDir, "sona", "*")); err != nil {
		t.Fatalf("glob data dir: %v", err)
	}
}

func TestHistoryCommandRejectsBadConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgDir)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfgPath := filepath.Join(cfgDir, "bad.yaml")
	writeFile(t, cfgPath, "commitment: eventual\n")

	_, stderr, code := runCommand(t, "history", "--config", cfgPath)
	if code == 0 {
		t.Fatal("bad commitment accepted")
	}
	if !strings.Contains(stderr, "commitment") {
		t.Fatalf("stderr = %q", stderr)
	}
}
