package signer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

const (
	EnvPrivateKey     = "SONA_PRIVATE_KEY"
	EnvPrivateKeyFile = "SONA_PRIVATE_KEY_FILE"

	defaultKeyRelativePath = "sona/key.json"
)

// Local is an in-process Gateway that signs with a key loaded from the
// environment or a solana-keygen file. It stands in for a browser-injected
// wallet in headless deployments; the pipeline cannot tell the difference.
type Local struct {
	key       solana.PrivateKey
	connected bool
}

// NewLocalFromEnv builds a Local signer if key material is present. A nil
// gateway with no error means no signer is installed.
func NewLocalFromEnv() (*Local, error) {
	if raw := strings.TrimSpace(os.Getenv(EnvPrivateKey)); raw != "" {
		key, err := solana.PrivateKeyFromBase58(raw)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeSigner, "parse private key", err)
		}
		return &Local{key: key}, nil
	}

	path := strings.TrimSpace(os.Getenv(EnvPrivateKeyFile))
	if path == "" {
		path = discoverDefaultKeyFile()
	}
	if path == "" {
		return nil, nil
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeSigner, "read keygen file", err)
	}
	return &Local{key: key}, nil
}

// NewLocal wraps an explicit key, used by tests.
func NewLocal(key solana.PrivateKey) *Local {
	return &Local{key: key}
}

func (l *Local) Available() bool {
	return l != nil && len(l.key) > 0
}

func (l *Local) Connect(ctx context.Context) (solana.PublicKey, error) {
	if !l.Available() {
		return solana.PublicKey{}, ErrUnavailable()
	}
	l.connected = true
	return l.key.PublicKey(), nil
}

func (l *Local) Disconnect(ctx context.Context) error {
	if l != nil {
		l.connected = false
	}
	return nil
}

func (l *Local) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if !l.Available() {
		return nil, ErrUnavailable()
	}
	if !l.connected {
		return nil, apperr.New(apperr.CodeSigner, "signer is not connected")
	}
	pub := l.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &l.key
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeSigner, "sign transaction", err)
	}
	return tx, nil
}

func discoverDefaultKeyFile() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	path := filepath.Join(base, defaultKeyRelativePath)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

var _ Gateway = (*Local)(nil)
