package signer

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

func unsignedTransfer(t *testing.T, from solana.PublicKey) *solana.Transaction {
	t.Helper()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1_000, from, solana.NewWallet().PublicKey()).Build(),
		},
		solana.Hash{0x01},
		solana.TransactionPayer(from),
	)
	if err != nil {
		t.Fatalf("build transaction: %v", err)
	}
	return tx
}

func TestLocalSignsAfterConnect(t *testing.T) {
	w := solana.NewWallet()
	local := NewLocal(w.PrivateKey)
	if !local.Available() {
		t.Fatal("signer with key reports unavailable")
	}

	id, err := local.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !id.Equals(w.PublicKey()) {
		t.Fatalf("identity = %s, want %s", id, w.PublicKey())
	}

	signed, err := local.SignTransaction(context.Background(), unsignedTransfer(t, id))
	if err != nil {
		t.Fatalf("SignTransaction failed: %v", err)
	}
	if len(signed.Signatures) != 1 || signed.Signatures[0].IsZero() {
		t.Fatalf("signatures = %+v", signed.Signatures)
	}
	if err := signed.VerifySignatures(); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestLocalRequiresConnection(t *testing.T) {
	w := solana.NewWallet()
	local := NewLocal(w.PrivateKey)
	_, err := local.SignTransaction(context.Background(), unsignedTransfer(t, w.PublicKey()))
	if !apperr.Is(err, apperr.CodeSigner) {
		t.Fatalf("expected signer error, got %v", err)
	}
}

func TestLocalDisconnectEndsSession(t *testing.T) {
	w := solana.NewWallet()
	local := NewLocal(w.PrivateKey)
	if _, err := local.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := local.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if _, err := local.SignTransaction(context.Background(), unsignedTransfer(t, w.PublicKey())); err == nil {
		t.Fatal("signing allowed after disconnect")
	}
}

func TestNewLocalFromEnvParsesKey(t *testing.T) {
	w := solana.NewWallet()
	t.Setenv(EnvPrivateKey, w.PrivateKey.String())
	t.Setenv(EnvPrivateKeyFile, "")

	local, err := NewLocalFromEnv()
	if err != nil {
		t.Fatalf("NewLocalFromEnv failed: %v", err)
	}
	if local == nil || !local.Available() {
		t.Fatal("signer not built from environment key")
	}
	id, err := local.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !id.Equals(w.PublicKey()) {
		t.Fatalf("identity = %s, want %s", id, w.PublicKey())
	}
}

func TestNewLocalFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv(EnvPrivateKey, "not-a-key")
	if _, err := NewLocalFromEnv(); !apperr.Is(err, apperr.CodeSigner) {
		t.Fatalf("expected signer error, got %v", err)
	}
}

func TestNewLocalFromEnvAbsentKeyIsNotAnError(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	t.Setenv(EnvPrivateKeyFile, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	local, err := NewLocalFromEnv()
	if err != nil {
		t.Fatalf("NewLocalFromEnv failed: %v", err)
	}
	if local != nil {
		t.Fatal("expected no signer when no key material is present")
	}
}
