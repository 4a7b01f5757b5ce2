package chain

import (
	"context"
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/log"
)

// SolanaClient implements Client against a Solana-family JSON-RPC endpoint.
type SolanaClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// NewSolanaClient dials endpoint with the given commitment level
// ("processed", "confirmed" or "finalized").
func NewSolanaClient(endpoint, commitment string) *SolanaClient {
	c := rpc.CommitmentConfirmed
	switch commitment {
	case "processed":
		c = rpc.CommitmentProcessed
	case "finalized":
		c = rpc.CommitmentFinalized
	}
	return &SolanaClient{rpc: rpc.New(endpoint), commitment: c}
}

func (c *SolanaClient) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	res, err := c.rpc.GetBalance(ctx, addr, c.commitment)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeUnavailable, "fetch native balance", err)
	}
	return res.Value, nil
}

func (c *SolanaClient) TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, uint8, error) {
	res, err := c.rpc.GetTokenAccountBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.CodeUnavailable, "fetch token balance", err)
	}
	if res.Value == nil {
		return 0, 0, apperr.New(apperr.CodeUnavailable, "empty token balance response")
	}
	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.CodeUnavailable, "parse token balance", err)
	}
	return amount, res.Value.Decimals, nil
}

func (c *SolanaClient) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	res, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, apperr.Wrap(apperr.CodeUnavailable, "fetch account info", err)
	}
	return res != nil && res.Value != nil, nil
}

func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, apperr.Wrap(apperr.CodeUnavailable, "fetch recent blockhash", err)
	}
	return res.Value.Blockhash, nil
}

func (c *SolanaClient) SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, apperr.Wrap(apperr.CodeUnavailable, "broadcast transaction", err)
	}
	log.Chain.Debug().Str("signature", sig.String()).Msg("transaction submitted")
	return sig, nil
}

func (c *SolanaClient) SignatureStatus(ctx context.Context, sig solana.Signature) (Status, error) {
	res, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return StatusUnknown, apperr.Wrap(apperr.CodeUnavailable, "fetch signature status", err)
	}
	if res == nil || len(res.Value) == 0 || res.Value[0] == nil {
		return StatusUnknown, nil
	}
	st := res.Value[0]
	if st.Err != nil {
		return StatusFailed, nil
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusProcessed:
		return StatusProcessed, nil
	case rpc.ConfirmationStatusConfirmed:
		return StatusConfirmed, nil
	case rpc.ConfirmationStatusFinalized:
		return StatusFinalized, nil
	default:
		return StatusUnknown, nil
	}
}

func (c *SolanaClient) RecentSignatures(ctx context.Context, addr solana.PublicKey, limit int) ([]SignatureInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	res, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, addr, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "fetch signatures for address", err)
	}
	out := make([]SignatureInfo, 0, len(res))
	for _, entry := range res {
		if entry == nil {
			continue
		}
		info := SignatureInfo{
			Signature: entry.Signature,
			Slot:      entry.Slot,
			Failed:    entry.Err != nil,
		}
		if entry.BlockTime != nil {
			info.BlockTime = entry.BlockTime.Time()
		}
		out = append(out, info)
	}
	return out, nil
}

var _ Client = (*SolanaClient)(nil)
