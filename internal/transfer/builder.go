package transfer

import (
	"context"

	"github.com/gagliardetto/solana-go"
	ata "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/ENuel20/SoNa/internal/chain"
	apperr "github.com/ENuel20/SoNa/internal/errors"
)

// Builder turns a validated request into an unsigned chain transaction.
//
// Native transfers are a single system-program instruction. Token transfers
// move between both parties' associated token accounts; when the recipient's
// account does not exist yet, its creation is bundled into the same
// transaction as a prerequisite instruction.
type Builder struct {
	chain chain.Client
}

func NewBuilder(chainClient chain.Client) *Builder {
	return &Builder{chain: chainClient}
}

// Build populates req.Unsigned and advances the request to StageBuilt. The
// transaction carries a freshly fetched blockhash and designates the sender
// as fee payer. Failures are transient (CodeUnavailable) and worth exactly
// one caller-side retry, since blockhashes expire quickly.
func (b *Builder) Build(ctx context.Context, req *Request, sender solana.PublicKey) error {
	var instructions []solana.Instruction
	if req.Asset.Native {
		instructions = append(instructions,
			system.NewTransferInstruction(req.Amount, sender, req.Recipient).Build())
	} else {
		tokenInstrs, err := b.tokenInstructions(ctx, req, sender)
		if err != nil {
			return err
		}
		instructions = tokenInstrs
	}

	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(sender))
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "assemble transaction", err)
	}
	req.Sender = sender
	req.Unsigned = tx
	req.Stage = StageBuilt
	return nil
}

func (b *Builder) tokenInstructions(ctx context.Context, req *Request, sender solana.PublicKey) ([]solana.Instruction, error) {
	senderAccount, _, err := solana.FindAssociatedTokenAddress(sender, req.Asset.Mint)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "derive sender token account", err)
	}
	recipientAccount, _, err := solana.FindAssociatedTokenAddress(req.Recipient, req.Asset.Mint)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "derive recipient token account", err)
	}

	var instructions []solana.Instruction
	exists, err := b.chain.AccountExists(ctx, recipientAccount)
	if err != nil {
		return nil, err
	}
	if !exists {
		instructions = append(instructions,
			ata.NewCreateInstruction(sender, req.Recipient, req.Asset.Mint).Build())
	}
	instructions = append(instructions,
		token.NewTransferInstruction(req.Amount, senderAccount, recipientAccount, sender, nil).Build())
	return instructions, nil
}
