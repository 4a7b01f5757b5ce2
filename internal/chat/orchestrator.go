// Package chat sequences a conversation turn through classification and,
// for transfer commands, the full pipeline. It owns the visible transcript.
//
// Per user turn the orchestrator appends exactly one assistant message, plus
// one follow-up confirmation after a successful transfer. Stage failures
// collapse into a single domain-phrased message; raw internal errors never
// reach the transcript.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ENuel20/SoNa/internal/asset"
	"github.com/ENuel20/SoNa/internal/assist"
	"github.com/ENuel20/SoNa/internal/command"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/log"
	"github.com/ENuel20/SoNa/internal/market"
	"github.com/ENuel20/SoNa/internal/model"
	"github.com/ENuel20/SoNa/internal/retry"
	"github.com/ENuel20/SoNa/internal/signer"
	"github.com/ENuel20/SoNa/internal/transfer"
	"github.com/ENuel20/SoNa/internal/wallet"
)

// Orchestrator drives one chat session.
type Orchestrator struct {
	parser    *command.Parser
	assets    *asset.Registry
	validator *transfer.Validator
	builder   *transfer.Builder
	engine    *transfer.Engine
	store     *wallet.Store
	gateway   signer.Gateway
	assist    *assist.Client
	market    *market.Client

	buildRetry retry.Policy

	mu         sync.Mutex
	transcript []model.Message
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Assets    *asset.Registry
	Validator *transfer.Validator
	Builder   *transfer.Builder
	Engine    *transfer.Engine
	Store     *wallet.Store
	Gateway   signer.Gateway
	Assist    *assist.Client
	// Market is optional; without it wallet summaries carry no prices.
	Market *market.Client
}

func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		parser:     command.NewParser(d.Assets),
		assets:     d.Assets,
		validator:  d.Validator,
		builder:    d.Builder,
		engine:     d.Engine,
		store:      d.Store,
		gateway:    d.Gateway,
		assist:     d.Assist,
		market:     d.Market,
		buildRetry: retry.Once(),
	}
}

// HandleTurn processes one user message and returns the assistant messages
// appended this turn: always at least one, never more than two.
func (o *Orchestrator) HandleTurn(ctx context.Context, text string) []model.Message {
	o.append(model.Message{Role: model.RoleUser, Content: text})

	var replies []model.Message
	if intent, ok := o.parser.Parse(text); ok {
		log.Chat.Debug().Str("asset", intent.Asset).Str("amount", intent.Amount).Msg("transfer command recognized")
		replies = o.runTransfer(ctx, intent)
	} else {
		replies = o.classify(ctx)
	}

	for _, msg := range replies {
		o.append(msg)
	}
	return replies
}

// Transcript returns a copy of the visible conversation.
func (o *Orchestrator) Transcript() []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.Message, len(o.transcript))
	copy(out, o.transcript)
	return out
}

func (o *Orchestrator) append(msg model.Message) {
	o.mu.Lock()
	o.transcript = append(o.transcript, msg)
	o.mu.Unlock()
}

// classify routes a non-command message to the assistant service. A
// send_token action in the response is treated identically to a locally
// parsed intent.
func (o *Orchestrator) classify(ctx context.Context) []model.Message {
	history := o.Transcript()
	reply, err := o.assist.Classify(ctx, history, o.walletSummary(ctx))
	if err != nil {
		log.Chat.Warn().Err(err).Msg("classification failed")
		return []model.Message{assistantMsg("I apologize, but I ran into a problem answering that. Please try again.")}
	}

	if reply.Action != nil && reply.Action.Type == assist.ActionSendToken {
		intent, ok := o.intentFromAction(reply.Action)
		if ok {
			return o.runTransfer(ctx, intent)
		}
		log.Chat.Warn().Str("token", reply.Action.Token).Msg("unusable send_token action from assistant")
	}
	return []model.Message{{Role: model.RoleAssistant, Content: reply.Content}}
}

func (o *Orchestrator) intentFromAction(action *assist.Action) (command.Intent, bool) {
	a, ok := o.assets.Lookup(action.Token)
	if !ok {
		return command.Intent{}, false
	}
	amount := strings.TrimSpace(action.Amount.String())
	if _, err := asset.ToBaseUnits(amount, a.Decimals); err != nil {
		return command.Intent{}, false
	}
	recipient := strings.TrimSpace(action.Recipient)
	if recipient == "" {
		return command.Intent{}, false
	}
	return command.Intent{Asset: a.Symbol, Amount: amount, Recipient: recipient}, true
}

// runTransfer drives the pipeline for one intent and phrases the outcome.
func (o *Orchestrator) runTransfer(ctx context.Context, intent command.Intent) []model.Message {
	sender, connected := o.store.Identity()
	if !connected {
		if o.gateway == nil || !o.gateway.Available() {
			return []model.Message{assistantMsg("No wallet signer is available. Install a wallet to send tokens.")}
		}
		return []model.Message{assistantMsg("Connect your wallet first to send tokens.")}
	}

	req, err := o.validator.Validate(intent, o.store.Snapshot())
	if err != nil {
		return []model.Message{assistantMsg(failureMessage(err))}
	}

	// A stale blockhash is worth one rebuild; the whole build restarts,
	// never just the broadcast.
	err = o.buildRetry.Do(ctx, func(ctx context.Context) error {
		return o.builder.Build(ctx, &req, sender)
	})
	if err != nil {
		return []model.Message{assistantMsg(failureMessage(err))}
	}

	signed, err := o.gateway.SignTransaction(ctx, req.Unsigned)
	if err != nil {
		req.Stage = transfer.StageFailed
		return []model.Message{assistantMsg(failureMessage(err))}
	}
	req.Signed = signed
	req.Stage = transfer.StageSigned

	if err := o.engine.Submit(ctx, &req); err != nil {
		return []model.Message{assistantMsg(failureMessage(err))}
	}

	if err := o.engine.AwaitConfirmation(ctx, &req); err != nil {
		if apperr.Is(err, apperr.CodeTimeout) {
			return []model.Message{assistantMsg(fmt.Sprintf(
				"Transaction status unknown: confirmation timed out. Check the explorer for signature %s.",
				req.Signature))}
		}
		return []model.Message{assistantMsg(failureMessage(err))}
	}

	return []model.Message{
		assistantMsg(fmt.Sprintf("Sent %s %s to %s.", intent.Amount, intent.Asset, intent.Recipient)),
		assistantMsg(fmt.Sprintf("Transaction confirmed! Signature: %s", req.Signature)),
	}
}

// walletSummary builds the optional wallet context for classification.
// Prices are best-effort; a failed quote never blocks the conversation.
func (o *Orchestrator) walletSummary(ctx context.Context) *model.WalletSummary {
	snap := o.store.Snapshot()
	if !snap.Connected() {
		return nil
	}
	summary := &model.WalletSummary{Address: snap.Identity.String()}
	if lamports, ok := snap.NativeLamports(); ok {
		if a, found := o.assets.Lookup(asset.SymbolSOL); found {
			summary.SolBalance = asset.FromBaseUnits(lamports, a.Decimals)
		}
	}
	if base, ok := snap.FungibleBase(asset.SymbolSONIC); ok {
		if a, found := o.assets.Lookup(asset.SymbolSONIC); found {
			summary.SonicBalance = asset.FromBaseUnits(base, a.Decimals)
		}
	}
	if o.market != nil {
		if prices, err := o.market.Prices(ctx); err == nil {
			summary.SolPrice = prices.SolUSD
			summary.SonicPrice = prices.SonicUSD
		}
	}
	return summary
}

func assistantMsg(content string) model.Message {
	return model.Message{Role: model.RoleAssistant, Content: content}
}

// failureMessage phrases a pipeline failure in domain terms.
func failureMessage(err error) string {
	var insufficient *transfer.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return fmt.Sprintf("Insufficient %s balance. You have %s %s available.",
			insufficient.Asset, insufficient.Available, insufficient.Asset)
	}
	var invalidRecipient *transfer.InvalidRecipientError
	if errors.As(err, &invalidRecipient) {
		return "Invalid recipient address. Please provide a valid Solana address."
	}

	switch apperr.CodeOf(err) {
	case apperr.CodeRejected:
		return "Transaction cancelled: the signature request was declined."
	case apperr.CodeSigner:
		return "No wallet signer is available. Install a wallet to send tokens."
	case apperr.CodeUnavailable:
		return "The transaction could not be completed right now. Your balance is unchanged unless a transfer was already submitted."
	case apperr.CodeValidation:
		return "That transfer request could not be validated."
	default:
		return "Something went wrong with that transfer. Please try again."
	}
}
