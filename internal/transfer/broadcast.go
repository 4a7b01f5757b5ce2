package transfer

import (
	"context"
	"time"

	"github.com/ENuel20/SoNa/internal/asset"
	"github.com/ENuel20/SoNa/internal/chain"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/log"
	"github.com/ENuel20/SoNa/internal/wallet"
)

// EngineOptions tune the confirmation poll.
type EngineOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
	// Level is the commitment the poll waits for.
	Level chain.Status
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		PollInterval: 2 * time.Second,
		Timeout:      90 * time.Second,
		Level:        chain.StatusConfirmed,
	}
}

// RecordSink receives a durable copy of every record the engine appends to
// the session ring. The history store implements it.
type RecordSink interface {
	Save(rec wallet.TransactionRecord) error
}

// Engine submits signed transactions and observes them to a terminal
// commitment level. Submission failures are not resubmitted: a transaction
// with a stale blockhash risks double-spend ambiguity, so retries restart
// from the builder instead.
type Engine struct {
	chain chain.Client
	store *wallet.Store
	sink  RecordSink
	opts  EngineOptions
	now   func() time.Time
}

func NewEngine(chainClient chain.Client, store *wallet.Store, opts EngineOptions) *Engine {
	def := DefaultEngineOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Level == "" {
		opts.Level = def.Level
	}
	return &Engine{chain: chainClient, store: store, opts: opts, now: time.Now}
}

// WithSink attaches a durable record sink. Sink failures are logged, never
// surfaced: persistence is best-effort alongside the authoritative chain.
func (e *Engine) WithSink(sink RecordSink) *Engine {
	e.sink = sink
	return e
}

// Submit broadcasts req.Signed and advances the request to StageSubmitted.
// Any failure is terminal for this request.
func (e *Engine) Submit(ctx context.Context, req *Request) error {
	if req.Stage != StageSigned || req.Signed == nil {
		req.Stage = StageFailed
		return apperr.New(apperr.CodeInternal, "submit called before signing")
	}
	sig, err := e.chain.SubmitTransaction(ctx, req.Signed)
	if err != nil {
		req.Stage = StageFailed
		return err
	}
	req.Signature = sig
	req.Stage = StageSubmitted
	log.Chain.Info().
		Str("signature", sig.String()).
		Str("asset", req.Asset.Symbol).
		Str("amount", req.Intent.Amount).
		Msg("transfer submitted")
	return nil
}

// AwaitConfirmation polls the signature's status until it reaches the
// configured commitment level, fails on chain, or the timeout elapses.
//
// On confirmation the engine refreshes the wallet store and appends a
// confirmed record. On timeout the outcome is ambiguous: the request expires
// with a submitted (non-terminal) record that a later history sync may
// resolve, and the caller reports "status unknown" rather than failure.
func (e *Engine) AwaitConfirmation(ctx context.Context, req *Request) error {
	if req.Stage != StageSubmitted {
		return apperr.New(apperr.CodeInternal, "confirmation awaited before submission")
	}

	waitCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		status, err := e.chain.SignatureStatus(waitCtx, req.Signature)
		if err == nil {
			switch {
			case status == chain.StatusFailed:
				req.Stage = StageFailed
				e.record(req, wallet.StateFailed)
				return apperr.New(apperr.CodeUnavailable, "transaction failed on-chain")
			case status.Reached(e.opts.Level):
				req.Stage = StageConfirmed
				if refreshErr := e.store.Refresh(ctx); refreshErr != nil {
					log.Chain.Warn().Err(refreshErr).Msg("post-confirmation refresh failed")
				}
				e.record(req, wallet.StateConfirmed)
				log.Chain.Info().Str("signature", req.Signature.String()).Msg("transfer confirmed")
				return nil
			}
		}
		// Transient polling failures are ignored until the deadline.

		select {
		case <-waitCtx.Done():
			req.Stage = StageExpired
			e.record(req, wallet.StateSubmitted)
			return apperr.Wrap(apperr.CodeTimeout, "confirmation window elapsed", waitCtx.Err())
		case <-ticker.C:
		}
	}
}

func (e *Engine) record(req *Request, state wallet.ConfirmationState) {
	rec := wallet.TransactionRecord{
		Signature: req.Signature.String(),
		Asset:     req.Asset.Symbol,
		Amount:    asset.FromBaseUnits(req.Amount, req.Asset.Decimals),
		Direction: wallet.DirectionOut,
		Timestamp: e.now(),
		State:     state,
	}
	e.store.Record(rec)
	if e.sink != nil {
		if err := e.sink.Save(rec); err != nil {
			log.Chain.Warn().Err(err).Str("signature", rec.Signature).Msg("persist transfer record failed")
		}
	}
}
