// Package wallet owns the per-session wallet state: connected identity,
// native and token balances, and recent transfer history. All mutation goes
// through the Store; every other component reads snapshots.
package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/ENuel20/SoNa/internal/asset"
	"github.com/ENuel20/SoNa/internal/chain"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/log"
	"github.com/ENuel20/SoNa/internal/signer"
)

// Options tune the store's refresh loop and history ring.
type Options struct {
	// RefreshInterval is the period of the background refresh loop.
	RefreshInterval time.Duration
	// HistoryCapacity bounds the in-memory transaction ring.
	HistoryCapacity int
}

func DefaultOptions() Options {
	return Options{RefreshInterval: 30 * time.Second, HistoryCapacity: 10}
}

// Store is the single owner of wallet session state.
type Store struct {
	chain   chain.Client
	gateway signer.Gateway
	assets  *asset.Registry
	opts    Options

	mu        sync.Mutex
	identity  *solana.PublicKey
	native    *uint64
	fungible  map[string]uint64
	refreshed map[string]time.Time
	history   []TransactionRecord

	// inflight collapses concurrent refreshes into one network round trip.
	inflight    chan struct{}
	inflightErr error

	loopCancel context.CancelFunc
	loopDone   chan struct{}

	subs *hub
	now  func() time.Time
}

func NewStore(chainClient chain.Client, gateway signer.Gateway, assets *asset.Registry, opts Options) *Store {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultOptions().RefreshInterval
	}
	if opts.HistoryCapacity <= 0 {
		opts.HistoryCapacity = DefaultOptions().HistoryCapacity
	}
	return &Store{
		chain:     chainClient,
		gateway:   gateway,
		assets:    assets,
		opts:      opts,
		fungible:  make(map[string]uint64),
		refreshed: make(map[string]time.Time),
		subs:      newHub(),
		now:       time.Now,
	}
}

// Connect establishes identity through the signer gateway, seeds balances
// with an immediate refresh, and starts the periodic refresh loop.
func (s *Store) Connect(ctx context.Context) (solana.PublicKey, error) {
	if s.gateway == nil || !s.gateway.Available() {
		return solana.PublicKey{}, signer.ErrUnavailable()
	}

	s.mu.Lock()
	if s.identity != nil {
		id := *s.identity
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	id, err := s.gateway.Connect(ctx)
	if err != nil {
		return solana.PublicKey{}, err
	}

	s.mu.Lock()
	s.identity = &id
	loopCtx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	s.loopDone = make(chan struct{})
	go s.refreshLoop(loopCtx, s.loopDone)
	s.mu.Unlock()

	s.subs.publish(TopicSession)
	log.Wallet.Info().Str("identity", id.String()).Msg("wallet connected")

	if err := s.Refresh(ctx); err != nil {
		// Connection stands; balances stay unset until the loop catches up.
		log.Wallet.Warn().Err(err).Msg("initial balance refresh failed")
	}
	return id, nil
}

// Disconnect clears identity, balances and history and stops the refresh
// loop. Calling it repeatedly leaves the session in the same cleared state.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	wasConnected := s.identity != nil
	cancel := s.loopCancel
	done := s.loopDone
	s.loopCancel = nil
	s.loopDone = nil
	s.identity = nil
	s.native = nil
	s.fungible = make(map[string]uint64)
	s.refreshed = make(map[string]time.Time)
	s.history = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if !wasConnected {
		return nil
	}
	if s.gateway != nil {
		if err := s.gateway.Disconnect(ctx); err != nil {
			return err
		}
	}
	s.subs.publish(TopicSession)
	log.Wallet.Info().Msg("wallet disconnected")
	return nil
}

// Connected reports whether a session identity is established.
func (s *Store) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// Identity returns the connected public key.
func (s *Store) Identity() (solana.PublicKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return solana.PublicKey{}, false
	}
	return *s.identity, true
}

// Refresh re-queries balances from the chain. Concurrent calls collapse to
// the in-flight refresh and share its result. Transient failures leave
// previously cached values in place: stale-but-present beats null.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return apperr.New(apperr.CodeUsage, "wallet is not connected")
	}
	if s.inflight != nil {
		done := s.inflight
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return apperr.Wrap(apperr.CodeUnavailable, "refresh cancelled", ctx.Err())
		}
		s.mu.Lock()
		err := s.inflightErr
		s.mu.Unlock()
		return err
	}
	done := make(chan struct{})
	s.inflight = done
	owner := *s.identity
	s.mu.Unlock()

	err := s.fetchBalances(ctx, owner)

	s.mu.Lock()
	s.inflightErr = err
	s.inflight = nil
	s.mu.Unlock()
	close(done)

	if err == nil {
		s.subs.publish(TopicBalance)
	}
	return err
}

// fetchBalances queries every whitelisted asset and writes back whatever
// succeeded. The first failure is returned but never clears cached values.
func (s *Store) fetchBalances(ctx context.Context, owner solana.PublicKey) error {
	var firstErr error
	for _, symbol := range s.assets.Symbols() {
		a, _ := s.assets.Lookup(symbol)
		var (
			balance uint64
			err     error
		)
		if a.Native {
			balance, err = s.chain.Balance(ctx, owner)
		} else {
			balance, err = s.fetchTokenBalance(ctx, owner, a)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.storeBalance(owner, a, balance)
	}
	return firstErr
}

func (s *Store) fetchTokenBalance(ctx context.Context, owner solana.PublicKey, a asset.Asset) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, a.Mint)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "derive token account", err)
	}
	exists, err := s.chain.AccountExists(ctx, ata)
	if err != nil {
		return 0, err
	}
	if !exists {
		// No token account yet means a zero balance, not an error.
		return 0, nil
	}
	balance, _, err := s.chain.TokenAccountBalance(ctx, ata)
	return balance, err
}

func (s *Store) storeBalance(owner solana.PublicKey, a asset.Asset, balance uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have disconnected or switched identity mid-fetch.
	if s.identity == nil || !s.identity.Equals(owner) {
		return
	}
	if a.Native {
		v := balance
		s.native = &v
	} else {
		s.fungible[a.Symbol] = balance
	}
	s.refreshed[a.Symbol] = s.now()
}

// Record appends a transfer record at the head of the bounded history ring.
func (s *Store) Record(rec TransactionRecord) {
	s.mu.Lock()
	s.history = append([]TransactionRecord{rec}, s.history...)
	if len(s.history) > s.opts.HistoryCapacity {
		s.history = s.history[:s.opts.HistoryCapacity]
	}
	s.mu.Unlock()
	s.subs.publish(TopicHistory)
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		FungibleBalances: make(map[string]uint64, len(s.fungible)),
		Refreshed:        make(map[string]time.Time, len(s.refreshed)),
		History:          make([]TransactionRecord, len(s.history)),
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.native != nil {
		v := *s.native
		snap.NativeBalance = &v
	}
	for k, v := range s.fungible {
		snap.FungibleBalances[k] = v
	}
	for k, v := range s.refreshed {
		snap.Refreshed[k] = v
	}
	copy(snap.History, s.history)
	return snap
}

// Subscribe returns a cancellable handle signalled on every publication of
// topic. Cancelling closes the handle's channel.
func (s *Store) Subscribe(topic string) *Subscription {
	return s.subs.subscribe(topic)
}

func (s *Store) refreshLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Wallet.Debug().Err(err).Msg("periodic refresh failed")
			}
			s.syncHistory(ctx)
		}
	}
}

// syncHistory resolves submitted-but-unresolved records against the chain's
// recent signature list. Terminal records are never touched.
func (s *Store) syncHistory(ctx context.Context) {
	owner, ok := s.Identity()
	if !ok {
		return
	}
	s.mu.Lock()
	pending := 0
	for _, rec := range s.history {
		if rec.State == StateSubmitted {
			pending++
		}
	}
	s.mu.Unlock()
	if pending == 0 {
		return
	}

	infos, err := s.chain.RecentSignatures(ctx, owner, s.opts.HistoryCapacity)
	if err != nil {
		log.Wallet.Debug().Err(err).Msg("history sync failed")
		return
	}
	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		seen[info.Signature.String()] = info.Failed
	}

	changed := false
	s.mu.Lock()
	for i := range s.history {
		rec := &s.history[i]
		if rec.State != StateSubmitted {
			continue
		}
		failed, present := seen[rec.Signature]
		if !present {
			continue
		}
		if failed {
			rec.State = StateFailed
		} else {
			rec.State = StateConfirmed
		}
		changed = true
	}
	s.mu.Unlock()
	if changed {
		s.subs.publish(TopicHistory)
	}
}
