package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ENuel20/SoNa/internal/asset"
	"github.com/ENuel20/SoNa/internal/assist"
	"github.com/ENuel20/SoNa/internal/chat"
	"github.com/ENuel20/SoNa/internal/config"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/history"
	"github.com/ENuel20/SoNa/internal/httpx"
	"github.com/ENuel20/SoNa/internal/log"
	"github.com/ENuel20/SoNa/internal/market"
	"github.com/ENuel20/SoNa/internal/model"
	"github.com/ENuel20/SoNa/internal/signer"
	"github.com/ENuel20/SoNa/internal/transfer"
	"github.com/ENuel20/SoNa/internal/wallet"

	sonachain "github.com/ENuel20/SoNa/internal/chain"
)

func (r *Runner) newChatCommand(flags *config.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session with the wallet assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := r.loadSettings(flags)
			if err != nil {
				return err
			}
			return r.runChat(cmd.Context(), settings)
		},
	}
}

func (r *Runner) runChat(ctx context.Context, settings config.Settings) error {
	assets, err := asset.RegistryWithMint(settings.SonicMint)
	if err != nil {
		return err
	}

	gateway, err := signer.NewLocalFromEnv()
	if err != nil {
		return err
	}

	chainClient := sonachain.NewSolanaClient(settings.RPCEndpoint, settings.Commitment)
	store := wallet.NewStore(chainClient, gatewayOrNil(gateway), assets, wallet.Options{
		RefreshInterval: settings.RefreshInterval,
		HistoryCapacity: settings.HistoryCapacity,
	})

	records, err := history.Open(settings.HistoryPath, settings.HistoryLockPath)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "open history store", err)
	}
	defer func() { _ = records.Close() }()

	engine := transfer.NewEngine(chainClient, store, transfer.EngineOptions{
		PollInterval: settings.PollInterval,
		Timeout:      settings.ConfirmTimeout,
	}).WithSink(records)

	httpClient := httpx.New(settings.HTTPTimeout, settings.HTTPRetries)
	var marketClient *market.Client
	if settings.MarketEnabled {
		marketClient = market.New(httpClient)
	}

	orchestrator := chat.NewOrchestrator(chat.Deps{
		Assets:    assets,
		Validator: transfer.NewValidator(assets),
		Builder:   transfer.NewBuilder(chainClient),
		Engine:    engine,
		Store:     store,
		Gateway:   gatewayOrNil(gateway),
		Assist:    assist.New(httpClient, settings.AssistEndpoint, settings.AssistAPIKey),
		Market:    marketClient,
	})

	r.greet(ctx, store, gateway)
	defer func() {
		if err := store.Disconnect(context.Background()); err != nil {
			log.Wallet.Warn().Err(err).Msg("disconnect failed on exit")
		}
	}()

	scanner := bufio.NewScanner(r.stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for {
		fmt.Fprint(r.stdout, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.stdout)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			return nil
		}
		for _, msg := range orchestrator.HandleTurn(ctx, text) {
			printMessage(r.stdout, msg)
		}
	}
}

// greet connects the wallet when a signer is present and prints the session
// preamble. A missing signer is a handled condition: chat still works, and
// transfer commands explain what is missing.
func (r *Runner) greet(ctx context.Context, store *wallet.Store, gateway *signer.Local) {
	fmt.Fprintln(r.stdout, "sona — chat wallet for the Sonic SVM. Type /quit to leave.")
	if gateway == nil || !gateway.Available() {
		fmt.Fprintln(r.stdout, "No wallet signer detected; transfers are disabled until one is installed.")
		return
	}
	identity, err := store.Connect(ctx)
	if err != nil {
		log.Wallet.Warn().Err(err).Msg("wallet connect failed")
		fmt.Fprintln(r.stdout, "Wallet connection failed; transfers are disabled for this session.")
		return
	}
	fmt.Fprintf(r.stdout, "Connected wallet %s\n", identity)
}

// gatewayOrNil prevents a typed-nil *Local from masquerading as a present
// Gateway behind the interface.
func gatewayOrNil(g *signer.Local) signer.Gateway {
	if g == nil {
		return nil
	}
	return g
}

func printMessage(w io.Writer, msg model.Message) {
	fmt.Fprintf(w, "sona> %s\n", msg.Content)
}
