// Package app wires configuration, the wallet store, the transfer pipeline
// and the chat orchestrator into the sona command tree.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ENuel20/SoNa/internal/config"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/log"
	"github.com/ENuel20/SoNa/internal/version"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

func NewRunnerWithStreams(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	return &Runner{stdin: stdin, stdout: stdout, stderr: stderr, now: time.Now}
}

func (r *Runner) Run(args []string) int {
	root := r.newRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(r.stderr, "error: %v\n", err)
		return apperr.ExitCode(err)
	}
	return 0
}

func (r *Runner) newRootCommand() *cobra.Command {
	flags := &config.GlobalFlags{}

	root := &cobra.Command{
		Use:           "sona",
		Short:         "Chat-driven wallet for the Sonic SVM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flags.RPCEndpoint, "rpc-endpoint", "", "chain RPC endpoint")
	root.PersistentFlags().StringVar(&flags.AssistEndpoint, "assist-endpoint", "", "assistant service endpoint")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&flags.JSONLogs, "json-logs", false, "emit logs as JSON")
	root.PersistentFlags().BoolVar(&flags.NoMarket, "no-market", false, "disable price lookups")

	root.AddCommand(r.newChatCommand(flags))
	root.AddCommand(r.newHistoryCommand(flags))
	root.AddCommand(r.newVersionCommand())
	return root
}

func (r *Runner) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sona version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(r.stdout, version.Version)
			return nil
		},
	}
}

func (r *Runner) loadSettings(flags *config.GlobalFlags) (config.Settings, error) {
	settings, err := config.Load(*flags)
	if err != nil {
		return config.Settings{}, apperr.Wrap(apperr.CodeUsage, "load configuration", err)
	}
	log.Init(settings.LogLevel, settings.JSONLogs)
	return settings, nil
}
