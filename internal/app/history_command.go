package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ENuel20/SoNa/internal/config"
	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/history"
)

func (r *Runner) newHistoryCommand(flags *config.GlobalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted transfers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := r.loadSettings(flags)
			if err != nil {
				return err
			}
			store, err := history.Open(settings.HistoryPath, settings.HistoryLockPath)
			if err != nil {
				return apperr.Wrap(apperr.CodeInternal, "open history store", err)
			}
			defer func() { _ = store.Close() }()

			records, err := store.List(limit)
			if err != nil {
				return apperr.Wrap(apperr.CodeInternal, "list transfers", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(r.stdout, "no transfers recorded")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(r.stdout, "%s  %-9s %4s %-6s %-10s %s\n",
					rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
					rec.State, rec.Direction, rec.Asset, rec.Amount, rec.Signature)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of transfers to list")
	return cmd
}
