package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/harlequix/infopipe/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List persisted runs, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(cfg.RunsDir, cfg.CacheSize)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		detail, err := runs.Get(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(detail), "writing run")
	}

	list, err := runs.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tINTERVAL\tSYMBOLS\tBITS\tHAMMING\tRECOVERED")
	for _, run := range list {
		s := run.Summary
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%t\n",
			run.ID, s.ErrorInterval, s.TextLength, s.EncodedLength, s.HammingLength, s.RecoveredTextOK)
	}
	return errors.Wrap(w.Flush(), "writing runs")
}
