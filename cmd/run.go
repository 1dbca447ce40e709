package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/harlequix/infopipe/pipeline"
	"github.com/harlequix/infopipe/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run the coding pipeline on a text",
	Long: `Run reads the text from the given file, from --text, or from stdin,
runs it through the pipeline and prints the report as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

var (
	runText string
	runSave bool
	runFull bool
)

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&runText, "text", "", "text to encode instead of reading a file")
	flags.Int("interval", 50, "flip one bit every N bits of the Hamming stream")
	flags.BoolVar(&runSave, "save", false, "persist the run artifacts under the runs directory")
	flags.BoolVar(&runFull, "full", false, "print every artifact instead of the report")
	bindFlag("ErrorInterval", flags.Lookup("interval"))
	rootCmd.AddCommand(runCmd)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return "", errors.Wrapf(err, "reading %s", args[0])
		}
		return string(raw), nil
	}
	if cmd.Flags().Changed("text") {
		return runText, nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	return string(raw), nil
}

func run(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	res, err := pipeline.Run(text, cfg.ErrorInterval)
	if err != nil {
		return err
	}

	var out interface{} = pipeline.NewReport(text, res, cfg.PreviewBits, cfg.PreviewText)
	if runFull {
		out = res
	}
	if runSave {
		runs, err := store.New(cfg.RunsDir, cfg.CacheSize)
		if err != nil {
			return err
		}
		saved, err := runs.Save(text, res)
		if err != nil {
			return err
		}
		cmd.PrintErrf("saved run %s\n", saved.Directory)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "writing report")
}
