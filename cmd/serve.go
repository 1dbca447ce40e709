package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harlequix/infopipe/server"
	"github.com/harlequix/infopipe/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", ":5000", "listen address")
	flags.String("runs", "runs", "directory for persisted runs")
	flags.Bool("persist", true, "persist every processed run")
	bindFlag("Addr", flags.Lookup("addr"))
	bindFlag("RunsDir", flags.Lookup("runs"))
	bindFlag("Persist", flags.Lookup("persist"))
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	runs, err := store.New(cfg.RunsDir, cfg.CacheSize)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, runs).ListenAndServe(ctx)
}
