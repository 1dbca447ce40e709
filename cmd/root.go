package cmd

import (
	"os"

	"github.com/harlequix/infopipe/config"
	log "github.com/harlequix/infopipe/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "infopipe",
	Short: "Huffman + Hamming(7,4) coding pipeline with simulated channel noise",
	Long: `infopipe compresses text with a Huffman code, protects the bit stream
with Hamming(7,4), flips one bit every N bits and reports how much of the
text survives decoding with and without error correction.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("loglevel", "warn", "log level (trace, debug, info, warn, error)")
	flags.String("logfile", "", "also write trace and warn records to <logfile>.trace / <logfile>.warn")
	bindFlag("LogLevel", flags.Lookup("loglevel"))
	bindFlag("LogFile", flags.Lookup("logfile"))
}

// bindFlag ties a config key to a flag. It only fails for a nil flag, which
// is a programming error.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.SetConfigFile(cfgFile); err != nil {
		return err
	}
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if err := log.SetLevel(loaded.LogLevel); err != nil {
		return err
	}
	if loaded.LogFile != "" {
		log.AddTracer(loaded.LogFile)
	}
	cfg = loaded
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
