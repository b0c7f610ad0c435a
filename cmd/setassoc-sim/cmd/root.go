// Package cmd provides the command-line interface for setassoc-sim.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/jedisct1/dlog"
	"github.com/spf13/cobra"

	"github.com/djdv/go-setassoc/internal/config"
)

const appName = "setassoc-sim"

// rootOptions are the persistent flags and the settings
// they produce, shared with every subcommand.
type rootOptions struct {
	configFile string
	logLevel   int
	logFile    string
	settings   config.Config
}

// newRootCmd builds the base command and all of its subcommands.
func newRootCmd() *cobra.Command {
	opts := new(rootOptions)
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Compare cache replacement policies on synthetic or recorded key traces.",
		Long: `setassoc-sim replays key access sequences against direct-mapped and ` +
			`4-way set-associative caches, alongside LRU, ARC and TinyLFU for reference, ` +
			`and reports hit rates per policy and pattern.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML or YAML configuration file")
	flags.IntVar(&opts.logLevel, "log-level", -1, "log level (0 = debug ... 6 = fatal); overrides the config")
	flags.StringVar(&opts.logFile, "log-file", "", "write diagnostics to this file; overrides the config")
	rootCmd.AddCommand(
		newRunCmd(opts),
		newPatternsCmd(),
	)
	return rootCmd
}

// load layers defaults, the config file, .env,
// environment and persistent flags, then configures logging.
func (opts *rootOptions) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	loaded, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if err := loaded.ApplyEnv(); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		loaded.LogFile = opts.logFile
	}
	if loaded.LogLevel >= int(dlog.SeverityDebug) && loaded.LogLevel < int(dlog.SeverityLast) {
		dlog.SetLogLevel(dlog.Severity(loaded.LogLevel))
	}
	if loaded.LogFile != "" {
		dlog.UseLogFile(loaded.LogFile)
	}
	if opts.configFile != "" {
		dlog.Debugf("Loaded configuration from [%s]", opts.configFile)
	}
	opts.settings = loaded
	return nil
}

// Execute builds the command tree and runs it,
// canceling on interrupt.
func Execute() {
	dlog.Init(appName, dlog.SeverityNotice, "DAEMON")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		dlog.Fatal(err)
	}
}
