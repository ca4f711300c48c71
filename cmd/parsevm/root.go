package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halvard/parsevm/internal/config"
)

var rootFlags = struct {
	configPath *string
}{}

var loadedConfig config.Config

var rootCmd = &cobra.Command{
	Use:   "parsevm",
	Short: "Compile and run context-free grammars on a non-deterministic parser VM",
	Long: `parsevm provides:
- compile: lower a BNF-like grammar to flat bytecode.
- run: execute compiled bytecode against a token sequence.
- show: print a compiled grammar in human-readable form.
- test: run ---delimited fixture files against a grammar.
- serve: expose compile/run over HTTP and WebSocket.
- repl: interactively compile and run grammars.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(*rootFlags.configPath)
		if err != nil {
			return err
		}
		loadedConfig = cfg.FillDefaults()
		if _, set := os.LookupEnv("PARSERDEBUG"); !set && loadedConfig.Debug != 0 {
			os.Setenv("PARSERDEBUG", strconv.Itoa(loadedConfig.Debug))
		}
		return nil
	},
}

func init() {
	rootFlags.configPath = rootCmd.PersistentFlags().String("config", "parsevm.toml", "path to a parsevm.toml configuration file")
}

// Execute runs the parsevm CLI, printing any returned error to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
