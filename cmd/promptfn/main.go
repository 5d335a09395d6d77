// Command promptfn renders type hints, heals recorded completions and calls contracts
// declared in YAML files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skosovsky/promptfn"
)

type globalFlags struct {
	configPath string
	envFile    string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "promptfn",
		Short:         "Run functions whose bodies are LLM completions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file applied over the defaults")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newHintCmd(), newDecodeCmd(), newCallCmd(&g))
	return root
}

// loadConfig builds the configuration: defaults, then the YAML file, then the
// environment (after loading the dotenv file, whose variables never override ones
// already set).
func (g *globalFlags) loadConfig() (promptfn.Config, error) {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !os.IsNotExist(err) {
			return promptfn.Config{}, fmt.Errorf("load %s: %w", g.envFile, err)
		}
	}
	cfg := promptfn.DefaultConfig()
	if g.configPath != "" {
		var err error
		if cfg, err = promptfn.LoadConfigFile(g.configPath); err != nil {
			return promptfn.Config{}, err
		}
	}
	return cfg.WithEnv(os.LookupEnv)
}

func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
