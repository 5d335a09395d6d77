package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/skosovsky/promptfn"
	"github.com/skosovsky/promptfn/ext/promptfnotel"
	"github.com/skosovsky/promptfn/providers/gemini"
	"github.com/skosovsky/promptfn/providers/openai"
	"github.com/skosovsky/promptfn/testutil"
)

type callFlags struct {
	contracts string
	params    []string
	provider  string
	replies   []string
	outcome   bool
}

func newCallCmd(g *globalFlags) *cobra.Command {
	var f callFlags
	cmd := &cobra.Command{
		Use:   "call <function>",
		Short: "Call a function declared in a contract file",
		Example: `  promptfn call --contracts functions.yaml classify -p review='"Loved it"'
  promptfn call --contracts functions.yaml --provider mock --reply '"positive"' classify -p review='"x"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			contracts, err := promptfn.LoadContractFile(f.contracts)
			if err != nil {
				return err
			}
			params, err := parseParams(f.params)
			if err != nil {
				return err
			}
			provider, err := newProvider(cmd, cfg, f)
			if err != nil {
				return err
			}
			logger := g.logger(cmd)
			e, err := promptfn.New(cfg,
				promptfn.WithProvider(provider),
				promptfn.WithLogger(logger),
				promptfn.WithMiddleware(
					promptfnotel.Middleware(otel.GetTracerProvider()),
					promptfn.WithLogging(logger),
					promptfn.WithRecovery(),
				),
			)
			if err != nil {
				return err
			}
			reg := promptfn.NewRegistry(e)
			reg.Register(contracts...)
			defer func() { _ = reg.Shutdown(cmd.Context()) }()

			out, err := reg.Execute(cmd.Context(), promptfn.Invocation{Function: args[0], Params: params})
			if err != nil {
				return err
			}
			var v any = out.Value
			if f.outcome {
				v = map[string]any{
					"value":      out.Value,
					"valid":      out.Valid,
					"errors":     out.Errors,
					"completion": out.Completion,
					"model":      out.Model,
					"family":     out.Family,
					"elapsedMs":  out.Elapsed.Milliseconds(),
					"eventId":    out.EventID,
				}
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.contracts, "contracts", "c", "", "YAML contract file (required)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "parameter as name=JSON (repeatable); a value that is not JSON is taken as a string")
	cmd.Flags().StringVar(&f.provider, "provider", "openai", "completion provider: openai, gemini or mock")
	cmd.Flags().StringArrayVar(&f.replies, "reply", nil, "scripted completion for the mock provider (repeatable)")
	cmd.Flags().BoolVar(&f.outcome, "outcome", false, "print the whole outcome instead of the value")
	_ = cmd.MarkFlagRequired("contracts")
	return cmd
}

func parseParams(kvs []string) (map[string]any, error) {
	params := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q: want name=value", kv)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		params[name] = v
	}
	return params, nil
}

func newProvider(cmd *cobra.Command, cfg promptfn.Config, f callFlags) (promptfn.Provider, error) {
	switch f.provider {
	case "openai":
		return openai.New(cfg.APIKey, openai.WithBaseURL(cfg.BaseURL))
	case "gemini":
		return gemini.New(cmd.Context(), cfg.GeminiAPIKey)
	case "mock":
		return testutil.NewMockProvider(f.replies...), nil
	}
	return nil, fmt.Errorf("unknown provider %q (want openai, gemini or mock)", f.provider)
}
