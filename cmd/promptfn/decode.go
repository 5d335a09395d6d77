package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/skosovsky/promptfn"
	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/typeexpr"
)

var errInvalidCompletion = errors.New("completion did not produce a valid value")

func newDecodeCmd() *cobra.Command {
	var (
		typeHint string
		legacy   bool
		maxDepth int
	)
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Heal and validate a recorded completion against a type",
		Long: `Decode reads a raw completion (from file or stdin), repairs it into JSON and
checks it against the type. With --legacy the completion is treated as the
continuation of a primed prompt and the priming prefix is prepended.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := typeexpr.ParseHint(typeHint)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			x, err := promptfn.NewExtractor(typeexpr.ToJSONSchema(t), heal.Decoder{MaxDepth: maxDepth})
			if err != nil {
				return err
			}
			family := promptfn.FamilyChat
			if legacy {
				family = promptfn.FamilyLegacy
			}
			ex := x.Extract(string(raw), family)
			if ex.Value != nil || ex.Valid {
				data, err := json.MarshalIndent(ex.Value, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			for _, msg := range ex.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			if !ex.Valid {
				return errInvalidCompletion
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeHint, "type", "t", "", "expected type as hint text (required)")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "prepend the priming prefix")
	cmd.Flags().IntVar(&maxDepth, "max-depth", heal.DefaultMaxDepth, "maximum nesting depth")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
