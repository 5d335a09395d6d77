package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/typeexpr"
)

func newHintCmd() *cobra.Command {
	var showSchema bool
	cmd := &cobra.Command{
		Use:   "hint <type>",
		Short: "Normalize a type hint and show its schema, kind and priming prefix",
		Example: `  promptfn hint '{ name: string; tags?: string[] }'
  promptfn hint --schema '"low" | "high"'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := typeexpr.ParseHint(strings.Join(args, " "))
			if err != nil {
				return err
			}
			s := typeexpr.ToJSONSchema(t)
			kind, err := typeexpr.CanonicalKind(s)
			if err != nil {
				return err
			}
			prefix, err := heal.Prefix(s)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hint:   %s\nkind:   %s\nprefix: %s\n", typeexpr.TypeHint(s), kind, prefix)
			if showSchema {
				data, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "schema:\n%s\n", data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSchema, "schema", false, "also print the JSON Schema")
	return cmd
}
