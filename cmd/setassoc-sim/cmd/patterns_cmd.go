package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/djdv/go-setassoc/internal/policy"
	"github.com/djdv/go-setassoc/internal/trace"
)

func newPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the built-in access patterns and cache policies",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Patterns:")
			for _, pattern := range trace.Patterns() {
				fmt.Fprintf(out, "  %-12s %s\n", pattern.Name, pattern.Description)
			}
			fmt.Fprintf(out, "Policies:\n  %s\n", strings.Join(policy.Names(), ", "))
		},
	}
}
