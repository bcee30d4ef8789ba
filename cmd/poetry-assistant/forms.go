package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sozercan/poetry-assistant/internal/forms"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the poetic forms offered by the UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, f := range forms.All() {
			fmt.Fprintf(tw, "%s\t%s\n", f.Name, f.Description)
		}
		return tw.Flush()
	},
}
