package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the prompt templates questions are generated from",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ts, err := rt.client.PromptTemplates(cmd.Context())
		if err != nil {
			return err
		}
		if len(ts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No prompt templates.")
			return nil
		}
		for _, t := range ts {
			fmt.Fprintf(cmd.OutOrStdout(), "%5s  %s\n", t.ID, t.Text)
		}
		return nil
	},
}
