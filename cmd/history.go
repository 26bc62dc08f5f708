package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show answers submitted from this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		log := rt.store.AnswerLog()
		total, err := log.Count(cmd.Context())
		if err != nil {
			return err
		}
		recs, err := log.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d answers recorded on this device.\n", total)
		for _, r := range recs {
			line := fmt.Sprintf("#%-5d %s  %-15s %-10s %s", r.Sequence, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.QuestionType, r.QuestionID, r.Choice)
			if r.PromptTemplateID != "" {
				line += fmt.Sprintf("  (template %s)", r.PromptTemplateID)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of answers to show")
}
