package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/media"
	"github.com/dhidargpt/dhidar/internal/page"
	"github.com/spf13/cobra"
)

var summarizeJSON bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "Résume un texte",
	Long: `Résume un fichier texte (.txt, .md, .html) ou le texte lu depuis stdin
et affiche le résumé avec ses métriques.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			text string
			err  error
		)
		if len(args) == 1 && args[0] != "-" {
			text, err = media.ReadText(args[0])
		} else {
			text, err = readInput(cmd, args)
		}
		if err != nil {
			return err
		}
		if err := page.ValidateSummaryInput(text); err != nil {
			return err
		}

		result := dhidarApp.Gateway.Summarize(cmd.Context(), text)
		if err := resultError(result, llm.SummarizeFailureMessage); err != nil {
			return err
		}
		summary := page.NewSummaryResult(text, result.Payload)

		out := cmd.OutOrStdout()
		if summarizeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		fmt.Fprintln(out, summary.Summary)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Longueur originale : %d caractères\n", summary.OriginalLength)
		fmt.Fprintf(out, "Longueur du résumé : %d caractères\n", summary.SummaryLength)
		fmt.Fprintf(out, "Taux de compression : %d%%\n", summary.CompressionRatio)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "Print the summary and its metrics as JSON")
}
