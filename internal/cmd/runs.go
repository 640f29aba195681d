package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/leedsrising/pdf-to-text/internal/config"
)

var (
	runsLimit  int
	runsFormat string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent sanitization and rehydration runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openEvidenceStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		switch runsFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		case "text":
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tOPERATION\tDOCUMENT\tSPANS\tDURATION\tERROR")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%s\n",
					rec.Timestamp.Local().Format(time.DateTime),
					rec.Operation, rec.Document, rec.SpanCount, rec.DurationMS, rec.Error)
			}
			return w.Flush()
		default:
			return fmt.Errorf("unknown format %q (want text or json)", runsFormat)
		}
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum records to show")
	runsCmd.Flags().StringVar(&runsFormat, "format", "text", "output format (text, json)")
	rootCmd.AddCommand(runsCmd)
}
