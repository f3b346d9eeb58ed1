package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the corpus from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		results := eng.Search(query)
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No results for %q\n", query)
			return nil
		}

		catalog := eng.Catalog()
		for _, r := range results {
			fmt.Fprintf(out, "%s %d:%d (%.2f)\n  %s\n",
				catalog.Name(r.Record.Surah), r.Record.Surah, r.Record.Ayah, r.Score, r.Record.Text)
		}
		fmt.Fprintf(out, "%d results\n", len(results))
		return nil
	},
}
