package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pid-digitizer/backend/internal/cad"
	"github.com/pid-digitizer/backend/internal/models"
)

var (
	symbolsCategory string
	symbolsJSON     bool
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the symbol classes with dedicated drawings",
	Long: `Lists every symbol class the exporter draws with its own block, with
the category and layer it is placed on. Other classes are drawn as a
generic marker.`,
	Args: cobra.NoArgs,
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVarP(&symbolsCategory, "category", "c", "", "only list one category (equipment, instrument, valve)")
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, _ []string) error {
	entries := cad.Catalog()
	if symbolsCategory != "" {
		want := models.SymbolCategory(strings.ToLower(symbolsCategory))
		filtered := entries[:0]
		for _, e := range entries {
			if e.Category == want {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("no symbols in category %q", symbolsCategory)
		}
		entries = filtered
	}

	if symbolsJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal symbols: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tCATEGORY\tLAYER")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Class, e.Category, e.Layer)
	}
	return tw.Flush()
}
