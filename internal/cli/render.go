package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pid-digitizer/backend/internal/cad"
	"github.com/pid-digitizer/backend/internal/models"
	"github.com/pid-digitizer/backend/internal/parser"
)

var (
	renderOutput        string
	renderPaper         string
	renderScale         string
	renderNoTitleBlock  bool
	renderNoAnnotations bool
	renderJSON          bool
	renderInputFormat   string
)

var renderCmd = &cobra.Command{
	Use:   "render <input>",
	Short: "Render a drawing description to a DXF file",
	Long: `Reads an export request (.json, .yaml, .yml or .msgpack) and writes the
drawing as DXF. Without -o the output is written next to the input.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output DXF path")
	renderCmd.Flags().StringVar(&renderPaper, "paper", "", "paper size (A0-A4), overrides the input")
	renderCmd.Flags().StringVar(&renderScale, "scale", "", "scale shown in the title block, overrides the input")
	renderCmd.Flags().BoolVar(&renderNoTitleBlock, "no-title-block", false, "omit the title block")
	renderCmd.Flags().BoolVar(&renderNoAnnotations, "no-annotations", false, "omit free text annotations")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print export statistics as JSON")
	renderCmd.Flags().StringVar(&renderInputFormat, "input-format", "",
		"input decoder ("+strings.Join(parser.GetGlobalRegistry().Names(), ", ")+"), default by extension")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	input := args[0]

	defaults, err := exportDefaults()
	if err != nil {
		return err
	}

	registry := parser.GetGlobalRegistry()
	var req *models.ExportRequest
	if renderInputFormat != "" {
		req, err = registry.DecodeFileAs(input, renderInputFormat, defaults)
	} else {
		req, err = registry.DecodeFile(input, defaults)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if req.DrawingID == "" {
		req.DrawingID = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	if renderPaper != "" {
		req.Options.PaperSize = models.PaperSize(strings.ToUpper(renderPaper))
	}
	if renderScale != "" {
		req.Options.Scale = renderScale
	}
	if renderNoTitleBlock {
		req.Options.IncludeTitleBlock = false
	}
	if renderNoAnnotations {
		req.Options.IncludeAnnotations = false
	}

	out := renderOutput
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".dxf"
	}

	composer := cad.NewComposer()
	path, err := composer.Export(req, out)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	stats := composer.Stats()

	if renderJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Wrote %s (%s)\n", path, req.Options.PaperSize)
	cmd.Printf("  blocks: %d  inserts: %d  lines: %d  texts: %d\n",
		stats.Blocks, stats.Insertions, stats.LineEntities, stats.TextEntities)
	if stats.SkippedDeleted > 0 {
		cmd.Printf("  skipped deleted items: %d\n", stats.SkippedDeleted)
	}
	if len(stats.FallbackClasses) > 0 {
		cmd.Printf("  drawn as generic: %s\n", strings.Join(stats.FallbackClasses, ", "))
	}
	return nil
}
