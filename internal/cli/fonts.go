package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pfrederiksen/liga-scores/internal/glyphcache"
	"github.com/spf13/cobra"
)

// NewFontsCmd creates the fonts subcommand
func NewFontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List locally cached obfuscation fonts",
		Long: `Lists the obfuscation fonts held in the local glyph cache, with the
number of glyphs and codepoint mappings recovered from each.`,
		RunE: runFonts,
	}
}

// runFonts lists the persisted font cache contents
func runFonts(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	store, err := glyphcache.Open(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening glyph cache: %w", err)
	}

	fonts, err := store.Fonts()
	if err != nil {
		return fmt.Errorf("listing fonts: %w", err)
	}

	if format == FormatJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(fonts)
	}

	if len(fonts) == 0 {
		fmt.Println("No fonts cached.")
		return nil
	}

	for _, f := range fonts {
		name := f.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s  %-24s  %3d glyphs  %3d codepoints  fetched %s\n",
			f.ID, name, f.Glyphs, f.Codepoints, f.FetchedAt.UTC().Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nTotal: %d fonts\n", len(fonts))

	return nil
}
