package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/affectively-ai/foldline/pkg/manifest"
)

// manifestCommand creates the manifest command for generating layout
// manifests.
func (c *CLI) manifestCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noEdge     bool
		ttl        int
	)

	cmd := &cobra.Command{
		Use:   "manifest [fixture.json]",
		Short: "Generate a layout manifest with edge-resolution templates",
		Long: `Generate a layout manifest with edge-resolution templates.

The manifest command solves the fixture and snapshots the decision set plus
the edge-resolution contract: one value-template URL per block and a single
context-template URL. A rendering layer expands the {base} token in each
template to the edge server's address and fetches per-viewer signals at
display time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runManifest(args[0], output, configPath, noEdge, ttl)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.manifest.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with tunables")
	cmd.Flags().BoolVar(&noEdge, "no-edge", false, "omit edge-resolution templates")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "declared cache TTL in seconds (default 300)")

	return cmd
}

// runManifest solves the fixture and writes the manifest.
func (c *CLI) runManifest(input, output, configPath string, noEdge bool, ttl int) error {
	fixture, cfg, err := c.loadFixtureAndConfig(input, configPath)
	if err != nil {
		return err
	}
	cfg.DisableEdgeResolution = noEdge
	if ttl > 0 {
		cfg.EdgeCacheTTLSeconds = ttl
	}

	prog := newProgress(c.Logger)
	eng := fixture.BuildEngine(cfg)
	result := fixture.Solve(eng)
	m := eng.GenerateManifest(fixture.DocumentID)
	prog.done(fmt.Sprintf("Generated manifest for %d blocks", len(m.Decisions)))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".manifest.json"
	}
	if err := manifest.WriteFile(m, outputPath); err != nil {
		return fmt.Errorf("write manifest %s: %w", outputPath, err)
	}

	printSuccess("Manifest complete")
	printFile(outputPath)
	printStats(result.Meta.ItemCount, result.IncludedCount(), result.Utilization)
	if m.Edge.Enabled {
		printDetail("edge resolution: %d value templates, ttl %ds", len(m.Edge.Values), m.Edge.CacheTTLSeconds)
	} else {
		printDetail("edge resolution: disabled")
	}
	printNewline()
	printNextStep("Serve", "foldline serve --manifest-dir "+filepath.Dir(outputPath))

	return nil
}
