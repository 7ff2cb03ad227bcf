package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/affectively-ai/foldline/pkg/config"
	"github.com/affectively-ai/foldline/pkg/engine"
)

// solveCommand creates the solve command for computing layout decisions.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noViewer   bool
	)

	cmd := &cobra.Command{
		Use:   "solve [fixture.json]",
		Short: "Compute layout decisions for a document fixture",
		Long: `Compute layout decisions for a document fixture.

The solve command takes a fixture file describing a document's content items,
their value and weight signals, and the container constraints, then solves the
allocation and prints one render decision per item.

If the fixture carries a viewer context, the solve is personalized: device
class scales capacity, reading level sets the cognitive budget, and viewer
preferences and history reweight item values. Pass --no-viewer to ignore it.

With -o, the full result (decisions plus totals) is written as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(args[0], output, configPath, noViewer)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: print to stdout)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with tunables")
	cmd.Flags().BoolVar(&noViewer, "no-viewer", false, "ignore the fixture's viewer context")

	return cmd
}

// runSolve loads the fixture, solves, and prints or writes the result.
func (c *CLI) runSolve(input, output, configPath string, noViewer bool) error {
	fixture, cfg, err := c.loadFixtureAndConfig(input, configPath)
	if err != nil {
		return err
	}
	if noViewer {
		fixture.Viewer = nil
	}

	prog := newProgress(c.Logger)
	eng := fixture.BuildEngine(cfg)
	result := fixture.Solve(eng)
	prog.done(fmt.Sprintf("Solved %d items", result.Meta.ItemCount))

	if output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Solve complete")
		printFile(output)
	} else {
		printDecisions(result)
	}
	printStats(result.Meta.ItemCount, result.IncludedCount(), result.Utilization)
	if result.Utilization > 1 {
		printWarning("content floor overflowed capacity (%.0f%%)", result.Utilization*100)
	}
	printNewline()
	base := strings.TrimSuffix(input, filepath.Ext(input))
	printNextStep("Generate manifest", "foldline manifest "+input+" -o "+base+".manifest.json")

	return nil
}

// loadFixtureAndConfig loads a fixture plus the engine config derived from
// an optional TOML file.
func (c *CLI) loadFixtureAndConfig(input, configPath string) (*Fixture, engine.Config, error) {
	fixture, err := LoadFixture(input)
	if err != nil {
		return nil, engine.Config{}, err
	}

	engCfg := engine.Config{Logger: c.Logger}
	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return nil, engine.Config{}, err
		}
		engCfg.Tunables = fileCfg.Tunables()
		engCfg.Personalization = fileCfg.PersonalizationTunables()
		engCfg.EdgeCacheTTLSeconds = fileCfg.Edge.CacheTTLSeconds
	}
	return fixture, engCfg, nil
}

// printDecisions renders the decision table to stdout.
func printDecisions(result *engine.LayoutResult) {
	fmt.Println(StyleTitle.Render("Layout Decisions"))
	for _, d := range result.Decisions {
		mode := string(d.Mode)
		style := modeStyle(d.Mode)
		marker := " "
		if d.Structural {
			marker = "#"
		}
		fmt.Printf("  %s %-20s %s %s\n",
			StyleDim.Render(marker),
			d.BlockID,
			style.Render(fmt.Sprintf("%-12s", mode)),
			StyleDim.Render(fmt.Sprintf("weight %.1f  fraction %.2f", d.AllocatedWeight, d.Fraction)))
	}
	if len(result.Overflow) > 0 {
		printDetail("overflow: %s", strings.Join(result.Overflow, ", "))
	}
	if result.Personalized {
		printDetail("personalized for viewer %s", result.ViewerID)
	}
}
