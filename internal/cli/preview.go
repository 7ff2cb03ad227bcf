package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/affectively-ai/foldline/pkg/engine"
)

// previewCommand creates the preview command for interactive exploration.
func (c *CLI) previewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "preview [fixture.json]",
		Short: "Interactively explore decisions across device classes",
		Long: `Interactively explore decisions across device classes.

The preview command solves the fixture and renders the decision set in the
terminal. Cycle through device classes with the arrow keys to see how the
same document folds onto a phone, tablet, desktop, or TV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, cfg, err := c.loadFixtureAndConfig(args[0], configPath)
			if err != nil {
				return err
			}
			model := newPreviewModel(fixture, cfg)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with tunables")

	return cmd
}

// =============================================================================
// PreviewModel - Interactive Decision Explorer
// =============================================================================

// previewDevices are the device classes the preview cycles through; the
// empty class means no device scaling.
var previewDevices = []engine.DeviceClass{
	"", engine.DevicePhone, engine.DeviceTablet, engine.DeviceDesktop, engine.DeviceTV,
}

var (
	previewModeStyles = map[engine.RenderMode]lipgloss.Style{
		engine.ModeComfortable: StyleSuccess,
		engine.ModeFull:        StyleSuccess,
		engine.ModeCompact:     StyleValue,
		engine.ModeCompressed:  StyleWarning,
		engine.ModeCollapsed:   StyleDim,
		engine.ModeHidden:      StyleDim,
	}
)

// previewModel is the bubbletea model for the decision explorer.
type previewModel struct {
	fixture *Fixture
	eng     *engine.Engine
	device  int // index into previewDevices
	result  *engine.LayoutResult
}

func newPreviewModel(fixture *Fixture, cfg engine.Config) previewModel {
	m := previewModel{
		fixture: fixture,
		eng:     fixture.BuildEngine(cfg),
	}
	m.result = m.solve()
	return m
}

// solve reruns the solve for the currently selected device class.
func (m previewModel) solve() *engine.LayoutResult {
	device := previewDevices[m.device]
	if device == "" {
		return m.eng.Solve(m.fixture.Constraints)
	}
	viewer := engine.PersonalizationContext{Device: device}
	if m.fixture.Viewer != nil {
		viewer = *m.fixture.Viewer
		viewer.Device = device
	}
	return m.eng.PersonalizedSolve(m.fixture.Constraints, viewer)
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l":
			m.device = (m.device + 1) % len(previewDevices)
			m.result = m.solve()
		case "left", "h":
			m.device = (m.device + len(previewDevices) - 1) % len(previewDevices)
			m.result = m.solve()
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	device := string(previewDevices[m.device])
	if device == "" {
		device = "raw capacity"
	}
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s · %s", m.fixture.DocumentID, device)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ device  q quit"))
	b.WriteString("\n\n")

	for _, d := range m.result.Decisions {
		style, ok := previewModeStyles[d.Mode]
		if !ok {
			style = StyleValue
		}
		marker := "  "
		if d.Structural {
			marker = StyleDim.Render("# ")
		}
		bar := renderWeightBar(d.Fraction)
		b.WriteString(fmt.Sprintf("%s%-20s %s %s %s\n",
			marker,
			d.BlockID,
			style.Render(fmt.Sprintf("%-12s", string(d.Mode))),
			bar,
			StyleDim.Render(fmt.Sprintf("%.1f", d.AllocatedWeight))))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d included · %.0f%% utilized · load %.2f",
		m.result.IncludedCount(), m.result.Meta.ItemCount,
		m.result.Utilization*100, m.result.CognitiveLoad)))
	b.WriteString("\n")

	return b.String()
}

// renderWeightBar draws a 10-cell inclusion bar.
func renderWeightBar(fraction float64) string {
	const cells = 10
	filled := int(fraction * cells)
	if filled > cells {
		filled = cells
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	return StyleHighlight.Render(bar)
}
