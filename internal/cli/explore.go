package cli

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo"
	"github.com/phylonetworks/reticula/pkg/phylo/move"
	"github.com/phylonetworks/reticula/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the "explore" command, an interactive walk through
// a network's rearrangements.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		seed               uint64
		allow3Cycles       bool
		allowHybridLadders bool
	)

	cmd := &cobra.Command{
		Use:   "explore <network|file>",
		Short: "Walk a network's rearrangements interactively",
		Long: `Explore opens an interactive view of the network's edges. Selecting an
edge applies a random legal rearrangement on it; moves can be undone one
at a time, all the way back to the starting topology. The final network
is printed on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readNetworkArg(args[0])
			if err != nil {
				return err
			}
			g, err := newick.Parse(input)
			if err != nil {
				return fmt.Errorf("parse network: %w", err)
			}
			if err := g.CheckNetwork(); err != nil {
				return fmt.Errorf("check network: %w", err)
			}

			opts := move.Options{
				No3Cycle:       !allow3Cycles,
				NoHybridLadder: !allowHybridLadders,
			}
			model := NewExploreModel(g, opts, seed)

			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}

			m, ok := final.(ExploreModel)
			if !ok {
				return nil
			}
			out, err := newick.Write(m.Network)
			if err != nil {
				return fmt.Errorf("serialize network: %w", err)
			}
			if len(m.History) > 0 {
				printSuccess("Applied %d rearrangements", len(m.History))
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().BoolVar(&allow3Cycles, "allow-3cycles", false, "admit moves that create 3-cycles")
	cmd.Flags().BoolVar(&allowHybridLadders, "allow-hybrid-ladders", false, "admit moves that stack reticulations")

	return cmd
}

// =============================================================================
// ExploreModel - Interactive rearrangement walk
// =============================================================================

// ExploreModel is the bubbletea model for the explore command.
type ExploreModel struct {
	Network *phylo.Network
	History []*move.Move

	edges  []*phylo.Edge
	opts   move.Options
	rng    *rand.Rand
	cursor int
	offset int
	height int
	status string
}

// NewExploreModel creates an explore model over the network's edges.
func NewExploreModel(g *phylo.Network, opts move.Options, seed uint64) ExploreModel {
	return ExploreModel{
		Network: g,
		edges:   g.Edges(),
		opts:    opts,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		height:  15,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.edges)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.applyMove()
			return m, nil
		case "u":
			m.undoMove()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// applyMove tries a random rearrangement on the selected edge.
func (m *ExploreModel) applyMove() {
	focus := m.edges[m.cursor]
	mv, err := move.ApplyRandom(m.Network, focus, m.rng, m.opts, nil)
	if err != nil {
		m.status = StyleWarning.Render(fmt.Sprintf("edge %d: no legal rearrangement", focus.Number))
		return
	}
	m.History = append(m.History, mv)
	m.status = StyleSuccess.Render(fmt.Sprintf("applied a rearrangement on edge %d", focus.Number))
}

// undoMove reverts the most recent rearrangement.
func (m *ExploreModel) undoMove() {
	if len(m.History) == 0 {
		m.status = listDimStyle.Render("nothing to undo")
		return
	}
	last := m.History[len(m.History)-1]
	if err := last.Undo(); err != nil {
		m.status = StyleWarning.Render(err.Error())
		return
	}
	m.History = m.History[:len(m.History)-1]
	m.status = listDimStyle.Render(fmt.Sprintf("undid the rearrangement on edge %d", last.Edge().Number))
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Rearrangements"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ apply  u undo  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.edges) {
		end = len(m.edges)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		e := m.edges[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		kind := "tree"
		if e.Hybrid {
			kind = fmt.Sprintf("hybrid γ=%s", strconv.FormatFloat(e.Gamma, 'g', 3, 64))
		}

		rows = append(rows, []string{
			cursor,
			strconv.Itoa(e.Number),
			edgeLabel(e),
			kind,
			strconv.Itoa(move.Count(e)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Edge", "Link", "Type", "Moves").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.offset + row
			if actualIdx >= len(m.edges) {
				return lipgloss.NewStyle()
			}
			pivot := move.Count(m.edges[actualIdx]) > 0
			if actualIdx == m.cursor {
				if pivot {
					return listSelectedStyle
				}
				return listDimStyle.Bold(true)
			}
			if !pivot {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString("  " + m.status + "\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] · %d moves applied", m.cursor+1, len(m.edges), len(m.History))))

	return b.String()
}

// edgeLabel shows an edge as parent→child using names where they exist.
func edgeLabel(e *phylo.Edge) string {
	return nodeLabel(e.Parent()) + " → " + nodeLabel(e.Child())
}

func nodeLabel(n *phylo.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return strconv.Itoa(n.Number)
}
