package cli

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo/move"
	"github.com/phylonetworks/reticula/pkg/pipeline"
)

// nniCommand creates the "nni" command for applying a single rearrangement.
func (c *CLI) nniCommand() *cobra.Command {
	var (
		edgeNumber         int
		index              int
		random             bool
		seed               uint64
		allow3Cycles       bool
		allowHybridLadders bool
		constraintFlags    []string
		output             string
	)

	cmd := &cobra.Command{
		Use:   "nni <network|file>",
		Short: "Apply a single rearrangement to an edge",
		Long: `NNI applies one nearest-neighbor interchange rearrangement to the given
edge and prints the resulting network. Without --index the command lists
the candidate count for the edge; with --random it picks a legal candidate
at random.`,
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
			focus, ok := g.Edge(edgeNumber)
			if !ok {
				return fmt.Errorf("no edge numbered %d", edgeNumber)
			}

			count := move.Count(focus)
			if index == 0 && !random {
				printInfo("Edge %d admits %d rearrangements", edgeNumber, count)
				return nil
			}

			specs, err := parseConstraintFlags(constraintFlags)
			if err != nil {
				return err
			}
			cs, err := pipeline.BuildConstraints(g, specs)
			if err != nil {
				return err
			}

			opts := move.Options{
				No3Cycle:       !allow3Cycles,
				NoHybridLadder: !allowHybridLadders,
			}

			var m *move.Move
			if random {
				rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
				m, err = move.ApplyRandom(g, focus, rng, opts, cs)
			} else {
				m, err = move.Apply(g, focus, index, opts)
				if err == nil && len(cs) > 0 {
					for _, con := range cs {
						if con.Violated(g) {
							if uerr := m.Undo(); uerr != nil {
								return uerr
							}
							err = fmt.Errorf("move breaks the %s constraint on edge %d: %w", con.Type, con.EdgeNumber, move.ErrNoMove)
							break
						}
					}
				}
			}
			if err != nil {
				printError("%v", err)
				return err
			}

			out, err := newick.Write(g)
			if err != nil {
				return fmt.Errorf("serialize network: %w", err)
			}

			printSuccess("Applied rearrangement on edge %d", edgeNumber)
			if m.Flipped() {
				printDetail("the edge's direction flipped")
			}
			if output != "" {
				if err := os.WriteFile(output, []byte(out+"\n"), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				printFile(output)
				return nil
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&edgeNumber, "edge", "e", 1, "focus edge number")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "rearrangement index (1-based; 0 lists the count)")
	cmd.Flags().BoolVar(&random, "random", false, "pick a legal rearrangement at random")
	cmd.Flags().Uint64Var(&seed, "seed", pipeline.DefaultSeed, "random seed for --random")
	cmd.Flags().BoolVar(&allow3Cycles, "allow-3cycles", false, "admit moves that create 3-cycles")
	cmd.Flags().BoolVar(&allowHybridLadders, "allow-hybrid-ladders", false, "admit moves that stack reticulations")
	cmd.Flags().StringArrayVar(&constraintFlags, "constraint", nil, "taxon group to preserve, e.g. clade:A,B (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file instead of stdout")

	return cmd
}
