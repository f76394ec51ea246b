package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phylonetworks/reticula/pkg/pipeline"
)

// searchCommand creates the "search" command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		opts            pipeline.Options
		constraintFlags []string
		configPath      string
		output          string
		noCache         bool
	)

	cmd := &cobra.Command{
		Use:   "search <network|file>",
		Short: "Run a randomized rearrangement search",
		Long: `Search runs a bounded randomized walk of nearest-neighbor interchanges
over the network, accepting moves that score at least as well as the
incumbent topology, and prints the best network found. Runs are recorded
in the run store and scores are cached by topology.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			input, err := readNetworkArg(args[0])
			if err != nil {
				return err
			}
			opts.Newick = input

			specs, err := parseConstraintFlags(constraintFlags)
			if err != nil {
				return err
			}
			opts.Constraints = specs

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyTo(&opts); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, "Searching rearrangements...")
			spinner.Start()

			result, err := runner.Execute(ctx, opts)
			spinner.Stop()
			if err != nil {
				printError("%v", err)
				return err
			}
			prog.done(fmt.Sprintf("Tried %d moves", result.Stats.Steps))

			printSuccess("Search finished")
			printStats(result.Stats.TaxonCount, result.Stats.HybridCount, result.Network.EdgeCount())
			printKeyValue("run", result.Run.ID)
			printKeyValue("score", strconv.FormatFloat(result.BestScore, 'g', -1, 64))
			printKeyValue("applied", strconv.Itoa(result.Stats.Applied))
			printKeyValue("rejected", strconv.Itoa(result.Stats.Rejected))
			if result.Stats.ScoreHits > 0 {
				printDetail("%d score lookups served from cache", result.Stats.ScoreHits)
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(result.BestNewick+"\n"), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				printFile(output)
			} else {
				fmt.Println(result.BestNewick)
			}

			printNextStep("Draw the result", "reticula draw -o network.svg '"+result.BestNewick+"'")
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.MaxMoves, "max-moves", 0, "number of rearrangements to try")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&opts.Allow3Cycles, "allow-3cycles", false, "admit moves that create 3-cycles")
	cmd.Flags().BoolVar(&opts.AllowHybridLadders, "allow-hybrid-ladders", false, "admit moves that stack reticulations")
	cmd.Flags().StringArrayVar(&constraintFlags, "constraint", nil, "taxon group to preserve, e.g. clade:A,B (repeatable)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to reticula.toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the best network to a file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the score cache")

	return cmd
}
