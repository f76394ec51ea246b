package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/pipeline"
)

// constraintsCommand creates the "constraints" command.
func (c *CLI) constraintsCommand() *cobra.Command {
	var constraintFlags []string

	cmd := &cobra.Command{
		Use:   "constraints <network|file>",
		Short: "Resolve taxon groups to their stem edges",
		Long: `Constraints checks that each given taxon group is monophyletic in the
network and reports the stem edge rearrangement searches must leave
alone. Groups that do not hang below a single edge are reported as
violations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(constraintFlags) == 0 {
				return fmt.Errorf("at least one --constraint is required")
			}
			input, err := readNetworkArg(args[0])
			if err != nil {
				return err
			}
			g, err := newick.Parse(input)
			if err != nil {
				return fmt.Errorf("parse network: %w", err)
			}
			specs, err := parseConstraintFlags(constraintFlags)
			if err != nil {
				return err
			}

			failed := 0
			for _, spec := range specs {
				cs, err := pipeline.BuildConstraints(g, []pipeline.ConstraintSpec{spec})
				if err != nil {
					failed++
					printError("%s %v: %v", spec.Type, spec.Taxa, err)
					continue
				}
				printSuccess("%s %v", spec.Type, spec.Taxa)
				printDetail("stem edge %d, crown node %d", cs[0].EdgeNumber, cs[0].NodeNumber)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d groups are not monophyletic", failed, len(specs))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&constraintFlags, "constraint", nil, "taxon group, e.g. clade:A,B or species:S1,S2 (repeatable)")

	return cmd
}
