package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"
)

// NewAffordCommand creates the afford subcommand.
func NewAffordCommand(opts *RootOptions) *cobra.Command {
	var (
		scope  scopeFlags
		budget float64
		top    int
	)

	cmd := &cobra.Command{
		Use:   "afford",
		Short: "Rank territories by the surface a budget buys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if budget <= 0 {
				return NewExitError(ExitCommandError, "--budget must be positive")
			}

			s, err := openSession(opts)
			if err != nil {
				return err
			}
			scale, err := scope.apply(s)
			if err != nil {
				return err
			}

			results, err := s.Affordability(budget, scale, top)
			if err != nil {
				return lookupError(err)
			}
			return newFormatter(opts, cmd.OutOrStdout()).Render(results, func(w io.Writer, p *message.Printer) {
				p.Fprintf(w, "Budget %.0f €\n", budget)
				p.Fprintf(w, "CODE\tNAME\tMEDIAN\tSURFACE\n")
				for _, r := range results {
					p.Fprintf(w, "%s\t%s\t%.0f €/m²\t%d m²\n", r.ID, r.Name, r.PricePerM2, r.AffordableSurface)
				}
			})
		},
	}

	scope.register(cmd)
	cmd.Flags().Float64Var(&budget, "budget", 0, "total budget in euros")
	cmd.Flags().IntVar(&top, "top", 0, "only show the n best territories, 0 shows all")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}
