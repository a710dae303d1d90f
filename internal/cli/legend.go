package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"
)

// NewLegendCommand creates the legend subcommand.
func NewLegendCommand(opts *RootOptions) *cobra.Command {
	var scope scopeFlags

	cmd := &cobra.Command{
		Use:   "legend",
		Short: "Show the price buckets used to colour a scale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			scale, err := scope.apply(s)
			if err != nil {
				return err
			}

			legend := s.Legend(scale)
			return newFormatter(opts, cmd.OutOrStdout()).Render(legend, func(w io.Writer, p *message.Printer) {
				if len(legend.Entries) == 0 {
					p.Fprintf(w, "No sales at %s scale\n", scale)
					return
				}
				p.Fprintf(w, "COLOR\tFROM\tTO\n")
				for _, e := range legend.Entries {
					p.Fprintf(w, "%s\t%s\t%s\n", e.Color, price(p, e.From), price(p, e.To))
				}
			})
		},
	}

	scope.register(cmd)
	return cmd
}
