package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"
)

// NewTransitCommand creates the transit subcommand.
func NewTransitCommand(opts *RootOptions) *cobra.Command {
	var scope scopeFlags

	cmd := &cobra.Command{
		Use:   "transit <code>",
		Short: "List the metro and RER lines serving a territory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			scale, err := scope.apply(s)
			if err != nil {
				return err
			}

			lines, err := s.TransitLines(scale, args[0])
			if err != nil {
				return lookupError(err)
			}
			return newFormatter(opts, cmd.OutOrStdout()).Render(lines, func(w io.Writer, p *message.Printer) {
				if len(lines) == 0 {
					p.Fprintf(w, "No line serves %s\n", args[0])
					return
				}
				p.Fprintf(w, "MODE\tLINE\tCOLOR\n")
				for _, l := range lines {
					p.Fprintf(w, "%s\t%s\t%s\n", l.Mode, l.LineID, l.Color)
				}
			})
		},
	}

	scope.register(cmd)
	return cmd
}
