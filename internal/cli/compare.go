package cli

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"dvfmap/internal/models"
)

type comparisonReport struct {
	Zones   []models.ComparisonZone `json:"zones"`
	Refused []string                `json:"refused"`
}

// NewCompareCommand creates the compare subcommand.
func NewCompareCommand(opts *RootOptions) *cobra.Command {
	var scope scopeFlags

	cmd := &cobra.Command{
		Use:   "compare <code>...",
		Short: "Compare up to three territories side by side",
		Long: `Compare selects the given territories in comparison mode. Once three
zones are held, or when a code repeats, further selections are refused.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			scale, err := scope.apply(s)
			if err != nil {
				return err
			}
			if scale != s.Scale() {
				return NewExitError(ExitCommandError, "compare works at the scale reached by --within")
			}

			set := s.Comparison()
			set.Subscribe(func(zones []models.ComparisonZone) {
				opts.Logger.WithField("zones", len(zones)).Debug("Comparison set changed")
			})
			set.ToggleMode()

			result := comparisonReport{Refused: []string{}}
			for _, code := range args {
				added, err := s.Select(code)
				if err != nil {
					return lookupError(err)
				}
				if !added {
					opts.Logger.WithFields(logrus.Fields{
						"code": code,
						"held": set.Len(),
					}).Warn("Comparison refused territory")
					result.Refused = append(result.Refused, code)
				}
			}
			result.Zones = set.Zones()

			return newFormatter(opts, cmd.OutOrStdout()).Render(result, func(w io.Writer, p *message.Printer) {
				p.Fprintf(w, "CODE\tNAME\tSALES\tMEDIAN\tHOUSES\tAPARTMENTS\tLINES\n")
				for _, z := range result.Zones {
					ids := make([]string, len(z.TransitLines))
					for i, l := range z.TransitLines {
						ids[i] = l.LineID
					}
					p.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n", z.ID, z.Name, z.Stats.Count, price(p, z.Stats.MedianPrice),
						price(p, z.Stats.MedianHousePrice), price(p, z.Stats.MedianApartmentPrice), strings.Join(ids, " "))
				}
				for _, code := range result.Refused {
					p.Fprintf(w, "refused: %s\n", code)
				}
			})
		},
	}

	scope.register(cmd)
	return cmd
}
