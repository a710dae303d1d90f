package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"dvfmap/internal/filter"
)

type territoryScore struct {
	Code string `json:"code"`
	Name string `json:"name"`
	filter.Compatibility
}

// NewScoreCommand creates the score subcommand.
func NewScoreCommand(opts *RootOptions) *cobra.Command {
	var (
		scope   scopeFlags
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "score [code]",
		Short: "Score territories against the search filters",
		Long: `Score is the share of a territory's sales matching every filter,
rounded to a percentage. Without filters every territory scores 100.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			scale, err := scope.apply(s)
			if err != nil {
				return err
			}
			if err := filters.apply(cmd, s); err != nil {
				return err
			}

			var rows []territoryScore
			if len(args) == 1 {
				t, err := s.Territory(scale, args[0])
				if err != nil {
					return lookupError(err)
				}
				c, err := s.Compatibility(scale, t.Code)
				if err != nil {
					return lookupError(err)
				}
				rows = []territoryScore{{Code: t.Code, Name: t.Name, Compatibility: c}}
			} else {
				scores := s.CompatibilityMap(scale)
				rows = []territoryScore{}
				for _, t := range territoriesAt(s, scale) {
					rows = append(rows, territoryScore{Code: t.Code, Name: t.Name, Compatibility: scores[t.Code]})
				}
			}

			return newFormatter(opts, cmd.OutOrStdout()).Render(rows, func(w io.Writer, p *message.Printer) {
				p.Fprintf(w, "CODE\tNAME\tSCORE\tMATCHED\n")
				for _, r := range rows {
					p.Fprintf(w, "%s\t%s\t%d%%\t%d/%d\n", r.Code, r.Name, r.Score, r.Matched, r.Total)
				}
			})
		},
	}

	scope.register(cmd)
	filters.register(cmd)
	return cmd
}
