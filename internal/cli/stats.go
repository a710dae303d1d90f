package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"dvfmap/config"
	"dvfmap/internal/filter"
	"dvfmap/internal/models"
	"dvfmap/internal/session"
	"dvfmap/internal/stats"
)

type zoneReport struct {
	Territory     models.Territory      `json:"territory"`
	Stats         models.TerritoryStats `json:"stats"`
	Filters       models.FilterCriteria `json:"filters"`
	Filtered      *filter.FilteredStats `json:"filtered,omitempty"`
	Compatibility *filter.Compatibility `json:"compatibility,omitempty"`
	View          *mapView              `json:"view,omitempty"`
}

// mapView is where the map centres on a department.
type mapView struct {
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

type territoryStats struct {
	Code  string                `json:"code"`
	Name  string                `json:"name"`
	Color string                `json:"color"`
	Stats models.TerritoryStats `json:"stats"`
}

// NewStatsCommand creates the stats subcommand.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	var (
		scope   scopeFlags
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "stats [code]",
		Short: "Show sales statistics of a territory or of every territory of a scale",
		Args:  cobra.MaximumNArgs(1),
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
			out := newFormatter(opts, cmd.OutOrStdout())

			if len(args) == 0 {
				byCode := s.StatsByTerritory(scale)
				thresholds := s.Legend(scale).Thresholds
				rows := []territoryStats{}
				for _, t := range territoriesAt(s, scale) {
					if st, ok := byCode[t.Code]; ok {
						rows = append(rows, territoryStats{
							Code:  t.Code,
							Name:  t.Name,
							Color: stats.ColorForQuantile(st.MedianPrice, thresholds),
							Stats: st,
						})
					}
				}
				return out.Render(rows, func(w io.Writer, p *message.Printer) {
					p.Fprintf(w, "CODE\tNAME\tCOLOR\tSALES\tMEDIAN\tHOUSES\tAPARTMENTS\n")
					for _, r := range rows {
						p.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", r.Code, r.Name, r.Color, r.Stats.Count,
							price(p, r.Stats.MedianPrice), price(p, r.Stats.MedianHousePrice), price(p, r.Stats.MedianApartmentPrice))
					}
				})
			}

			report, err := buildZoneReport(s, scale, args[0])
			if err != nil {
				return lookupError(err)
			}
			return out.Render(report, func(w io.Writer, p *message.Printer) {
				p.Fprintf(w, "%s (%s %s)\n", report.Territory.Name, report.Territory.Scale, report.Territory.Code)
				p.Fprintf(w, "Sales\t%d\n", report.Stats.Count)
				p.Fprintf(w, "Median\t%s\n", price(p, report.Stats.MedianPrice))
				p.Fprintf(w, "Houses\t%d\t%s\n", report.Stats.HouseCount, price(p, report.Stats.MedianHousePrice))
				p.Fprintf(w, "Apartments\t%d\t%s\n", report.Stats.ApartmentCount, price(p, report.Stats.MedianApartmentPrice))
				if report.View != nil {
					p.Fprintf(w, "Map centre\t%.4f, %.4f\tzoom %d\n", report.View.Center[0], report.View.Center[1], report.View.ZoomLevel)
				}
				if report.Filtered != nil {
					p.Fprintf(w, "Matching sales\t%d\t%s\n", report.Filtered.Count, price(p, report.Filtered.MedianPrice))
					p.Fprintf(w, "Compatibility\t%d%%\t(%d/%d)\n", report.Compatibility.Score, report.Compatibility.Matched, report.Compatibility.Total)
				}
			})
		},
	}

	scope.register(cmd)
	filters.register(cmd)
	return cmd
}

func buildZoneReport(s *session.Session, scale models.Scale, code string) (zoneReport, error) {
	t, err := s.Territory(scale, code)
	if err != nil {
		return zoneReport{}, err
	}
	st, err := s.ZoneStats(scale, code)
	if err != nil {
		return zoneReport{}, err
	}
	report := zoneReport{Territory: t, Stats: st, Filters: s.Criteria()}
	if scale == models.ScaleDepartment {
		if dept := config.GetDepartmentByCode(code); dept != nil {
			report.View = &mapView{Center: dept.Center, ZoomLevel: dept.ZoomLevel}
		}
	}
	if !report.Filters.IsActive() {
		return report, nil
	}

	filtered, err := s.FilteredZoneStats(scale, code)
	if err != nil {
		return zoneReport{}, err
	}
	compat, err := s.Compatibility(scale, code)
	if err != nil {
		return zoneReport{}, err
	}
	report.Filtered = &filtered
	report.Compatibility = &compat
	return report, nil
}
