package domain

import (
	"fmt"
	"strings"
	"time"

	"mamatimer/internal/platform/format"
)

const BlockName = "mamatimer:day"

// Frontmatter is the metadata written for a day note.
func (d Day) Frontmatter(now time.Time) map[string]any {
	meta := map[string]any{
		"schema_version": SchemaVersion,
		"date":           d.Key,
		"exported_at":    now.Format(time.RFC3339),
	}
	if d.Fetal != nil {
		meta["fetal"] = map[string]any{
			"sessions":        d.Fetal.Sessions,
			"valid_count":     d.Fetal.ValidCount,
			"total_clicks":    d.Fetal.TotalClicks,
			"avg_per_session": d.Fetal.AvgPerSession,
			"estimate_12h":    d.Fetal.Estimate12h,
		}
	}
	if d.Contraction != nil {
		meta["contraction"] = map[string]any{
			"count":                d.Contraction.Count,
			"avg_duration_seconds": d.Contraction.AvgDuration,
			"avg_interval_seconds": d.Contraction.AvgInterval,
			"labor_count":          d.Contraction.LaborCount,
		}
	}
	return meta
}

// Body renders the generated part of a day note.
func (d Day) Body(loc *time.Location) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s\n", d.Key)

	if d.Fetal != nil {
		b.WriteString("\n## Fetal movements\n\n")
		if len(d.Fetal.Entries) == 0 {
			b.WriteString("No counting sessions.\n")
		} else {
			b.WriteString("| Start | Movements | Clicks |\n|---|---|---|\n")
			for _, e := range d.Fetal.Entries {
				fmt.Fprintf(&b, "| %s | %d | %d |\n", format.StartTime(e.StartedAt, loc), e.ValidCount, e.TotalClicks)
			}
			fmt.Fprintf(&b, "\nSessions: %d, average %s per session, 12h estimate %d.\n",
				d.Fetal.Sessions, format.OneDecimal(d.Fetal.AvgPerSession), d.Fetal.Estimate12h)
		}
	}

	if d.Contraction != nil {
		b.WriteString("\n## Contractions\n\n")
		if len(d.Contraction.Entries) == 0 {
			b.WriteString("No contractions recorded.\n")
		} else {
			b.WriteString("| Start | Duration | Interval | Labor |\n|---|---|---|---|\n")
			for _, e := range d.Contraction.Entries {
				interval := format.Interval(e.IntervalSeconds)
				if e.ShowDash {
					interval = format.Dash
				}
				labor := ""
				if e.IsLabor {
					labor = "yes"
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", format.StartTime(e.StartedAt, loc), format.Clock(e.DurationSeconds), interval, labor)
			}
			fmt.Fprintf(&b, "\nCount: %d, average duration %s, average interval %s, labor pattern %d.\n",
				d.Contraction.Count, format.Clock(d.Contraction.AvgDuration), format.Interval(d.Contraction.AvgInterval), d.Contraction.LaborCount)
		}
	}
	return b.String()
}
