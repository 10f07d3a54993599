package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

const barWidth = 20

func renderTable(w io.Writer, days prayer.ProviderResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"Tarih"}
	for _, n := range prayer.Names {
		header = append(header, n.Label())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, d := range days {
		row := []string{d.GregorianDate}
		for _, n := range prayer.Names {
			row = append(row, d.Time(n))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// formatNext renders e.g. "Akşam 19:45  1s 45dk  [#########-----------] 46%".
func formatNext(info prayer.NextPrayerInfo) string {
	filled := int(math.Round(info.ProgressPercent / 100 * barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	return fmt.Sprintf("%s %s  %s  [%s] %.0f%%", info.Label, info.Time, info.RemainingLabel, bar, info.ProgressPercent)
}
