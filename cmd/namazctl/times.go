package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

func newTimesCmd(g *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "times",
		Short: "Show today's prayer times (or every day the provider returned)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(g)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.service.Resolve(cmd.Context(), rt.city, rt.provider)
			if err != nil {
				return err
			}

			days := res.Days
			if !all {
				day, ok := prayer.SelectDayOrFirst(res.Days, time.Now())
				if !ok {
					return fmt.Errorf("no days in result")
				}
				days = prayer.ProviderResult{day}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) via %s%s\n\n", prayer.CityName(rt.city), rt.city, res.Provider, cachedSuffix(res.Cached))
			return renderTable(out, days)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every day returned by the provider")
	return cmd
}

func cachedSuffix(cached bool) string {
	if cached {
		return " (cached)"
	}
	return ""
}
