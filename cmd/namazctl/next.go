package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

func newNextCmd(g *globalFlags) *cobra.Command {
	var (
		watch  bool
		notify time.Duration
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer and the time remaining",
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

			out := cmd.OutOrStdout()
			n := newNotifier(notify)
			if err := printNext(out, res.Days, time.Now(), n); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchNext(ctx, out, res.Days, time.Minute, time.Now, n)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute every minute until interrupted")
	cmd.Flags().DurationVar(&notify, "notify", 0, "alert once when the next prayer is this close, e.g. 15m (0 disables)")
	return cmd
}

// watchNext recomputes the countdown on every tick. The day is re-selected
// each time so the display rolls over at midnight.
func watchNext(ctx context.Context, w io.Writer, days prayer.ProviderResult, every time.Duration, clock func() time.Time, n *notifier) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printNext(w, days, clock(), n); err != nil {
				return err
			}
		}
	}
}

func printNext(w io.Writer, days prayer.ProviderResult, now time.Time, n *notifier) error {
	day, ok := prayer.SelectDayOrFirst(days, now)
	if !ok {
		return fmt.Errorf("no days in result")
	}
	info, err := prayer.NextPrayer(day, now)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, formatNext(info)); err != nil {
		return err
	}
	if msg, ok := n.check(info); ok {
		_, err = fmt.Fprintln(w, msg)
	}
	return err
}
