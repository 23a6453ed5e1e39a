package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/prospect/internal/domain/types"
)

func newRecomputeCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute [ATHLETE_ID...]",
		Short: "Recompute stored star ratings",
		Long: `Recompute star ratings from stored sub-scores and persist them.

With no arguments every athlete is recomputed. Ratings that already match
are rewritten unchanged and counted as processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := st.openService(ctx)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			var report types.BackfillReport
			if len(args) == 0 {
				report, err = svc.RecomputeAll(ctx)
			} else {
				report, err = svc.Recompute(ctx, args...)
			}
			printReport(cmd.OutOrStdout(), report)
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d athletes failed to recompute", report.Failed)
			}
			return nil
		},
	}
}

func printReport(w io.Writer, r types.BackfillReport) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	_, _ = fmt.Fprintf(w, "%s\n", bold("Recompute summary"))
	_, _ = fmt.Fprintf(w, "  processed:  %d\n", r.Processed)
	_, _ = fmt.Fprintf(w, "  changed:    %s\n", green(r.Changed))
	_, _ = fmt.Fprintf(w, "  duplicates: %s\n", yellow(r.Duplicates))
	if r.Failed > 0 {
		_, _ = fmt.Fprintf(w, "  failed:     %s\n", red(r.Failed))
	} else {
		_, _ = fmt.Fprintf(w, "  failed:     %d\n", r.Failed)
	}
	_, _ = fmt.Fprintf(w, "  took:       %dms\n", r.TookMS)
}
