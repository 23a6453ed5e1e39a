package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/prospect/internal/domain/rating"
	"github.com/okian/prospect/internal/seed"
)

func newSeedCmd(st *state) *cobra.Command {
	sc := seed.Config{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create synthetic athletes against a running server and verify their ratings",
		Long: `Generate athlete profiles, create them through the HTTP API as their
owners, then check every stored rating and breakdown against the local
rating engine. Owner tokens are signed with auth_secret, so it must match
the server's.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := st.cfg.CheckAuthSecret(); err != nil {
				return err
			}
			sc.Secret = st.cfg.AuthSecret
			stats, err := seed.Run(cmd.Context(), sc)
			if stats != nil {
				printSeedStats(cmd.OutOrStdout(), stats)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&sc.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&sc.NumAthletes, "athletes", 1000, "number of athletes to create")
	f.IntVar(&sc.Workers, "workers", runtime.NumCPU()*2, "concurrent requests")
	f.DurationVar(&sc.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	f.IntVar(&sc.TopN, "top", 50, "listing page size checked for ordering")
	f.Uint64Var(&sc.Seed, "seed", 0, "generator seed (0 = random)")
	f.StringVar(&sc.OutputFile, "output", "", "write generated profiles to this JSON file")
	f.BoolVar(&sc.Verbose, "verbose", false, "log every failed request")
	return cmd
}

func printSeedStats(w io.Writer, s *seed.Stats) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	_, _ = fmt.Fprintf(w, "%s\n", bold("Seed summary"))
	_, _ = fmt.Fprintf(w, "  generated:  %d\n", s.Generated)
	_, _ = fmt.Fprintf(w, "  created:    %s\n", green(s.Created))
	_, _ = fmt.Fprintf(w, "  conflicts:  %d\n", s.Conflicts)
	_, _ = fmt.Fprintf(w, "  failed:     %d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "  verified:   %d\n", s.Verified)
	if s.Mismatches > 0 {
		_, _ = fmt.Fprintf(w, "  mismatches: %s\n", red(s.Mismatches))
	} else {
		_, _ = fmt.Fprintf(w, "  mismatches: %d\n", s.Mismatches)
	}

	stars := make([]float64, 0, len(s.ByStars))
	for v := range s.ByStars {
		stars = append(stars, v)
	}
	slices.Sort(stars)
	slices.Reverse(stars)
	for _, v := range stars {
		_, _ = fmt.Fprintf(w, "  %.1f stars  %-22s %d\n", v, rating.TierLabel(v), s.ByStars[v])
	}
}
