package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/prospect/internal/adapters/repository"
	"github.com/okian/prospect/internal/config"
)

func newMigrateCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|VERSION]",
		Short: "Apply or roll back the athlete schema",
		Long: `Move the configured SQL database to a schema version.

  up       apply every pending migration (default)
  down     roll back every migration
  VERSION  migrate up or down to the given version`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			if cfg.DBDriver == config.DriverMemory {
				return fmt.Errorf("migrate needs a SQL db_driver, got %q", cfg.DBDriver)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			target, err := parseTarget(args)
			if err != nil {
				return err
			}

			res, err := repository.Migrate(cmd.Context(), cfg.DBDriver, cfg.DBDSN, target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed {
				_, _ = color.New(color.FgHiBlack).Fprintf(out, "%s schema already at version %d\n", cfg.DBDriver, res.From)
				return nil
			}
			_, _ = color.New(color.FgGreen).Fprintf(out, "%s schema migrated %d -> %d\n", cfg.DBDriver, res.From, res.To)
			return nil
		},
	}
}

// parseTarget maps the optional argument to a Migrate target.
func parseTarget(args []string) (int, error) {
	if len(args) == 0 {
		return -1, nil
	}
	switch args[0] {
	case "up":
		return -1, nil
	case "down":
		return 0, nil
	}
	v, err := strconv.Atoi(args[0])
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid migration target %q: want up, down or a positive version", args[0])
	}
	return v, nil
}
