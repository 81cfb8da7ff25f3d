package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"troopstats/adapters/excel"
	"troopstats/adapters/legacy"
	"troopstats/adapters/memory"
	"troopstats/adapters/postgres"
	"troopstats/app"
	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
	"troopstats/domain/troop"
	"troopstats/internal"
	"troopstats/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [legacy-log.json]",
		Short: "Print the leaderboard of a single-device log",
		Long: `Compute streaks, totals and badges for a single-device log without
touching any database.

Example: troopstats stats ./habit_hang_meditation_v1.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, _, err := loadOffline(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(board)
			}
			return printBoard(cmd.OutOrStdout(), board)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the board as JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [legacy-log.json]",
		Short: "Write a single-device log and its leaderboard to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, groupLog, err := loadOffline(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := excel.Export(f, board, groupLog.Participants, groupLog.Entries); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "leaderboard.xlsx", "Spreadsheet to write")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var groupFlag string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "migrate [legacy-log.json]",
		Short: "Fold a single-device log into an existing troop",
		Long: `Insert every participant of the log into the troop under a fresh identity
and upsert their entries. The log file is renamed with a .migrated suffix once
the run finished without failures; after a partial run it is kept so the
command can be repeated.

DATABASE_URL selects the database.

Example: troopstats migrate ./log.json --group 0190f7a4-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := core.ParseGroupID(groupFlag)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := sqlx.ConnectContext(cmd.Context(), "postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			store := postgres.NewTroopStore(db)
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
			return runMigrate(cmd.Context(), app.NewReconciler(store, logger), args[0], groupID, cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes)
		},
	}

	cmd.Flags().StringVar(&groupFlag, "group", "", "ID of the troop to migrate into")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// runMigrate asks for consent, migrates, and consumes the file after a clean run
func runMigrate(ctx context.Context, reconciler *app.Reconciler, path string, groupID core.GroupID, in io.Reader, out io.Writer, assumeYes bool) error {
	legacyLog, err := legacy.Load(path)
	if err != nil {
		return err
	}
	if legacyLog.IsEmpty() {
		fmt.Fprintln(out, "Nothing to migrate.")
		return nil
	}

	if !assumeYes {
		fmt.Fprintf(out, "Migrate %d participants and %d entries into troop %s? [y/N] ",
			len(legacyLog.Participants), len(legacyLog.Entries), groupID)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	result, err := reconciler.Migrate(ctx, legacyLog, groupID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Migrated %d, skipped %d participants; %d entries upserted, %d dropped\n",
		result.Migrated, result.Skipped, result.EntriesUpserted, result.EntriesDropped)
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  failed %s\n", f.Error())
	}

	if result.Partial() {
		fmt.Fprintf(out, "Kept %s so the migration can be repeated\n", path)
		return nil
	}
	consumed, err := legacy.MarkConsumed(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Moved %s to %s\n", path, consumed)
	return nil
}

// loadOffline folds the log into a throwaway in-memory troop and ranks it
func loadOffline(ctx context.Context, path string) (*leaderboard.Board, *app.GroupLog, error) {
	legacyLog, err := legacy.Load(path)
	if err != nil {
		return nil, nil, err
	}

	store := memory.NewStore()
	logger := internal.NewLogger(internal.LogLevelWarn)
	boards := app.NewLeaderboardService(store, nil, logger)

	group := &troop.Group{Name: "Local log", JoinCode: "LOCALLOG", OwnerID: "local"}
	if err := store.CreateGroup(ctx, group); err != nil {
		return nil, nil, err
	}
	if _, err := app.NewReconciler(store, logger).Migrate(ctx, legacyLog, group.ID); err != nil {
		return nil, nil, err
	}

	board, err := boards.Leaderboard(ctx, group.ID)
	if err != nil {
		return nil, nil, err
	}
	groupLog, err := boards.GroupLog(ctx, group.ID)
	if err != nil {
		return nil, nil, err
	}
	return board, groupLog, nil
}

func printBoard(w io.Writer, board *leaderboard.Board) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSTREAK\tBEST\tHANG\tMED\tDAYS\tBADGES")
	for _, r := range board.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Position,
			r.Name,
			leaderboard.DisplayStreak(r.CurrentStreak),
			leaderboard.DisplayStreak(r.BestStreak),
			leaderboard.DisplayDuration(r.TotalHang),
			leaderboard.DisplayDuration(r.TotalMed),
			leaderboard.DisplayCount(r.ActiveDays),
			leaderboard.BadgeIcons(r.Badges),
		)
	}
	return tw.Flush()
}
