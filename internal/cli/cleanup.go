package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/remedy/internal/config"
	"github.com/mrz1836/remedy/internal/domain"
	"github.com/mrz1836/remedy/internal/store"
	"github.com/mrz1836/remedy/internal/tui"
)

// AddCleanupCommand adds the cleanup command to the root command.
func AddCleanupCommand(root *cobra.Command) {
	root.AddCommand(newCleanupCmd())
}

// newCleanupCmd creates the cleanup command for removing old session records.
func newCleanupCmd() *cobra.Command {
	var dryRun bool
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old terminal session records",
		Long: `Remove session records that reached a terminal status longer ago than
the retention period. Running sessions are never removed.

The retention period comes from store.cleanup_max_age (default 7 days)
and can be overridden with --max-age.

Use --dry-run to preview what would be deleted without removing files.

Examples:
  remedy cleanup                  # Remove sessions older than the retention period
  remedy cleanup --dry-run        # Preview what would be deleted
  remedy cleanup --max-age 24h    # Remove terminal sessions older than a day

Exit codes:
  0: Cleanup completed successfully
  1: Cleanup failed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(cmd.Context(), cmd, cmd.OutOrStdout(), dryRun, maxAge)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would be deleted without removing files")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Retention period override (e.g. 24h, 7d is 168h)")

	return cmd
}

// runCleanup executes the cleanup command.
func runCleanup(ctx context.Context, cmd *cobra.Command, w io.Writer, dryRun bool, maxAgeFlag time.Duration) error {
	outputFormat := cmd.Flag("output").Value.String()
	tui.CheckNoColor()
	out := tui.NewOutput(w, outputFormat)

	cfg, err := config.Load(ctx)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	maxAge := cfg.Store.CleanupMaxAge
	if maxAgeFlag > 0 {
		maxAge = maxAgeFlag
	}

	sessions, err := openSessionStore(cfg.Store.Dir)
	if err != nil {
		return err
	}

	if dryRun {
		return cleanupDryRun(ctx, sessions, out, outputFormat, maxAge)
	}

	removed, err := sessions.Cleanup(ctx, maxAge, time.Now().UTC())
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return out.JSON(map[string]any{
			"success": true,
			"dry_run": false,
			"deleted": removed,
			"max_age": maxAge.String(),
		})
	}

	if removed == 0 {
		out.Info("No sessions eligible for cleanup.")
		return nil
	}
	out.Success(fmt.Sprintf("Removed %d session record(s) older than %s", removed, maxAge))
	return nil
}

// cleanupDryRun previews the sessions the cleanup would delete.
func cleanupDryRun(ctx context.Context, sessions *store.SessionStore, out tui.Output, outputFormat string, maxAge time.Duration) error {
	records, err := sessions.List(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	var stale []*domain.Session
	for _, session := range records {
		if session.Terminal() && session.EndedAt != nil && session.EndedAt.Before(cutoff) {
			stale = append(stale, session)
		}
	}

	if outputFormat == OutputJSON {
		ids := make([]string, len(stale))
		for i, session := range stale {
			ids[i] = session.ID
		}
		return out.JSON(map[string]any{
			"success":      true,
			"dry_run":      true,
			"would_delete": len(stale),
			"max_age":      maxAge.String(),
			"sessions":     ids,
		})
	}

	if len(stale) == 0 {
		out.Info("No sessions eligible for cleanup.")
		return nil
	}

	out.Info(fmt.Sprintf("Would delete %d session record(s) (dry-run):", len(stale)))
	for _, session := range stale {
		out.Info(fmt.Sprintf("  - %s (%s, ended %s)", session.ID, session.Status, session.EndedAt.Format("2006-01-02")))
	}
	return nil
}
