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

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(root *cobra.Command) {
	root.AddCommand(newStatusCmd())
}

// newStatusCmd creates the status command for inspecting session records.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [session-id]",
		Short: "Show remediation session status",
		Long: `Show the status of remediation sessions.

Without arguments, lists all recorded sessions newest first. With a
session id, shows the full record: attempt history, applied fixes, and
the status transition audit trail.

Examples:
  remedy status                # List all sessions
  remedy status rem-a1b2c3d4   # Show one session in detail
  remedy status -o json        # Machine-readable listing

Exit codes:
  0: Status displayed
  1: Session not found or store unavailable`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) > 0 {
				sessionID = args[0]
			}
			return runStatus(cmd.Context(), cmd, cmd.OutOrStdout(), sessionID)
		},
	}

	return cmd
}

// runStatus executes the status command.
func runStatus(ctx context.Context, cmd *cobra.Command, w io.Writer, sessionID string) error {
	outputFormat := cmd.Flag("output").Value.String()
	tui.CheckNoColor()
	out := tui.NewOutput(w, outputFormat)

	sessions, err := openConfiguredSessionStore(ctx)
	if err != nil {
		return err
	}

	if sessionID != "" {
		return showSession(ctx, sessions, out, outputFormat, sessionID)
	}
	return listSessions(ctx, sessions, out, outputFormat)
}

// openConfiguredSessionStore opens the session store at the configured
// directory, falling back to defaults when config cannot be loaded.
func openConfiguredSessionStore(ctx context.Context) (*store.SessionStore, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return openSessionStore(cfg.Store.Dir)
}

// showSession renders one session record in detail.
func showSession(ctx context.Context, sessions *store.SessionStore, out tui.Output, outputFormat, sessionID string) error {
	session, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return out.JSON(session)
	}

	out.Info(fmt.Sprintf("Session %s", session.ID))
	out.Info(fmt.Sprintf("  Status:   %s", tui.FormatStatusWithIcon(session.Status, session.Status.String())))
	out.Info(fmt.Sprintf("  Commit:   %s", session.Context.CommitID))
	if session.Context.Branch != "" {
		out.Info(fmt.Sprintf("  Branch:   %s", session.Context.Branch))
	}
	out.Info(fmt.Sprintf("  Attempts: %d", session.Attempts))
	out.Info(fmt.Sprintf("  Started:  %s", session.StartedAt.Format(time.RFC3339)))
	if session.EndedAt != nil {
		out.Info(fmt.Sprintf("  Ended:    %s (%s)", session.EndedAt.Format(time.RFC3339), session.Duration.Round(time.Second)))
	}
	if session.LastError != "" {
		out.Warning(fmt.Sprintf("  Error:    %s", session.LastError))
	}

	showSessionHistory(out, session)
	showSessionFixes(out, session)
	showSessionTransitions(out, session)

	return nil
}

// showSessionHistory renders the per-attempt monitoring history.
func showSessionHistory(out tui.Output, session *domain.Session) {
	if len(session.History) == 0 {
		return
	}
	out.Info("")
	out.Info("Attempt history:")
	for i, check := range session.History {
		line := fmt.Sprintf("  %d. %s (ci=%s perf=%s security=%s)",
			i+1, check.Overall, check.CI, check.Performance, check.Security)
		out.Info(line)
		for _, job := range check.FailedJobs {
			out.Info(fmt.Sprintf("       failed: %s", job))
		}
	}
}

// showSessionFixes renders the applied fixes.
func showSessionFixes(out tui.Output, session *domain.Session) {
	if len(session.FixesApplied) == 0 {
		return
	}
	out.Info("")
	out.Info("Fixes applied:")
	for _, fix := range session.FixesApplied {
		out.Info(fmt.Sprintf("  - %s: %s (confidence %.2f)", fix.Type, fix.Description, fix.Confidence))
	}
}

// showSessionTransitions renders the status transition audit trail.
func showSessionTransitions(out tui.Output, session *domain.Session) {
	if len(session.Transitions) == 0 {
		return
	}
	out.Info("")
	out.Info("Transitions:")
	for _, tr := range session.Transitions {
		out.Info(fmt.Sprintf("  %s  %s → %s  %s",
			tr.Timestamp.Format(time.RFC3339), tr.FromStatus, tr.ToStatus, tr.Reason))
	}
}

// listSessions renders all recorded sessions newest first.
func listSessions(ctx context.Context, sessions *store.SessionStore, out tui.Output, outputFormat string) error {
	records, err := sessions.List(ctx)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return out.JSON(map[string]any{
			"count":    len(records),
			"sessions": records,
		})
	}

	if len(records) == 0 {
		out.Info("No remediation sessions recorded.")
		return nil
	}

	out.Info(fmt.Sprintf("%d session(s):", len(records)))
	for _, session := range records {
		line := fmt.Sprintf("  %s  %s  %s  attempts=%d",
			session.ID,
			tui.FormatStatusWithIcon(session.Status, string(session.Status)),
			session.Context.CommitID,
			session.Attempts)
		out.Info(line)
	}
	return nil
}
