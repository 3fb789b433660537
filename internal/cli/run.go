package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/remedy/internal/analysis"
	"github.com/mrz1836/remedy/internal/autofix"
	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/config"
	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/deploy"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
	"github.com/mrz1836/remedy/internal/escalate"
	"github.com/mrz1836/remedy/internal/monitor"
	"github.com/mrz1836/remedy/internal/pipeline"
	"github.com/mrz1836/remedy/internal/remediation"
	"github.com/mrz1836/remedy/internal/signal"
	"github.com/mrz1836/remedy/internal/store"
	"github.com/mrz1836/remedy/internal/tui"
)

// runFlags holds flags specific to the run command.
type runFlags struct {
	branch        string
	maxAttempts   int
	baseDelay     time.Duration
	workDir       string
	rulesFile     string
	sessionDir    string
	noBell        bool
	checksTimeout time.Duration
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, global *GlobalFlags) {
	root.AddCommand(newRunCmd(global))
}

// newRunCmd creates the run command that executes the remediation loop
// for one commit.
func newRunCmd(global *GlobalFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <commit>",
		Short: "Run the remediation loop for a commit",
		Long: `Run the remediation loop for a commit whose pipeline failed.

Each attempt checks CI, performance, and security status, classifies any
failure, applies confidence-gated automatic fixes, validates them, and
redeploys. Between failing attempts the loop backs off exponentially
(base delay doubled each attempt). The run ends when the pipeline
recovers, the attempt budget is exhausted, or the escalation policy
raises an emergency or rollback.

Examples:
  remedy run abc123def                 # Remediate with defaults
  remedy run abc123def --branch main   # Record the branch in the session
  remedy run abc123def --max-attempts 5 --base-delay 10s
  remedy run abc123def -o json         # Machine-readable result

Exit codes:
  0: Pipeline recovered
  1: Remediation failed or was escalated
  2: Invalid input`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemediation(cmd.Context(), cmd.OutOrStdout(), global, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.branch, "branch", "", "Branch the commit belongs to (recorded in the session)")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 0, "Monitoring attempt budget (default 3)")
	cmd.Flags().DurationVar(&flags.baseDelay, "base-delay", 0, "Backoff before the second attempt (default 30s)")
	cmd.Flags().StringVar(&flags.workDir, "work-dir", "", "Directory collaborator commands run in (default \".\")")
	cmd.Flags().StringVar(&flags.rulesFile, "rules-file", "", "Fix rule catalog replacing the built-in rules")
	cmd.Flags().StringVar(&flags.sessionDir, "session-dir", "", "Directory session records are stored in (default ~/.remedy/sessions)")
	cmd.Flags().BoolVar(&flags.noBell, "no-bell", false, "Disable terminal bell notifications")
	cmd.Flags().DurationVar(&flags.checksTimeout, "checks-timeout", 0, "Timeout for a single status check (default 2m)")

	return cmd
}

// runRemediation loads configuration, wires the component graph, and
// executes the remediation loop for commitID.
func runRemediation(ctx context.Context, w io.Writer, global *GlobalFlags, flags *runFlags, commitID string) error {
	if commitID == "" {
		return remerrors.NewExitCode2Error(fmt.Errorf("commit id %w", remerrors.ErrEmptyValue))
	}

	tui.CheckNoColor()
	out := tui.NewOutput(w, global.Output)
	logger := GetLogger()

	cfg, err := loadRunConfig(ctx, flags)
	if err != nil {
		return err
	}

	// Graceful shutdown: Ctrl+C cancels the loop; the session record is
	// finalized as failed before the process exits.
	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	ctx = handler.Context()

	orch, err := buildOrchestrator(cfg, global, flags, logger)
	if err != nil {
		return err
	}

	rctx := domain.RemediationContext{
		CommitID: commitID,
		Branch:   flags.branch,
	}

	result, err := orch.Run(ctx, rctx)
	if err != nil {
		select {
		case <-handler.Interrupted():
			out.Warning("remediation interrupted")
		default:
		}
		return err
	}

	if err := outputRunResult(out, global.Output, result); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("remediation failed: %s", result.Error)
	}
	return nil
}

// loadRunConfig loads layered configuration and applies run flag overrides.
func loadRunConfig(ctx context.Context, flags *runFlags) (*config.Config, error) {
	overrides := &config.Config{}
	overrides.Remediation.MaxAttempts = flags.maxAttempts
	overrides.Remediation.BaseDelay = flags.baseDelay
	overrides.Remediation.RulesFile = flags.rulesFile
	overrides.Checks.WorkDir = flags.workDir
	overrides.Checks.Timeout = flags.checksTimeout
	overrides.Store.Dir = flags.sessionDir

	cfg, err := config.LoadWithOverrides(ctx, overrides)
	if err != nil {
		return nil, err
	}
	if flags.noBell {
		cfg.Notifications.Bell = false
	}
	return cfg, nil
}

// buildOrchestrator wires the full component graph from configuration:
// session store, monitoring collaborators, analysis, auto-fix, deploy,
// and escalation, all feeding the orchestrator.
func buildOrchestrator(cfg *config.Config, global *GlobalFlags, flags *runFlags, logger zerolog.Logger) (*remediation.Orchestrator, error) {
	sessions, err := openSessionStore(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}

	clk := clock.RealClock{}
	workDir := cfg.Checks.WorkDir

	ci := pipeline.NewTimeoutCIChecker(
		pipeline.NewGitHubCIChecker(workDir, pipeline.WithCILogger(logger)),
		cfg.Checks.Timeout,
	)
	perf := pipeline.NewTimeoutPerformanceChecker(
		pipeline.NewCommandPerformanceChecker(workDir, cfg.Checks.Performance, logger, nil),
		cfg.Checks.Timeout,
	)
	security := pipeline.NewTimeoutSecurityChecker(
		pipeline.NewCommandSecurityChecker(workDir, cfg.Checks.Security, logger, nil),
		cfg.Checks.Timeout,
	)
	mon := monitor.NewEngine(ci, perf, security, clk, logger)

	analyzer := analysis.NewEngine()

	proposer, err := newProposer(cfg.Remediation.RulesFile)
	if err != nil {
		return nil, err
	}
	applier := pipeline.NewCommandApplier(workDir, logger, nil)
	fixer := autofix.NewEngine(proposer, logger,
		autofix.WithApplier(applier),
		autofix.WithConfidenceThreshold(cfg.Remediation.ConfidenceThreshold),
		autofix.WithClock(clk),
	)
	validator := autofix.NewValidator(autofix.ConfidenceProber{}, applier, logger)

	trigger := pipeline.NewTimeoutDeployTrigger(
		pipeline.NewCommandDeployTrigger(workDir, cfg.Checks.Deploy, logger, nil),
		cfg.Checks.DeployTimeout,
	)
	deployer := deploy.NewCoordinator(trigger, clk, logger)

	notifier := escalate.NewBellNotifier(escalate.NotificationConfig{
		BellEnabled: cfg.Notifications.Bell,
		Quiet:       global.Quiet,
		Levels:      cfg.Notifications.Levels,
	}, logger)
	escalator := escalate.NewEngine(analyzer, cfg.Remediation.MaxAttempts, logger,
		escalate.WithWarnAttempts(cfg.EffectiveWarnAttempts()),
		escalate.WithMaxElapsed(cfg.Escalation.MaxElapsed),
		escalate.WithClock(clk),
		escalate.WithNotifier(notifier),
	)

	return remediation.NewOrchestrator(
		mon,
		analyzer,
		fixer,
		validator,
		deployer,
		escalator,
		sessions,
		remediation.Config{
			MaxAttempts: cfg.Remediation.MaxAttempts,
			BaseDelay:   cfg.Remediation.BaseDelay,
		},
		logger,
		remediation.WithClock(clk),
	), nil
}

// newProposer returns the fix rule proposer: the built-in catalog, or
// the operator's catalog when a rules file is configured.
func newProposer(rulesFile string) (autofix.Proposer, error) {
	if rulesFile != "" {
		return autofix.NewCatalogProposerFromFile(rulesFile)
	}
	return autofix.NewCatalogProposer()
}

// openSessionStore opens the file-backed session store at dir, or the
// default ~/.remedy/sessions when dir is empty.
func openSessionStore(dir string) (*store.SessionStore, error) {
	if dir == "" {
		remedyHome, err := getRemedyHome()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(remedyHome, constants.SessionsDir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	kv, err := store.NewFileKV(dir)
	if err != nil {
		return nil, err
	}
	return store.NewSessionStore(kv), nil
}

// outputRunResult renders the remediation result in the selected format.
func outputRunResult(out tui.Output, format string, result *domain.RemediationResult) error {
	if format == OutputJSON {
		return out.JSON(result)
	}

	if result.Success {
		out.Success(fmt.Sprintf("Pipeline recovered for %s after %d attempt(s)", result.CommitID, result.Attempts))
	} else {
		out.Error(fmt.Errorf("pipeline not recovered for %s after %d attempt(s): %s", result.CommitID, result.Attempts, result.Error))
		if logPath, err := LogFilePath(); err == nil {
			out.Info(fmt.Sprintf("  Log:           %s", logPath))
		}
	}

	out.Info(fmt.Sprintf("  Session:       %s", result.SessionID))
	out.Info(fmt.Sprintf("  Attempts:      %d", result.Attempts))
	out.Info(fmt.Sprintf("  Fixes applied: %d", len(result.FixesApplied)))
	for _, fix := range result.FixesApplied {
		out.Info(fmt.Sprintf("    - %s (%s)", fix.Type, fix.Description))
	}
	return nil
}
