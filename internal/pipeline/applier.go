package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/autofix"
	"github.com/mrz1836/remedy/internal/domain"
)

// CommandApplier carries out fixes whose catalog rule names a command.
// Fixes without a command are recorded only; they are re-run requests
// realized by the subsequent redeploy.
type CommandApplier struct {
	workDir string
	logger  zerolog.Logger
	cmdExec CommandExecutor
}

// NewCommandApplier creates an applier running fix commands in workDir.
func NewCommandApplier(workDir string, logger zerolog.Logger, cmdExec CommandExecutor) *CommandApplier {
	if cmdExec == nil {
		cmdExec = defaultCommandExecutor{}
	}
	return &CommandApplier{workDir: workDir, logger: logger, cmdExec: cmdExec}
}

// Apply runs the fix command when one is configured.
func (a *CommandApplier) Apply(ctx context.Context, fix autofix.CandidateFix, rctx domain.RemediationContext) error {
	// Catalog validation rejects blank commands, but a custom Proposer
	// may hand us anything; treat whitespace the same as no command.
	argv := strings.Fields(fix.Command)
	if len(argv) == 0 {
		a.logger.Info().
			Str("commit_id", rctx.CommitID).
			Str("fix_type", fix.Type).
			Msg("fix has no command, recorded for redeploy")
		return nil
	}

	if _, err := a.cmdExec.Execute(ctx, a.workDir, argv[0], argv[1:]...); err != nil {
		return err
	}

	a.logger.Info().
		Str("commit_id", rctx.CommitID).
		Str("fix_type", fix.Type).
		Str("command", fix.Command).
		Msg("fix command applied")

	return nil
}

// Revert records the rollback. Command-backed fixes here are one-shot
// infrastructure actions (cache purge, runner recycle) with nothing to
// undo; reverting them is a bookkeeping event.
func (a *CommandApplier) Revert(_ context.Context, fix domain.AppliedFix, rctx domain.RemediationContext) error {
	a.logger.Info().
		Str("commit_id", rctx.CommitID).
		Str("fix_type", fix.Type).
		Msg("fix rolled back")
	return nil
}

// Ensure CommandApplier implements the applier interface.
var _ autofix.Applier = (*CommandApplier)(nil)
