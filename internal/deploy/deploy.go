// Package deploy coordinates redeploys that carry validated fixes.
package deploy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/remedy/internal/clock"
	"github.com/mrz1836/remedy/internal/ctxutil"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

// Trigger performs the actual redeploy for a commit and fix set.
// Implementations are external collaborators (deployment systems, CD
// pipelines); the coordinator only owns the calling discipline.
type Trigger interface {
	Trigger(ctx context.Context, commitID string, fixes []domain.AppliedFix) (deploymentID string, err error)
}

// Coordinator triggers redeploys and normalizes their outcome.
//
// A failed redeploy is fatal to the current run. The coordinator does
// not retry internally; the next monitoring attempt determines whether
// the system recovered.
type Coordinator struct {
	trigger Trigger
	clk     clock.Clock
	logger  zerolog.Logger
}

// NewCoordinator creates a redeploy coordinator over the given trigger.
func NewCoordinator(trigger Trigger, clk clock.Clock, logger zerolog.Logger) *Coordinator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Coordinator{trigger: trigger, clk: clk, logger: logger}
}

// Redeploy triggers a new deployment carrying the outcome's fixes.
func (c *Coordinator) Redeploy(ctx context.Context, rctx domain.RemediationContext, outcome domain.FixOutcome) (domain.DeployResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.DeployResult{}, err
	}

	deploymentID, err := c.trigger.Trigger(ctx, rctx.CommitID, outcome.Fixes)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("commit_id", rctx.CommitID).
			Int("fixes", len(outcome.Fixes)).
			Msg("redeploy trigger failed")
		return domain.DeployResult{}, fmt.Errorf("%w: %s", remerrors.ErrRedeployFailed, err)
	}

	result := domain.DeployResult{
		Success:      true,
		DeploymentID: deploymentID,
		TriggeredAt:  c.clk.Now().UTC(),
	}

	c.logger.Info().
		Str("commit_id", rctx.CommitID).
		Str("deployment_id", deploymentID).
		Int("fixes", len(outcome.Fixes)).
		Msg("redeploy triggered")

	return result, nil
}
