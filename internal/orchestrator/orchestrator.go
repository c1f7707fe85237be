// File: internal/orchestrator/orchestrator.go
// Description: Runs every configured account through the login runner, one at
// a time, and folds the results into a RunSummary.

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/timeutil"
)

// SkippedMessage is the result message for accounts not attempted because the run was cancelled.
const SkippedMessage = "skipped: run cancelled"

// Orchestrator sequences login attempts across accounts.
type Orchestrator struct {
	runner schemas.AccountRunner
	delay  time.Duration
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	newID  func() string
}

var _ schemas.Orchestrator = (*Orchestrator)(nil)

// New creates an Orchestrator that waits delay between consecutive accounts.
func New(runner schemas.AccountRunner, delay time.Duration, logger *zap.Logger) (*Orchestrator, error) {
	if runner == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	if delay < 0 {
		return nil, fmt.Errorf("account delay must not be negative, got %s", delay)
	}
	return &Orchestrator{
		runner: runner,
		delay:  delay,
		logger: logger.Named("orchestrator"),
		sleep:  timeutil.Sleep,
		newID:  uuid.NewString,
	}, nil
}

// RunAll attempts every credential exactly once, in order, never overlapping.
// If ctx is cancelled, the remaining accounts are recorded as skipped failures
// so the summary still has one entry per credential.
func (o *Orchestrator) RunAll(ctx context.Context, creds []schemas.Credential) schemas.RunSummary {
	runID := o.newID()
	logger := o.logger.With(zap.String("run_id", runID))
	logger.Info("Starting run.", zap.Int("accounts", len(creds)))

	results := make([]schemas.AccountResult, 0, len(creds))
	for i := range creds {
		results = append(results, o.step(ctx, logger, i, creds))
	}

	summary := schemas.NewRunSummary(runID, results)
	logger.Info("Run complete.",
		zap.Int("succeeded", summary.SuccessCount),
		zap.Int("total", summary.TotalCount))
	return summary
}

// step produces the result for creds[i], including the pause that precedes it.
func (o *Orchestrator) step(ctx context.Context, logger *zap.Logger, i int, creds []schemas.Credential) schemas.AccountResult {
	cred := creds[i]
	if i > 0 && o.delay > 0 {
		logger.Info("Waiting before next account.", zap.Duration("delay", o.delay))
		if err := o.sleep(ctx, o.delay); err != nil {
			return skipped(cred)
		}
	}
	if ctx.Err() != nil {
		return skipped(cred)
	}

	logger.Info("Processing account.",
		zap.Int("index", i+1),
		zap.Int("total", len(creds)),
		zap.Object("account", cred))
	return o.runner.Run(ctx, cred)
}

func skipped(cred schemas.Credential) schemas.AccountResult {
	return schemas.AccountResult{
		User:    cred.User,
		Success: false,
		Outcome: schemas.OutcomeStepError,
		Message: fmt.Sprintf("❌ %s %s", cred.User, SkippedMessage),
	}
}
