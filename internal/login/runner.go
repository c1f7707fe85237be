// Package login drives one browser through the target site's login form.
package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/browser"
	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/timeutil"
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner performs single-account login attempts. It holds no per-account state
// and may be reused sequentially.
type Runner struct {
	factory browser.Factory
	geo     schemas.GeoResolver
	target  config.TargetConfig
	logger  *zap.Logger
	sleep   SleepFunc
}

var _ schemas.AccountRunner = (*Runner)(nil)

// Option configures a Runner.
type Option func(*Runner)

// WithSleep replaces the settle-wait implementation.
func WithSleep(fn SleepFunc) Option {
	return func(r *Runner) { r.sleep = fn }
}

// NewRunner creates a Runner against target.
func NewRunner(factory browser.Factory, geo schemas.GeoResolver, target config.TargetConfig, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		factory: factory,
		geo:     geo,
		target:  target,
		logger:  logger.Named("login"),
		sleep:   timeutil.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run attempts one login. It never returns an error: failures are reported in
// the result. The browser is released on every path.
func (r *Runner) Run(ctx context.Context, cred schemas.Credential) schemas.AccountResult {
	logger := r.logger.With(zap.Object("account", cred))
	logger.Info("Starting login.")

	var page browser.Page
	defer func() {
		if page == nil {
			return
		}
		if err := page.Close(); err != nil {
			logger.Warn("Failed to close browser.", zap.Error(err))
		}
		logger.Debug("Step complete.", zap.Stringer("state", StateClosed))
	}()

	authenticated, err := r.login(ctx, cred, &page, logger)

	result := schemas.AccountResult{User: cred.User}
	var stepErr *StepError
	switch {
	case errors.As(err, &stepErr):
		result.Outcome = schemas.OutcomeStepError
		result.Message = fmt.Sprintf("❌ %s login error: %s", cred.User, stepErr.Error())
		logger.Warn("Login step failed.", zap.Stringer("step", stepErr.Step), zap.Error(stepErr.Err))
	case authenticated:
		result.Success = true
		result.Outcome = schemas.OutcomeSuccess
		result.Message = fmt.Sprintf("✅ %s login succeeded", cred.User)
		logger.Info("Login succeeded.")
	default:
		result.Outcome = schemas.OutcomeAuthFailed
		result.Message = fmt.Sprintf("❌ %s login failed", cred.User)
		logger.Info("Login failed: no authenticated marker on page.")
	}

	if geo := r.enrich(ctx, logger); geo != nil {
		result.Geo = geo
		result.Message += fmt.Sprintf("\n📍 IP: %s\n🌍 Location: %s", geo.IP, geo.Location)
	}
	return result
}

// login runs Launching through ClassifyingResult. Any failure is returned as a
// *StepError; a completed sequence returns the classification.
func (r *Runner) login(ctx context.Context, cred schemas.Credential, page *browser.Page, logger *zap.Logger) (authenticated bool, err error) {
	state := StateLaunching
	defer func() {
		if p := recover(); p != nil {
			err = &StepError{Step: state, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	step := func(s State, fn func() error) error {
		state = s
		logger.Debug("Entering step.", zap.Stringer("state", s))
		if err := fn(); err != nil {
			return &StepError{Step: s, Err: err}
		}
		return nil
	}

	t := r.target
	steps := []struct {
		state State
		fn    func() error
	}{
		{StateLaunching, func() error {
			p, err := r.factory.NewPage(ctx)
			if err != nil {
				return err
			}
			*page = p
			return nil
		}},
		{StateNavigating, func() error {
			if err := r.bounded(ctx, t.PageTimeout, func(c context.Context) error { return (*page).Navigate(c, t.URL) }); err != nil {
				return err
			}
			r.waitIdle(ctx, *page, logger)
			return r.sleep(ctx, t.PostNavigateWait)
		}},
		{StateTriggeringAuth, func() error {
			if err := r.bounded(ctx, t.TriggerTimeout, func(c context.Context) error { return (*page).Click(c, t.LoginSelector) }); err != nil {
				return err
			}
			return r.sleep(ctx, t.PostTriggerWait)
		}},
		{StateFillingUsername, func() error {
			if err := r.bounded(ctx, t.PageTimeout, func(c context.Context) error { return (*page).Fill(c, t.UsernameSelector, cred.User) }); err != nil {
				return err
			}
			return r.sleep(ctx, t.PostFillWait)
		}},
		{StateFillingPassword, func() error {
			if err := r.bounded(ctx, t.PageTimeout, func(c context.Context) error { return (*page).Fill(c, t.PasswordSelector, cred.Pass) }); err != nil {
				return err
			}
			return r.sleep(ctx, t.PostFillWait)
		}},
		{StateSubmitting, func() error {
			if err := r.bounded(ctx, t.PageTimeout, func(c context.Context) error { return (*page).Click(c, t.SubmitSelector) }); err != nil {
				return err
			}
			r.waitIdle(ctx, *page, logger)
			return r.sleep(ctx, t.PostSubmitWait)
		}},
		{StateClassifyingResult, func() error {
			var content string
			err := r.bounded(ctx, t.PageTimeout, func(c context.Context) error {
				var err error
				content, err = (*page).Content(c)
				return err
			})
			if err != nil {
				return err
			}
			authenticated = IsAuthenticated(content, cred.User, t.SuccessMarkers)
			return nil
		}},
	}

	for _, s := range steps {
		if err := step(s.state, s.fn); err != nil {
			return false, err
		}
	}
	return authenticated, nil
}

// bounded runs fn under a per-operation timeout.
func (r *Runner) bounded(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := fn(opCtx)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("timed out after %s: %w", timeout, err)
	}
	return err
}

// waitIdle waits for network quiet, bounded by the page timeout. A timeout is
// logged and ignored.
func (r *Runner) waitIdle(ctx context.Context, page browser.Page, logger *zap.Logger) {
	err := r.bounded(ctx, r.target.PageTimeout, func(c context.Context) error {
		return page.WaitNetworkIdle(c, r.target.IdleQuietPeriod)
	})
	if err != nil {
		logger.Debug("Network did not go idle.", zap.Error(err))
	}
}

// enrich resolves geolocation. A panicking resolver yields nil so the primary
// outcome is preserved.
func (r *Runner) enrich(ctx context.Context, logger *zap.Logger) (geo *schemas.GeoInfo) {
	if r.geo == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Geolocation enrichment panicked.", zap.Any("panic", p))
			geo = nil
		}
	}()
	logger.Debug("Entering step.", zap.Stringer("state", StateEnriching))
	info := r.geo.Resolve(ctx)
	logger.Info("Resolved origin.", zap.String("ip", info.IP), zap.String("location", info.Location))
	return &info
}
