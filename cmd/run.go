package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/internal/account"
	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/observability"
	"github.com/xkilldash9x/netlogin/internal/service"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Log in with every configured account and send the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts.factory)
		},
	}
	addRunFlags(runCmd)
	return runCmd
}

func addRunFlags(cmd *cobra.Command) {
	defaults := config.NewDefaultConfig()
	flags := cmd.Flags()
	flags.String("accounts", "", "accounts as user:password pairs separated by ',' or ';' (overrides config/env)")
	flags.Duration("delay", defaults.Run().AccountDelay, "pause between consecutive accounts")
	flags.Bool("headless", defaults.Browser().Headless, "run the browser without a window")
	flags.Bool("dry-run", false, "print the report instead of sending notifications")
}

// applyRunFlags copies explicitly set run flags onto cfg, so they override the
// file and environment. Unset flags leave the loaded values alone.
func applyRunFlags(cmd *cobra.Command, cfg config.Interface) error {
	flags := cmd.Flags()
	if flags.Changed("accounts") {
		v, err := flags.GetString("accounts")
		if err != nil {
			return err
		}
		cfg.SetAccounts(v)
	}
	if flags.Changed("delay") {
		d, err := flags.GetDuration("delay")
		if err != nil {
			return err
		}
		if d < 0 {
			return fmt.Errorf("--delay must not be negative, got %s", d)
		}
		cfg.SetAccountDelay(d)
	}
	if flags.Changed("headless") {
		b, err := flags.GetBool("headless")
		if err != nil {
			return err
		}
		cfg.SetBrowserHeadless(b)
	}
	if flags.Changed("dry-run") {
		b, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.SetDryRun(b)
	}
	return nil
}

// runLogin parses the accounts, runs them and delivers the report.
func runLogin(cmd *cobra.Command, factory service.ComponentFactory) error {
	ctx := cmd.Context()
	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()

	creds, err := account.Parse(cfg.Run().Accounts)
	if err != nil {
		if errors.Is(err, account.ErrNoAccounts) {
			return fmt.Errorf("%w (set --accounts, NETLOGIN_RUN_ACCOUNTS or ACCOUNTS)", err)
		}
		return err
	}
	logger.Info("Accounts loaded.", zap.Int("count", len(creds)), zap.Strings("users", account.Users(creds)))

	components, err := factory.Create(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	if cfg.Run().DryRun {
		summary := components.Orchestrator.RunAll(ctx, creds)
		fmt.Fprintln(cmd.OutOrStdout(), components.Renderer.Render(summary))
		logger.Info("Dry run: notifications skipped.")
		return runOutcome(ctx, logger, summary.SuccessCount, summary.TotalCount)
	}

	summary := components.Execute(ctx, creds)
	return runOutcome(ctx, logger, summary.SuccessCount, summary.TotalCount)
}

// runOutcome logs the tally. Failed logins do not fail the command; an
// interrupted run reports context.Canceled.
func runOutcome(ctx context.Context, logger *zap.Logger, success, total int) error {
	logger.Info("Run complete.", zap.Int("succeeded", success), zap.Int("total", total))
	if err := ctx.Err(); err != nil {
		logger.Warn("Run was interrupted; remaining accounts were skipped.")
		return err
	}
	return nil
}
