// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/observability"
	"github.com/xkilldash9x/netlogin/internal/service"
)

const (
	envPrefix      = "NETLOGIN"
	defaultEnvFile = ".env"
)

type contextKey string

const configKey contextKey = "config"

// rootOptions carries the state shared by the command tree.
type rootOptions struct {
	cfgFile string
	envFile string
	factory service.ComponentFactory
}

// NewRootCommand builds the command tree wired to the production components.
func NewRootCommand() *cobra.Command {
	return newRootCmd(service.NewComponentFactory())
}

func newRootCmd(factory service.ComponentFactory) *cobra.Command {
	opts := &rootOptions{factory: factory}

	rootCmd := &cobra.Command{
		Use:   "netlogin",
		Short: "Logs in to netlib.re with every configured account and reports the results.",
		Long: `netlogin signs in to each configured account in turn with a headless browser,
then sends a summary report to Telegram and/or a WeCom group robot.

Accounts are read from --accounts, NETLOGIN_RUN_ACCOUNTS or ACCOUNTS as a list of
user:password pairs separated by ',' or ';'.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				// The logger has no config yet; fall back to defaults so the error is still reported.
				observability.InitializeLogger(config.NewDefaultConfig().Logger())
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			loggerCfg := cfg.Logger()
			if loggerCfg.LogFile, err = homedir.Expand(loggerCfg.LogFile); err != nil {
				return fmt.Errorf("invalid log file path: %w", err)
			}
			observability.InitializeLogger(loggerCfg)
			observability.GetLogger().Debug("Starting netlogin.", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts.factory)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	addRunFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command tree under ctx and returns the command error, if any.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed.", zap.Error(err))
	}
	observability.Sync()
	return err
}

// loadConfig layers defaults, the config file, the dotenv file, the environment
// and the invoked command's flags, in increasing precedence.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := loadEnvFile(o.envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	config.SetDefaults(v)

	if o.cfgFile != "" {
		path, err := homedir.Expand(o.cfgFile)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return nil, err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("invalid env file path: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading env file %s: %w", expanded, err)
	}
	return nil
}

// configFrom returns the configuration stored by PersistentPreRunE.
func configFrom(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}
