// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Target() TargetConfig
	Run() RunConfig
	Geo() GeoConfig
	Notify() NotifyConfig
	Network() NetworkConfig

	// Run Setters
	SetAccounts(string)
	SetAccountDelay(time.Duration)
	SetDryRun(bool)

	// Browser Setters
	SetBrowserHeadless(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	TargetCfg  TargetConfig  `mapstructure:"target" yaml:"target"`
	RunCfg     RunConfig     `mapstructure:"run" yaml:"run"`
	GeoCfg     GeoConfig     `mapstructure:"geo" yaml:"geo"`
	NotifyCfg  NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	NetworkCfg NetworkConfig `mapstructure:"network" yaml:"network"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Target() TargetConfig   { return c.TargetCfg }
func (c *Config) Run() RunConfig         { return c.RunCfg }
func (c *Config) Geo() GeoConfig         { return c.GeoCfg }
func (c *Config) Notify() NotifyConfig   { return c.NotifyCfg }
func (c *Config) Network() NetworkConfig { return c.NetworkCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetAccounts(s string)            { c.RunCfg.Accounts = s }
func (c *Config) SetAccountDelay(d time.Duration) { c.RunCfg.AccountDelay = d }
func (c *Config) SetDryRun(b bool)                { c.RunCfg.DryRun = b }
func (c *Config) SetBrowserHeadless(b bool)       { c.BrowserCfg.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser launched per account.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	NoSandbox       bool           `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	DisableGPU      bool           `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	UserAgent       string         `mapstructure:"user_agent" yaml:"user_agent"`
	ProxyServer     string         `mapstructure:"proxy_server" yaml:"proxy_server"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        map[string]int `mapstructure:"viewport" yaml:"viewport"`
}

// TargetConfig describes the site being logged into and how to drive its login form.
// Selectors are passed to chromedp.BySearch, so CSS selectors and XPath both work.
type TargetConfig struct {
	URL              string        `mapstructure:"url" yaml:"url"`
	LoginSelector    string        `mapstructure:"login_selector" yaml:"login_selector"`
	UsernameSelector string        `mapstructure:"username_selector" yaml:"username_selector"`
	PasswordSelector string        `mapstructure:"password_selector" yaml:"password_selector"`
	SubmitSelector   string        `mapstructure:"submit_selector" yaml:"submit_selector"`
	SuccessMarkers   []string      `mapstructure:"success_markers" yaml:"success_markers"`
	PageTimeout      time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	TriggerTimeout   time.Duration `mapstructure:"trigger_timeout" yaml:"trigger_timeout"`
	PostNavigateWait time.Duration `mapstructure:"post_navigate_wait" yaml:"post_navigate_wait"`
	PostTriggerWait  time.Duration `mapstructure:"post_trigger_wait" yaml:"post_trigger_wait"`
	PostFillWait     time.Duration `mapstructure:"post_fill_wait" yaml:"post_fill_wait"`
	PostSubmitWait   time.Duration `mapstructure:"post_submit_wait" yaml:"post_submit_wait"`
	IdleQuietPeriod  time.Duration `mapstructure:"idle_quiet_period" yaml:"idle_quiet_period"`
}

// RunConfig holds per-invocation settings. Accounts usually comes from the environment.
type RunConfig struct {
	Accounts     string        `mapstructure:"accounts" yaml:"-"`
	AccountDelay time.Duration `mapstructure:"account_delay" yaml:"account_delay"`
	DryRun       bool          `mapstructure:"dry_run" yaml:"dry_run"`
}

// GeoConfig configures the ordered IP metadata providers.
type GeoConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Providers  []string      `mapstructure:"providers" yaml:"providers"`
	IPAPIURL   string        `mapstructure:"ip_api_url" yaml:"ip_api_url"`
	IPAPICoURL string        `mapstructure:"ipapi_co_url" yaml:"ipapi_co_url"`
}

// NotifyConfig configures report rendering and the two delivery channels.
type NotifyConfig struct {
	Title          string         `mapstructure:"title" yaml:"title"`
	TimezoneLabel  string         `mapstructure:"timezone_label" yaml:"timezone_label"`
	TimezoneOffset time.Duration  `mapstructure:"timezone_offset" yaml:"timezone_offset"`
	Telegram       TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	WeCom          WeComConfig    `mapstructure:"wecom" yaml:"wecom"`
}

// TelegramConfig configures the direct-message channel.
type TelegramConfig struct {
	Token   string        `mapstructure:"token" yaml:"-"`
	ChatID  string        `mapstructure:"chat_id" yaml:"chat_id"`
	APIBase string        `mapstructure:"api_base" yaml:"api_base"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Enabled reports whether both the token and the recipient are configured.
func (t TelegramConfig) Enabled() bool { return t.Token != "" && t.ChatID != "" }

// WeComConfig configures the webhook channel.
type WeComConfig struct {
	Webhook             string        `mapstructure:"webhook" yaml:"-"`
	Timeout             time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FallbackMinInterval time.Duration `mapstructure:"fallback_min_interval" yaml:"fallback_min_interval"`
	FallbackJitter      time.Duration `mapstructure:"fallback_jitter" yaml:"fallback_jitter"`
}

// Enabled reports whether a webhook URL is configured.
func (w WeComConfig) Enabled() bool { return w.Webhook != "" }

// NetworkConfig tunes the outbound HTTP client used for enrichment and notifications.
type NetworkConfig struct {
	ForceHTTP2      bool              `mapstructure:"force_http2" yaml:"force_http2"`
	IgnoreTLSErrors bool              `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ProxyURL        string            `mapstructure:"proxy_url" yaml:"proxy_url"`
	UserAgent       string            `mapstructure:"user_agent" yaml:"user_agent"`
	Headers         map[string]string `mapstructure:"headers" yaml:"headers"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "netlogin")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "magenta")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "red")
	v.SetDefault("logger.colors.panic", "red")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.proxy_server", "")
	v.SetDefault("browser.args", []string{"--disable-setuid-sandbox"})

	// -- Target --
	v.SetDefault("target.url", "https://www.netlib.re/")
	v.SetDefault("target.login_selector", `//a[contains(normalize-space(.), 'Login')] | //button[contains(normalize-space(.), 'Login')]`)
	v.SetDefault("target.username_selector", `//input[@name='username'] | //input[@type='text']`)
	v.SetDefault("target.password_selector", `//input[@name='password'] | //input[@type='password']`)
	v.SetDefault("target.submit_selector", `//button[contains(normalize-space(.), 'Validate')] | //input[@type='submit']`)
	v.SetDefault("target.success_markers", []string{"exclusive owner"})
	v.SetDefault("target.page_timeout", "30s")
	v.SetDefault("target.trigger_timeout", "5s")
	v.SetDefault("target.post_navigate_wait", "3s")
	v.SetDefault("target.post_trigger_wait", "2s")
	v.SetDefault("target.post_fill_wait", "1s")
	v.SetDefault("target.post_submit_wait", "5s")
	v.SetDefault("target.idle_quiet_period", "500ms")

	// -- Run --
	v.SetDefault("run.accounts", "")
	v.SetDefault("run.account_delay", "3s")
	v.SetDefault("run.dry_run", false)

	// -- Geo --
	v.SetDefault("geo.timeout", "5s")
	v.SetDefault("geo.providers", []string{"ip-api", "ipapi.co"})
	v.SetDefault("geo.ip_api_url", "http://ip-api.com/json/")
	v.SetDefault("geo.ipapi_co_url", "https://ipapi.co/json/")

	// -- Notify --
	v.SetDefault("notify.title", "Netlib Login Report")
	v.SetDefault("notify.timezone_label", "HKT")
	v.SetDefault("notify.timezone_offset", "8h")
	v.SetDefault("notify.telegram.token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout", "10s")
	v.SetDefault("notify.wecom.webhook", "")
	v.SetDefault("notify.wecom.timeout", "10s")
	v.SetDefault("notify.wecom.fallback_min_interval", "1s")
	v.SetDefault("notify.wecom.fallback_jitter", "500ms")

	// -- Network --
	v.SetDefault("network.force_http2", true)
	v.SetDefault("network.ignore_tls_errors", false)
	v.SetDefault("network.proxy_url", "")
	v.SetDefault("network.user_agent", "netlogin/1.0")
}

// BindEnv binds the legacy, unprefixed environment variable names alongside the
// prefixed ones. The first non-empty variable in each list wins.
func BindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"run.accounts":            {"NETLOGIN_RUN_ACCOUNTS", "ACCOUNTS"},
		"notify.telegram.token":   {"NETLOGIN_NOTIFY_TELEGRAM_TOKEN", "BOT_TOKEN"},
		"notify.telegram.chat_id": {"NETLOGIN_NOTIFY_TELEGRAM_CHAT_ID", "CHAT_ID"},
		"notify.wecom.webhook":    {"NETLOGIN_NOTIFY_WECOM_WEBHOOK", "WECOM_WEBHOOK"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// The account list is deliberately not checked here: it is parsed by the run itself.
func (c *Config) Validate() error {
	if err := c.TargetCfg.Validate(); err != nil {
		return fmt.Errorf("target configuration invalid: %w", err)
	}
	if c.RunCfg.AccountDelay < 0 {
		return fmt.Errorf("run.account_delay must not be negative")
	}
	if c.GeoCfg.Timeout <= 0 {
		return fmt.Errorf("geo.timeout must be a positive duration")
	}
	if err := c.NotifyCfg.Validate(); err != nil {
		return fmt.Errorf("notify configuration invalid: %w", err)
	}
	if c.NetworkCfg.ProxyURL != "" {
		if _, err := url.Parse(c.NetworkCfg.ProxyURL); err != nil {
			return fmt.Errorf("network.proxy_url is not a valid URL: %w", err)
		}
	}
	return nil
}

// Validate checks the target settings.
func (t *TargetConfig) Validate() error {
	u, err := url.Parse(t.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be an absolute http(s) URL, got %q", t.URL)
	}
	if t.LoginSelector == "" || t.UsernameSelector == "" || t.PasswordSelector == "" || t.SubmitSelector == "" {
		return fmt.Errorf("login, username, password and submit selectors are required")
	}
	if t.PageTimeout <= 0 || t.TriggerTimeout <= 0 {
		return fmt.Errorf("page_timeout and trigger_timeout must be positive durations")
	}
	return nil
}

// Validate checks the notification settings. Unconfigured channels are valid.
func (n *NotifyConfig) Validate() error {
	if n.WeCom.Enabled() {
		u, err := url.Parse(n.WeCom.Webhook)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("wecom.webhook must be an absolute URL")
		}
	}
	if n.Telegram.Timeout <= 0 || n.WeCom.Timeout <= 0 {
		return fmt.Errorf("channel timeouts must be positive durations")
	}
	if n.WeCom.FallbackMinInterval < 0 || n.WeCom.FallbackJitter < 0 {
		return fmt.Errorf("wecom fallback pacing must not be negative")
	}
	return nil
}
