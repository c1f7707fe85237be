// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/browser"
	"github.com/xkilldash9x/netlogin/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

func (m *MockConfig) Logger() config.LoggerConfig {
	return m.Called().Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	return m.Called().Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Target() config.TargetConfig {
	return m.Called().Get(0).(config.TargetConfig)
}

func (m *MockConfig) Run() config.RunConfig {
	return m.Called().Get(0).(config.RunConfig)
}

func (m *MockConfig) Geo() config.GeoConfig {
	return m.Called().Get(0).(config.GeoConfig)
}

func (m *MockConfig) Notify() config.NotifyConfig {
	return m.Called().Get(0).(config.NotifyConfig)
}

func (m *MockConfig) Network() config.NetworkConfig {
	return m.Called().Get(0).(config.NetworkConfig)
}

func (m *MockConfig) SetAccounts(s string)            { m.Called(s) }
func (m *MockConfig) SetAccountDelay(d time.Duration) { m.Called(d) }
func (m *MockConfig) SetDryRun(b bool)                { m.Called(b) }
func (m *MockConfig) SetBrowserHeadless(b bool)       { m.Called(b) }

// -- Browser Mocks --

// MockPage mocks browser.Page.
type MockPage struct {
	mock.Mock
}

var _ browser.Page = (*MockPage)(nil)

func (m *MockPage) ID() string { return m.Called().String(0) }

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockPage) Click(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}

func (m *MockPage) Fill(ctx context.Context, selector, value string) error {
	return m.Called(ctx, selector, value).Error(0)
}

func (m *MockPage) Content(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) WaitNetworkIdle(ctx context.Context, quiet time.Duration) error {
	return m.Called(ctx, quiet).Error(0)
}

func (m *MockPage) Close() error { return m.Called().Error(0) }

// MockFactory mocks browser.Factory.
type MockFactory struct {
	mock.Mock
}

var _ browser.Factory = (*MockFactory)(nil)

func (m *MockFactory) NewPage(ctx context.Context) (browser.Page, error) {
	args := m.Called(ctx)
	page, _ := args.Get(0).(browser.Page)
	return page, args.Error(1)
}

// -- Component Mocks --

// MockGeoResolver mocks schemas.GeoResolver.
type MockGeoResolver struct {
	mock.Mock
}

var _ schemas.GeoResolver = (*MockGeoResolver)(nil)

func (m *MockGeoResolver) Resolve(ctx context.Context) schemas.GeoInfo {
	return m.Called(ctx).Get(0).(schemas.GeoInfo)
}

// MockAccountRunner mocks schemas.AccountRunner.
type MockAccountRunner struct {
	mock.Mock
}

var _ schemas.AccountRunner = (*MockAccountRunner)(nil)

func (m *MockAccountRunner) Run(ctx context.Context, cred schemas.Credential) schemas.AccountResult {
	return m.Called(ctx, cred).Get(0).(schemas.AccountResult)
}

// MockOrchestrator mocks schemas.Orchestrator.
type MockOrchestrator struct {
	mock.Mock
}

var _ schemas.Orchestrator = (*MockOrchestrator)(nil)

func (m *MockOrchestrator) RunAll(ctx context.Context, creds []schemas.Credential) schemas.RunSummary {
	return m.Called(ctx, creds).Get(0).(schemas.RunSummary)
}

// MockNotifier mocks schemas.Notifier.
type MockNotifier struct {
	mock.Mock
}

var _ schemas.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Dispatch(ctx context.Context, summary schemas.RunSummary) {
	m.Called(ctx, summary)
}
