package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/login"
	"github.com/xkilldash9x/netlogin/internal/mocks"
)

// TestRunAll_LoginFlow drives the real login runner over two accounts: the
// first authenticates, the second fails while filling the form.
func TestRunAll_LoginFlow(t *testing.T) {
	logger := zaptest.NewLogger(t)
	target := config.NewDefaultConfig().Target()

	okPage := new(mocks.MockPage)
	okPage.On("Navigate", mock.Anything, target.URL).Return(nil)
	okPage.On("WaitNetworkIdle", mock.Anything, mock.Anything).Return(nil)
	okPage.On("Click", mock.Anything, mock.Anything).Return(nil)
	okPage.On("Fill", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	okPage.On("Content", mock.Anything).Return("<p>alice is the exclusive owner</p>", nil)
	okPage.On("Close").Return(nil).Once()

	badPage := new(mocks.MockPage)
	badPage.On("Navigate", mock.Anything, target.URL).Return(nil)
	badPage.On("WaitNetworkIdle", mock.Anything, mock.Anything).Return(nil)
	badPage.On("Click", mock.Anything, target.LoginSelector).Return(nil)
	badPage.On("Fill", mock.Anything, target.UsernameSelector, "bob").Return(errors.New("no node matches selector"))
	badPage.On("Close").Return(nil).Once()

	factory := new(mocks.MockFactory)
	factory.On("NewPage", mock.Anything).Return(okPage, nil).Once()
	factory.On("NewPage", mock.Anything).Return(badPage, nil).Once()

	geo := new(mocks.MockGeoResolver)
	geo.On("Resolve", mock.Anything).Return(schemas.GeoInfo{IP: "203.0.113.7", Location: "Tokyo", Country: "Japan", City: "Tokyo", ISP: "Example"}).Once()
	geo.On("Resolve", mock.Anything).Return(schemas.UnknownGeo()).Once()

	noWait := func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	runner := login.NewRunner(factory, geo, target, logger, login.WithSleep(noWait))

	o, err := New(runner, 0, logger)
	require.NoError(t, err)

	summary := o.RunAll(context.Background(), []schemas.Credential{
		{User: "alice", Pass: "pw1"},
		{User: "bob", Pass: "pw2"},
	})

	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 2, summary.TotalCount)
	require.Len(t, summary.Results, 2)

	first, second := summary.Results[0], summary.Results[1]
	assert.Equal(t, schemas.OutcomeSuccess, first.Outcome)
	require.NotNil(t, first.Geo)
	assert.True(t, first.Geo.Known())

	assert.Equal(t, schemas.OutcomeStepError, second.Outcome)
	assert.Contains(t, second.Message, "filling username")
	require.NotNil(t, second.Geo)
	assert.False(t, second.Geo.Known())

	okPage.AssertNumberOfCalls(t, "Close", 1)
	badPage.AssertNumberOfCalls(t, "Close", 1)
	factory.AssertExpectations(t)
	geo.AssertExpectations(t)
}
