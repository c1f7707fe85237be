// internal/browser/factory_test.go
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/netlogin/internal/config"
)

const testTimeout = 45 * time.Second

// requireChrome skips integration tests when no Chrome binary is installed.
func requireChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser integration test in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome binary found")
	return ""
}

const loginPage = `<html><body>
<a href="#" id="login" onclick="document.getElementById('form').style.display='block'">Login</a>
<form id="form" style="display:none" method="post" action="/submit">
  <input type="text" name="username">
  <input type="password" name="password">
  <button type="submit">Validate</button>
</form>
</body></html>`

func TestChromeFactory_LoginFlow(t *testing.T) {
	execPath := requireChrome(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fmt.Fprintf(w, "<html><body>Welcome %s, you are the exclusive owner.</body></html>", r.FormValue("username"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.NewDefaultConfig()
	bcfg := cfg.Browser()
	bcfg.ExecPath = execPath
	target := cfg.Target()

	factory := NewChromeFactory(bcfg, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	page, err := factory.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close()
	assert.NotEmpty(t, page.ID())

	require.NoError(t, page.Navigate(ctx, srv.URL))
	require.NoError(t, page.Click(ctx, target.LoginSelector))
	require.NoError(t, page.Fill(ctx, target.UsernameSelector, "alice"))
	require.NoError(t, page.Fill(ctx, target.PasswordSelector, "pw1"))
	require.NoError(t, page.Click(ctx, target.SubmitSelector))
	require.NoError(t, page.WaitNetworkIdle(ctx, 200*time.Millisecond))

	// The post-submit document may need a moment to replace the form.
	require.Eventually(t, func() bool {
		content, err := page.Content(ctx)
		return err == nil && strings.Contains(content, "alice") && strings.Contains(content, "exclusive owner")
	}, 10*time.Second, 100*time.Millisecond)

	require.NoError(t, page.Close())
	assert.NoError(t, page.Close())
}

func TestChromeFactory_MissingElementFailsWithinTimeout(t *testing.T) {
	execPath := requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	}))
	defer srv.Close()

	bcfg := config.NewDefaultConfig().Browser()
	bcfg.ExecPath = execPath
	page, err := NewChromeFactory(bcfg, zaptest.NewLogger(t)).NewPage(context.Background())
	require.NoError(t, err)
	defer page.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, page.Navigate(ctx, srv.URL))

	opCtx, opCancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer opCancel()
	start := time.Now()
	err = page.Click(opCtx, "#does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// duplicatesPage hides a mobile-nav copy of the login link ahead of the real
// one and has a second text input that must survive the username fill.
const duplicatesPage = `<html><body>
<nav style="display:none"><a href="#">Login</a></nav>
<a href="#" onclick="document.getElementById('form').style.display='block'">Login</a>
<form id="form" style="display:none" method="post" action="/submit">
  <input type="text" name="username">
  <input type="password" name="password">
  <input type="text" name="search" value="keep">
  <button type="submit">Validate</button>
</form>
</body></html>`

func TestChromeFactory_SkipsHiddenDuplicates(t *testing.T) {
	execPath := requireChrome(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, duplicatesPage)
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fmt.Fprintf(w, "<html><body>user=%s search=%s</body></html>", r.FormValue("username"), r.FormValue("search"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.NewDefaultConfig()
	bcfg := cfg.Browser()
	bcfg.ExecPath = execPath
	target := cfg.Target()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	page, err := NewChromeFactory(bcfg, zaptest.NewLogger(t)).NewPage(ctx)
	require.NoError(t, err)
	defer page.Close()

	require.NoError(t, page.Navigate(ctx, srv.URL))

	// The hidden link matches first; the click must not wait on it.
	clickCtx, clickCancel := context.WithTimeout(ctx, target.TriggerTimeout)
	defer clickCancel()
	require.NoError(t, page.Click(clickCtx, target.LoginSelector))

	require.NoError(t, page.Fill(ctx, target.UsernameSelector, "alice"))
	require.NoError(t, page.Fill(ctx, target.PasswordSelector, "pw1"))
	require.NoError(t, page.Click(ctx, target.SubmitSelector))

	require.Eventually(t, func() bool {
		content, err := page.Content(ctx)
		return err == nil && strings.Contains(content, "user=alice search=keep")
	}, 10*time.Second, 100*time.Millisecond)
}
