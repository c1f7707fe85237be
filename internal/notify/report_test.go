package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/config"
)

func fixedRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := NewRenderer(config.NewDefaultConfig().Notify())
	r.now = func() time.Time { return time.Date(2026, 3, 1, 20, 30, 45, 999, time.UTC) }
	return r
}

func TestRenderer_Render(t *testing.T) {
	known := schemas.GeoInfo{IP: "203.0.113.7", Location: "Tokyo", ISP: "Example Cloud"}
	unknown := schemas.UnknownGeo()

	summary := schemas.NewRunSummary("run-1", []schemas.AccountResult{
		{User: "alice", Success: true, Message: "✅ alice login succeeded\n📍 IP: 203.0.113.7\n🌍 Location: Tokyo", Geo: &known},
		{User: "bob", Message: "❌ bob login failed\n📍 IP: unknown\n🌍 Location: unknown location", Geo: &unknown},
		{User: "carol", Message: "❌ carol login error: navigating: boom"},
	})

	want := "🎉 Netlib Login Report\n\n" +
		"Login time: 2026-03-02 04:30:45 HKT\n\n" +
		"📊 Login summary: 1/3 accounts succeeded\n\n" +
		"✅ alice login succeeded\n📍 IP: 203.0.113.7\n🌍 Location: Tokyo\n   └─ ISP: Example Cloud\n\n" +
		"❌ bob login failed\n📍 IP: unknown\n🌍 Location: unknown location\n\n" +
		"❌ carol login error: navigating: boom"

	assert.Equal(t, want, fixedRenderer(t).Render(summary))
}

func TestRenderer_EmptySummary(t *testing.T) {
	got := fixedRenderer(t).Render(schemas.NewRunSummary("run-2", nil))
	assert.Contains(t, got, "📊 Login summary: 0/0 accounts succeeded")
	assert.NotContains(t, got, "└─")
}

func TestRenderer_UsesConfiguredOffset(t *testing.T) {
	cfg := config.NewDefaultConfig().Notify()
	cfg.TimezoneOffset = 0
	cfg.TimezoneLabel = "UTC"
	r := NewRenderer(cfg)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 20, 30, 45, 0, time.UTC) }

	assert.Contains(t, r.Render(schemas.RunSummary{}), "Login time: 2026-03-01 20:30:45 UTC")
}
