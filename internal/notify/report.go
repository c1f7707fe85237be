package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/xkilldash9x/netlogin/api/schemas"
	"github.com/xkilldash9x/netlogin/internal/config"
)

const timestampLayout = "2006-01-02 15:04:05"

// Renderer composes the report text sent over every channel.
type Renderer struct {
	title string
	label string
	zone  *time.Location
	now   func() time.Time
}

// NewRenderer builds a Renderer that stamps reports in a fixed UTC offset.
func NewRenderer(cfg config.NotifyConfig) *Renderer {
	return &Renderer{
		title: cfg.Title,
		label: cfg.TimezoneLabel,
		zone:  time.FixedZone(cfg.TimezoneLabel, int(cfg.TimezoneOffset/time.Second)),
		now:   time.Now,
	}
}

// Render produces the report for summary, listing results in order.
func (r *Renderer) Render(summary schemas.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎉 %s\n\n", r.title)
	fmt.Fprintf(&b, "Login time: %s %s\n\n", r.now().In(r.zone).Format(timestampLayout), r.label)
	fmt.Fprintf(&b, "📊 Login summary: %d/%d accounts succeeded", summary.SuccessCount, summary.TotalCount)

	for _, res := range summary.Results {
		b.WriteString("\n\n")
		b.WriteString(res.Message)
		if res.Geo != nil && res.Geo.Known() {
			fmt.Fprintf(&b, "\n   └─ ISP: %s", res.Geo.ISP)
		}
	}
	return b.String()
}
