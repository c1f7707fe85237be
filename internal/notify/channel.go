// Package notify renders run reports and delivers them to chat channels.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxResponseBody caps how much of a channel response is read.
const maxResponseBody = 64 << 10

// HTTPDoer is the subset of *http.Client the channels need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Channel delivers a rendered report. Send returns nil only on confirmed delivery.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, text string) error
}

// postJSON sends payload under timeout and returns the status and a bounded body.
func postJSON(ctx context.Context, client HTTPDoer, url string, timeout time.Duration, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode payload: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func is2xx(code int) bool { return code >= 200 && code <= 299 }
