package schemas

import (
	"go.uber.org/zap/zapcore"
)

// Unknown is the sentinel stored in every GeoInfo field that could not be resolved.
const Unknown = "unknown"

// UnknownLocation is the sentinel used when no location segment could be composed.
const UnknownLocation = "unknown location"

// Credential is a single user/password pair parsed from configuration.
type Credential struct {
	User string
	Pass string
}

// String renders the credential without its password so it is safe to print.
func (c Credential) String() string {
	return c.User + ":******"
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Only the user is emitted.
func (c Credential) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("user", c.User)
	return nil
}

// GeoInfo holds the network-origin metadata attached to a login attempt.
type GeoInfo struct {
	IP       string `json:"ip"`
	Location string `json:"location"`
	Country  string `json:"country"`
	City     string `json:"city"`
	ISP      string `json:"isp"`
}

// UnknownGeo returns a GeoInfo where every field holds the unknown sentinel.
func UnknownGeo() GeoInfo {
	return GeoInfo{
		IP:       Unknown,
		Location: UnknownLocation,
		Country:  Unknown,
		City:     Unknown,
		ISP:      Unknown,
	}
}

// Known reports whether the origin IP was resolved.
func (g GeoInfo) Known() bool {
	return g.IP != "" && g.IP != Unknown
}

// Outcome tags which of the three result-construction paths produced an AccountResult.
type Outcome string

const (
	OutcomeSuccess    Outcome = "SUCCESS"
	OutcomeAuthFailed Outcome = "AUTH_FAILED"
	OutcomeStepError  Outcome = "STEP_ERROR"
)

// AccountResult is the outcome of one login attempt.
type AccountResult struct {
	User    string   `json:"user"`
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Outcome Outcome  `json:"outcome"`
	Geo     *GeoInfo `json:"geo,omitempty"`
}

// RunSummary aggregates the results of one run, in input order.
type RunSummary struct {
	RunID        string          `json:"run_id"`
	Results      []AccountResult `json:"results"`
	SuccessCount int             `json:"success_count"`
	TotalCount   int             `json:"total_count"`
}

// NewRunSummary derives the counts from results. The slice is used as-is.
func NewRunSummary(runID string, results []AccountResult) RunSummary {
	success := 0
	for _, r := range results {
		if r.Success {
			success++
		}
	}
	return RunSummary{
		RunID:        runID,
		Results:      results,
		SuccessCount: success,
		TotalCount:   len(results),
	}
}
