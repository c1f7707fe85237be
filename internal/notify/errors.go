package notify

import (
	"fmt"
	"unicode/utf8"
)

// maxErrorBody caps how much of a rejected response is kept for logging.
const maxErrorBody = 512

// DeliveryError describes a send that reached the endpoint but was rejected.
type DeliveryError struct {
	Channel    string
	Format     string
	StatusCode int
	// Code is the endpoint's embedded status, when it reports one.
	Code    int
	Message string
	Body    string
}

func (e *DeliveryError) Error() string {
	msg := fmt.Sprintf("%s %s delivery rejected (http %d", e.Channel, e.Format, e.StatusCode)
	if e.Code != 0 {
		msg += fmt.Sprintf(", code %d", e.Code)
	}
	msg += ")"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func truncate(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	cut := body[:maxErrorBody]
	for len(cut) > 0 && !utf8.Valid(cut) {
		cut = cut[:len(cut)-1]
	}
	return string(cut) + "…"
}
