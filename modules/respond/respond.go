// Package respond renders JSON responses and maps quota decisions to HTTP
// status codes, so every module surfaces denials identically.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a minimal JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// denialBody is the wire shape for quota denials. Matches the original API:
// limit reached answers carry the resource kind, current count and cap so
// clients can render an upgrade prompt.
type denialBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	Feature  string `json:"feature,omitempty"`
	Current  *int64 `json:"current,omitempty"`
	Limit    *int64 `json:"limit,omitempty"`
}

// Denial renders a deny decision. Limit denials and missing features are
// client errors fixable by upgrading; store outages are retryable 503s;
// configuration anomalies surface as generic 500s without internal detail.
// A negative Current means the count is unknown and is omitted from the
// body rather than shown as a made-up number.
func Denial(w http.ResponseWriter, d quota.Decision) {
	switch d.Reason {
	case quota.ReasonLimitReached:
		cap := d.Limit.Cap()
		body := denialBody{
			Error:    string(d.Reason),
			Message:  "Plan limit reached. Upgrade your plan to add more.",
			Resource: string(d.Resource),
			Limit:    &cap,
		}
		if d.Current >= 0 {
			current := d.Current
			body.Current = &current
		}
		JSON(w, http.StatusForbidden, body)
	case quota.ReasonFeatureMissing:
		JSON(w, http.StatusForbidden, denialBody{
			Error:   string(d.Reason),
			Message: "This feature is not included in your plan. Upgrade to unlock it.",
			Feature: string(d.Feature),
		})
	case quota.ReasonServiceUnavailable:
		JSON(w, http.StatusServiceUnavailable, denialBody{
			Error:   string(d.Reason),
			Message: "Service temporarily unavailable. Please retry.",
		})
	default:
		JSON(w, http.StatusInternalServerError, denialBody{
			Error:   string(quota.ReasonConfigurationError),
			Message: "Internal error.",
		})
	}
}
