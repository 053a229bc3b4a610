package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// AssertStatus verifies the HTTP status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// ParseJSON decodes the response body into the target
func ParseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	defer resp.Body.Close()

	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

// ErrorEnvelope is the error response body shape
type ErrorEnvelope struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type"`
}

// AssertErrorType decodes an error envelope and verifies its type tag
func AssertErrorType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	var envelope ErrorEnvelope
	ParseJSON(t, resp, &envelope)
	if envelope.Ok {
		t.Errorf("Expected ok=false in error envelope")
	}
	if envelope.Type != expected {
		t.Errorf("Expected error type %q, got %q", expected, envelope.Type)
	}
}
