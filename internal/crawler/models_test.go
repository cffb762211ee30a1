package crawler

import "testing"

func TestOutcomeStatus(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		expected string
		failure  bool
	}{
		{"ok", Outcome{Class: ClassOK, StatusCode: 200}, "200", false},
		{"redirect kept status", Outcome{Class: ClassOutOfScopeRedirect, StatusCode: 200}, "200", false},
		{"not found", Outcome{Class: ClassHTTPError, StatusCode: 404}, "404", true},
		{"invalid", Outcome{Class: ClassInvalidURL}, StatusInvalid, true},
		{"transport", Outcome{Class: ClassTransportFailure}, StatusError, true},
		{"fault", Outcome{Class: ClassFault}, StatusError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Status(); got != tt.expected {
				t.Errorf("Status() = %q, want %q", got, tt.expected)
			}
			if got := tt.outcome.IsFailure(); got != tt.failure {
				t.Errorf("IsFailure() = %v, want %v", got, tt.failure)
			}
			if got := tt.outcome.IsHTTPError(); got != (tt.outcome.Class == ClassHTTPError) {
				t.Errorf("IsHTTPError() = %v", got)
			}
		})
	}
}
