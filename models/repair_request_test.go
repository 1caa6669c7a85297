package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{RequestStatusOpen, RequestStatusQuoted, true},
		{RequestStatusOpen, RequestStatusAccepted, true},
		{RequestStatusOpen, RequestStatusCancelled, true},
		{RequestStatusOpen, RequestStatusCompleted, false},
		{RequestStatusQuoted, RequestStatusAccepted, true},
		{RequestStatusQuoted, RequestStatusOpen, false},
		{RequestStatusAccepted, RequestStatusInProgress, true},
		{RequestStatusInProgress, RequestStatusCompleted, true},
		{RequestStatusInProgress, RequestStatusOpen, false},
		{RequestStatusCompleted, RequestStatusCancelled, false},
		{RequestStatusCancelled, RequestStatusOpen, false},
		{"bogus", RequestStatusOpen, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(RequestStatusOpen, RequestStatusQuoted); err != nil {
		t.Errorf("ValidateTransition(open, quoted) = %v, want nil", err)
	}
	if err := ValidateTransition(RequestStatusCompleted, RequestStatusOpen); err == nil {
		t.Error("ValidateTransition(completed, open) = nil, want error")
	}
}
