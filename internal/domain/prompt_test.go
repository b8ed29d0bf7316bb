package domain

import "testing"

func TestPromptStatusPredicates(t *testing.T) {
	cases := []struct {
		status     PromptStatus
		recognized bool
		terminal   bool
		signature  bool
		completed  bool
	}{
		{StatusPending, true, false, false, false},
		{StatusAttempted, true, false, false, false},
		{StatusSigned, true, true, true, true},
		{StatusRefused, true, true, false, false},
		{StatusCompleted, true, true, true, true},
		{PromptStatus("DELIVERED"), false, false, false, false},
		{PromptStatus(""), false, false, false, false},
	}
	for _, tc := range cases {
		if got := tc.status.IsRecognized(); got != tc.recognized {
			t.Errorf("%q.IsRecognized() = %v", tc.status, got)
		}
		if got := tc.status.IsTerminal(); got != tc.terminal {
			t.Errorf("%q.IsTerminal() = %v", tc.status, got)
		}
		if got := tc.status.RequiresSignature(); got != tc.signature {
			t.Errorf("%q.RequiresSignature() = %v", tc.status, got)
		}
		if got := tc.status.IsCompleted(); got != tc.completed {
			t.Errorf("%q.IsCompleted() = %v", tc.status, got)
		}
	}
}
