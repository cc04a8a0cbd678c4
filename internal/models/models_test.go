package models

import "testing"

func TestAuditEntryVerb(t *testing.T) {
	tests := []struct {
		action AuditAction
		want   string
	}{
		{ActionCreate, "created"},
		{ActionUpdate, "updated"},
		{ActionToggle, "toggled"},
		{ActionDelete, "deleted"},
		{AuditAction("archive"), "archive"},
	}
	for _, tt := range tests {
		e := AuditEntry{Action: tt.action}
		if got := e.Verb(); got != tt.want {
			t.Errorf("Verb(%s) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestAuditEntryFailed(t *testing.T) {
	if (&AuditEntry{Outcome: OutcomeSuccess}).Failed() {
		t.Error("success should not be failed")
	}
	if !(&AuditEntry{Outcome: OutcomeFailure}).Failed() {
		t.Error("failure should be failed")
	}
}
