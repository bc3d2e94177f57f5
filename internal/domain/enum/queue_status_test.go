package enum

import "testing"

func TestQueueStatusTransitions(t *testing.T) {
	tests := []struct {
		from  QueueStatus
		to    QueueStatus
		legal bool
	}{
		{QueuePending, QueueSending, true},
		{QueuePending, QueueSent, false},
		{QueuePending, QueueFailed, false},
		{QueueSending, QueueSent, true},
		{QueueSending, QueueFailed, true},
		{QueueSending, QueueFailedPermanent, true},
		{QueueSending, QueuePending, false},
		{QueueFailed, QueueSending, true},
		{QueueFailed, QueueFailedPermanent, true},
		{QueueFailed, QueueSent, false},
		{QueueSent, QueuePending, false},
		{QueueSent, QueueSending, false},
		{QueueFailedPermanent, QueuePending, true},
		{QueueFailedPermanent, QueueSending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.legal {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.legal)
		}
	}
}

func TestQueueStatusTerminal(t *testing.T) {
	for _, s := range AllQueueStatuses {
		want := s == QueueSent || s == QueueFailedPermanent
		if s.IsTerminal() != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, s.IsTerminal(), want)
		}
	}
}

func TestParseQueueStatus(t *testing.T) {
	for _, s := range AllQueueStatuses {
		got, ok := ParseQueueStatus(string(s))
		if !ok || got != s {
			t.Errorf("ParseQueueStatus(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := ParseQueueStatus("cancelled"); ok {
		t.Error("cancelled is not a persisted status")
	}
}

func TestResponseCodeClassification(t *testing.T) {
	if !CodeSuccess.IsSuccess() {
		t.Error("00 must be success")
	}
	retryable := []ResponseCode{CodeTimeout, CodeServerError, CodeGenericError}
	for _, c := range retryable {
		if !c.IsRetryable() {
			t.Errorf("%s must be retryable", c)
		}
	}
	permanent := []ResponseCode{CodeInvalidSignature, CodeMissingFields, CodeInvalidFormat, CodeDuplicate, CodeNotFound, CodeInvalidCert}
	for _, c := range permanent {
		if c.IsRetryable() {
			t.Errorf("%s must not be retryable", c)
		}
	}
}
