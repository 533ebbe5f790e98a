package claims

import (
	"errors"
	"testing"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
)

func TestLiveTransitionStampStaysMonotonic(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	past := now.AddDate(0, 0, -3)
	if got := nextStatusDate(now, past); !got.Equal(now) {
		t.Fatalf("history in the past: expected wall clock %s, got %s", now, got)
	}

	if got := nextStatusDate(now, time.Time{}); !got.Equal(now) {
		t.Fatalf("empty history: expected wall clock %s, got %s", now, got)
	}

	ahead := now.AddDate(0, 0, 14)
	got := nextStatusDate(now, ahead)
	if !got.After(ahead) {
		t.Fatalf("history ahead of clock: stamp %s does not advance past %s", got, ahead)
	}
}

func TestTransitionTable(t *testing.T) {
	state, err := Transition(StatusSubmitted, EventAcknowledge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StatusAcknowledged {
		t.Fatalf("expected acknowledged, got %s", state)
	}

	if _, err := Transition(StatusSubmitted, EventPay); err == nil {
		t.Fatal("expected error paying a submitted claim")
	} else if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := Transition(StatusPaid, EventDeny); err == nil {
		t.Fatal("expected error transitioning out of paid")
	}

	// pending is soft-terminal and may resume
	state, err = Transition(StatusPending, EventResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StatusProcessing {
		t.Fatalf("expected processing after resume, got %s", state)
	}

	if !IsTerminal(StatusPaid) || !IsTerminal(StatusDenied) {
		t.Fatal("paid and denied must be terminal")
	}
	if IsTerminal(StatusPending) {
		t.Fatal("pending must accept resume")
	}
}

func TestProgressionHistoryShape(t *testing.T) {
	engine, err := NewProgressionEngine(catalog.DefaultCatalog(), testRNG(4))
	if err != nil {
		t.Fatalf("unexpected engine error: %v", err)
	}

	for _, status := range []string{StatusPaid, StatusProcessed, StatusDenied, StatusPending} {
		h := paidHeader("CLM-ORG1-00001", 1000, 0.8)
		h.CurrentStatus = status
		if status == StatusDenied || status == StatusPending {
			h.TotalPaidAmount = 0
			h.TotalAdjustmentAmount = 0
		}

		records, err := engine.Progress(&h)
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if len(records) != 4 {
			t.Fatalf("status %s: expected 4 records, got %d", status, len(records))
		}
		for i := 1; i < len(records); i++ {
			if !records[i].StatusDate.After(records[i-1].StatusDate) {
				t.Fatalf("status %s: timestamps not strictly increasing at hop %d", status, i)
			}
		}
		last := records[len(records)-1]
		if last.StatusCode != status {
			t.Fatalf("history ends at %s, wanted %s", last.StatusCode, status)
		}
		if !h.StatusDate.Equal(last.StatusDate) {
			t.Fatalf("status %s: header status date not advanced to final hop", status)
		}

		for _, rec := range records {
			switch rec.StatusCode {
			case StatusSubmitted, StatusAcknowledged:
				if rec.ResponseReceived {
					t.Fatalf("response marked received at %s", rec.StatusCode)
				}
			default:
				if !rec.ResponseReceived {
					t.Fatalf("response not received at %s", rec.StatusCode)
				}
			}
		}

		followUp := status == StatusDenied || status == StatusPending
		if last.FollowUpRequired != followUp {
			t.Fatalf("status %s: follow-up flag %v", status, last.FollowUpRequired)
		}
		if followUp {
			if last.FollowUpDate == nil {
				t.Fatalf("status %s: follow-up date missing", status)
			}
			expected := last.StatusDate.AddDate(0, 0, 3)
			if !last.FollowUpDate.Equal(expected) {
				t.Fatalf("status %s: follow-up date %s, wanted %s", status, last.FollowUpDate, expected)
			}
		}
	}
}

func TestProgressionRejectsNonTerminalHeader(t *testing.T) {
	engine, err := NewProgressionEngine(catalog.DefaultCatalog(), testRNG(4))
	if err != nil {
		t.Fatalf("unexpected engine error: %v", err)
	}

	h := paidHeader("CLM-ORG1-00001", 1000, 0.8)
	h.CurrentStatus = StatusProcessing
	if _, err := engine.Progress(&h); err == nil {
		t.Fatal("expected error for non-terminal header status")
	}
}
