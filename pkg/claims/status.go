package claims

import (
	"math/rand"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
)

// Lifecycle events. The progression engine replays these to simulate a
// claim's history; the same transition table drives live transitions as
// real payer responses arrive.
type Event string

const (
	EventAcknowledge Event = "acknowledge"
	EventProcess     Event = "process"
	EventPay         Event = "pay"
	EventFinalize    Event = "finalize" // partial payment posted
	EventDeny        Event = "deny"
	EventPend        Event = "pend"
	EventResume      Event = "resume"
)

var transitions = map[string]map[Event]string{
	StatusSubmitted:    {EventAcknowledge: StatusAcknowledged},
	StatusAcknowledged: {EventProcess: StatusProcessing},
	StatusProcessing: {
		EventPay:      StatusPaid,
		EventFinalize: StatusProcessed,
		EventDeny:     StatusDenied,
		EventPend:     StatusPending,
	},
	// pending is soft-terminal: a late payer response resumes processing
	StatusPending: {EventResume: StatusProcessing},
}

// Transition applies one lifecycle event to a claim state.
func Transition(state string, event Event) (string, error) {
	next, ok := transitions[state][event]
	if !ok {
		return "", invariantViolation("", "no transition from %q on %q: %w", state, event, ErrInvalidTransition)
	}
	return next, nil
}

// IsTerminal reports whether a state accepts no further events.
func IsTerminal(state string) bool {
	return len(transitions[state]) == 0
}

var statusDescriptions = map[string]string{
	StatusSubmitted:    "Claim submitted to clearinghouse",
	StatusAcknowledged: "Claim acknowledged by payer",
	StatusProcessing:   "Claim in adjudication",
	StatusPaid:         "Claim paid in full per contract",
	StatusProcessed:    "Claim processed with partial payment",
	StatusDenied:       "Claim denied by payer",
	StatusPending:      "Claim pended for additional information",
}

// terminalEvent maps a header's final status to the event that closes the
// simulated history at that status.
func terminalEvent(status string) (Event, bool) {
	switch status {
	case StatusPaid:
		return EventPay, true
	case StatusProcessed:
		return EventFinalize, true
	case StatusDenied:
		return EventDeny, true
	case StatusPending:
		return EventPend, true
	}
	return "", false
}

var followUpOwners = []string{"j.alvarez", "m.okonkwo", "s.tran", "d.whitfield"}

// Simulated history timing: each of the three hops after submission takes
// 1..maxHopDays days. Header generation budgets for the widest spread so
// no history ever runs past the generation time.
const (
	progressionHops = 3
	maxHopDays      = 7
)

// nextStatusDate stamps a live transition. Wall clock wins unless the
// existing history already reaches it, in which case the new row lands
// just after its predecessor to keep status dates strictly increasing.
func nextStatusDate(now, last time.Time) time.Time {
	if now.After(last) {
		return now
	}
	return last.Add(time.Second)
}

// ProgressionEngine replays the lifecycle FSM from submission to the
// header's current status, producing an ordered history with strictly
// increasing timestamps.
type ProgressionEngine struct {
	catalog catalog.Catalog
	rng     *rand.Rand
}

func NewProgressionEngine(cat catalog.Catalog, rng *rand.Rand) (*ProgressionEngine, error) {
	if err := cat.Validate(); err != nil {
		return nil, newValidationError("catalog: %v", err)
	}
	if rng == nil {
		return nil, newValidationError("random source is required")
	}
	return &ProgressionEngine{catalog: cat, rng: rng}, nil
}

func (e *ProgressionEngine) ProgressAll(headers []ClaimHeader) ([]ClaimStatus, error) {
	history := make([]ClaimStatus, 0, len(headers)*4)
	for i := range headers {
		records, err := e.Progress(&headers[i])
		if err != nil {
			return nil, err
		}
		history = append(history, records...)
	}
	return history, nil
}

// Progress builds the status history for one claim and advances the
// header's status date to the final hop.
func (e *ProgressionEngine) Progress(h *ClaimHeader) ([]ClaimStatus, error) {
	closing, ok := terminalEvent(h.CurrentStatus)
	if !ok {
		return nil, invariantViolation(h.ClaimKey, "header status %q is not a terminal state", h.CurrentStatus)
	}

	state := StatusSubmitted
	ts := h.SubmissionDate
	clearinghouse := pickString(e.rng, e.catalog.Clearinghouses)

	records := []ClaimStatus{e.record(h, 1, state, ts, clearinghouse)}
	for seq, event := range []Event{EventAcknowledge, EventProcess, closing} {
		next, err := Transition(state, event)
		if err != nil {
			return nil, invariantViolation(h.ClaimKey, "replaying %q: %v", event, err)
		}
		state = next
		ts = ts.AddDate(0, 0, 1+e.rng.Intn(maxHopDays))
		records = append(records, e.record(h, seq+2, state, ts, clearinghouse))
	}

	last := records[len(records)-1]
	if last.StatusCode != h.CurrentStatus {
		return nil, invariantViolation(h.ClaimKey, "history ends at %q, header says %q", last.StatusCode, h.CurrentStatus)
	}
	h.StatusDate = last.StatusDate
	return records, nil
}

func (e *ProgressionEngine) record(h *ClaimHeader, seq int, state string, ts time.Time, clearinghouse string) ClaimStatus {
	rec := ClaimStatus{
		ClaimKey:            h.ClaimKey,
		Sequence:            seq,
		StatusCode:          state,
		StatusDescription:   statusDescriptions[state],
		StatusDate:          ts,
		ClearinghouseStatus: clearinghouse,
		Priority:            "low",
	}

	// payer responses begin at adjudication
	switch state {
	case StatusProcessing:
		rec.ResponseReceived = true
		rec.ResponseType = "277"
		rd := ts
		rec.ResponseDate = &rd
		rec.PayerStatus = "in adjudication"
	case StatusPending:
		rec.ResponseReceived = true
		rec.ResponseType = "277"
		rd := ts
		rec.ResponseDate = &rd
		rec.PayerStatus = statusDescriptions[state]
	case StatusPaid, StatusProcessed, StatusDenied:
		rec.ResponseReceived = true
		rec.ResponseType = "835"
		rd := ts
		rec.ResponseDate = &rd
		rec.PayerStatus = statusDescriptions[state]
	}

	if state == StatusDenied || state == StatusPending {
		rec.FollowUpRequired = true
		fu := ts.AddDate(0, 0, 3)
		rec.FollowUpDate = &fu
		rec.AssignedTo = pickString(e.rng, followUpOwners)
		if state == StatusDenied {
			rec.Priority = "high"
		} else {
			rec.Priority = "medium"
		}
	}

	return rec
}
