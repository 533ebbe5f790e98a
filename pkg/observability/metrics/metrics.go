package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	bundlesGenerated    atomic.Int64
	claimsGenerated     atomic.Int64
	recordsGenerated    atomic.Int64
	generationFailures  atomic.Int64
	statusTransitions   atomic.Int64
	transitionConflicts atomic.Int64
)

func Init() {}

func ObserveBundleGenerated(claims, records int) {
	bundlesGenerated.Add(1)
	claimsGenerated.Add(int64(claims))
	recordsGenerated.Add(int64(records))
}

func IncGenerationFailed() {
	generationFailures.Add(1)
}

func IncStatusTransition() {
	statusTransitions.Add(1)
}

func IncTransitionConflict() {
	transitionConflicts.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP revara_claims_bundles_generated_total Number of claim bundles assembled and persisted.\n")
	fmt.Fprintf(w, "# TYPE revara_claims_bundles_generated_total counter\n")
	fmt.Fprintf(w, "revara_claims_bundles_generated_total %d\n", bundlesGenerated.Load())

	fmt.Fprintf(w, "# HELP revara_claims_headers_generated_total Number of claim headers generated.\n")
	fmt.Fprintf(w, "# TYPE revara_claims_headers_generated_total counter\n")
	fmt.Fprintf(w, "revara_claims_headers_generated_total %d\n", claimsGenerated.Load())

	fmt.Fprintf(w, "# HELP revara_claims_records_generated_total Number of downstream records (lines, status, remits, auths, eligibility) generated.\n")
	fmt.Fprintf(w, "# TYPE revara_claims_records_generated_total counter\n")
	fmt.Fprintf(w, "revara_claims_records_generated_total %d\n", recordsGenerated.Load())

	fmt.Fprintf(w, "# HELP revara_claims_generation_failures_total Number of assemblies aborted by validation or persistence errors.\n")
	fmt.Fprintf(w, "# TYPE revara_claims_generation_failures_total counter\n")
	fmt.Fprintf(w, "revara_claims_generation_failures_total %d\n", generationFailures.Load())

	fmt.Fprintf(w, "# HELP revara_claims_status_transitions_total Number of live status transitions applied.\n")
	fmt.Fprintf(w, "# TYPE revara_claims_status_transitions_total counter\n")
	fmt.Fprintf(w, "revara_claims_status_transitions_total %d\n", statusTransitions.Load())

	fmt.Fprintf(w, "# HELP revara_claims_transition_conflicts_total Number of transitions rejected by the optimistic version check.\n")
	fmt.Fprintf(w, "# TYPE revara_claims_transition_conflicts_total counter\n")
	fmt.Fprintf(w, "revara_claims_transition_conflicts_total %d\n", transitionConflicts.Load())
}

func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WritePrometheus(w)
	}
}
