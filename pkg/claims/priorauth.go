package claims

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
)

// PriorAuthWorkflow generates authorization requests for an organization.
// Approved auths get a validity window and possibly fewer units than
// requested; denied auths get a reason and an appeal deadline; pending
// auths get neither.
type PriorAuthWorkflow struct {
	catalog  catalog.Catalog
	rng      *rand.Rand
	nextAuth int
}

func NewPriorAuthWorkflow(cat catalog.Catalog, rng *rand.Rand) (*PriorAuthWorkflow, error) {
	if err := cat.Validate(); err != nil {
		return nil, newValidationError("catalog: %v", err)
	}
	if len(cat.AuthDenialReasons) == 0 {
		return nil, newValidationError("catalog has no prior-auth denial reasons")
	}
	if rng == nil {
		return nil, newValidationError("random source is required")
	}
	return &PriorAuthWorkflow{catalog: cat, rng: rng, nextAuth: 100000 + rng.Intn(900000)}, nil
}

func (w *PriorAuthWorkflow) Generate(orgID string, count int) ([]PriorAuth, error) {
	if orgID == "" {
		return nil, newValidationError("organization id is required")
	}
	if count <= 0 {
		return nil, newValidationError("count %d: %w", count, ErrInvalidCount)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	auths := make([]PriorAuth, 0, count)
	for i := 0; i < count; i++ {
		w.nextAuth++
		requested := 1 + w.rng.Intn(10)
		auth := PriorAuth{
			AuthNumber:     fmt.Sprintf("PA-%06d", w.nextAuth),
			OrganizationID: orgID,
			PatientID:      fmt.Sprintf("PAT-%06d", w.rng.Intn(1000000)),
			ProcedureCode:  w.catalog.Procedures[w.rng.Intn(len(w.catalog.Procedures))].Code,
			PayerName:      pickString(w.rng, w.catalog.Payers),
			RequestDate:    now.AddDate(0, 0, -w.rng.Intn(61)),
			UnitsRequested: requested,
		}

		switch r := w.rng.Float64(); {
		case r < 0.70:
			auth.AuthStatus = AuthApproved
			approval := auth.RequestDate.AddDate(0, 0, w.rng.Intn(6))
			expiration := approval.AddDate(0, 0, 1+w.rng.Intn(90))
			auth.ApprovalDate = &approval
			auth.ExpirationDate = &expiration
			// payers routinely approve fewer units than requested
			auth.UnitsApproved = 1 + w.rng.Intn(requested)
		case r < 0.85:
			auth.AuthStatus = AuthDenied
			auth.DenialReason = pickString(w.rng, w.catalog.AuthDenialReasons)
			deadline := now.AddDate(0, 0, 1+w.rng.Intn(60))
			auth.AppealDeadline = &deadline
		default:
			auth.AuthStatus = AuthPending
		}

		auths = append(auths, auth)
	}
	return auths, nil
}

// ApprovedNumbers returns the auth numbers headers are allowed to reference.
func ApprovedNumbers(auths []PriorAuth) []string {
	nums := make([]string, 0, len(auths))
	for _, a := range auths {
		if a.AuthStatus == AuthApproved {
			nums = append(nums, a.AuthNumber)
		}
	}
	return nums
}
