package claims

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
)

var verificationMethods = []string{"270/271", "payer portal", "phone"}

// EligibilityVerifier generates coverage-verification snapshots. Active
// coverage carries an effective date and benefit accumulators; inactive
// or terminated coverage carries a termination date and nothing else.
type EligibilityVerifier struct {
	catalog catalog.Catalog
	rng     *rand.Rand
}

func NewEligibilityVerifier(cat catalog.Catalog, rng *rand.Rand) (*EligibilityVerifier, error) {
	if err := cat.Validate(); err != nil {
		return nil, newValidationError("catalog: %v", err)
	}
	if rng == nil {
		return nil, newValidationError("random source is required")
	}
	return &EligibilityVerifier{catalog: cat, rng: rng}, nil
}

func (v *EligibilityVerifier) Generate(orgID string, count int) ([]Eligibility, error) {
	if orgID == "" {
		return nil, newValidationError("organization id is required")
	}
	if count <= 0 {
		return nil, newValidationError("count %d: %w", count, ErrInvalidCount)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	snapshots := make([]Eligibility, 0, count)
	for i := 0; i < count; i++ {
		snap := Eligibility{
			OrganizationID:     orgID,
			PatientID:          fmt.Sprintf("PAT-%06d", v.rng.Intn(1000000)),
			VerificationMethod: pickString(v.rng, verificationMethods),
			VerificationDate:   now.AddDate(0, 0, -v.rng.Intn(30)),
			PayerName:          pickString(v.rng, v.catalog.Payers),
			NetworkStatus:      "unknown",
		}

		if v.rng.Float64() < 0.90 {
			snap.VerificationStatus = CoverageActive
			effective := now.AddDate(0, 0, -v.rng.Intn(365)-1)
			snap.EffectiveDate = &effective
			snap.NetworkStatus = pickString(v.rng, []string{"in-network", "out-of-network"})

			snap.CopayAmount = float64(10 + v.rng.Intn(5)*10)
			snap.DeductibleTotal = float64(500 + v.rng.Intn(5)*500)
			snap.DeductibleMet = round2(snap.DeductibleTotal * v.rng.Float64())
			snap.OutOfPocketMax = float64(2000 + v.rng.Intn(7)*1000)
			snap.OutOfPocketMet = round2(snap.OutOfPocketMax * v.rng.Float64())
			snap.PriorAuthRequired = v.rng.Float64() < 0.4
			snap.ReferralRequired = v.rng.Float64() < 0.25
		} else {
			if v.rng.Float64() < 0.5 {
				snap.VerificationStatus = CoverageInactive
			} else {
				snap.VerificationStatus = CoverageTerminated
			}
			termination := now.AddDate(0, 0, -v.rng.Intn(180)-1)
			snap.TerminationDate = &termination
		}

		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}
