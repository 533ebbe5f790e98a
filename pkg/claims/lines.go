package claims

import (
	"math/rand"

	"github.com/revara-health/platform/pkg/catalog"
	"gorm.io/datatypes"
)

// LineAllocator splits each header's total charge across 1-5 line items.
// Allocation is allocate-then-reconcile: draw jittered proportions,
// normalize them to sum to 1, round each line to cents, then push the
// residual cent onto the largest line. Paid and adjustment amounts are
// derived from the header's aggregate ratios the same way, so the
// header-line sum invariants hold exactly by construction.
type LineAllocator struct {
	catalog catalog.Catalog
	rng     *rand.Rand
}

func NewLineAllocator(cat catalog.Catalog, rng *rand.Rand) (*LineAllocator, error) {
	if err := cat.Validate(); err != nil {
		return nil, newValidationError("catalog: %v", err)
	}
	if rng == nil {
		return nil, newValidationError("random source is required")
	}
	return &LineAllocator{catalog: cat, rng: rng}, nil
}

func (a *LineAllocator) Allocate(headers []ClaimHeader) ([]ClaimLine, error) {
	lines := make([]ClaimLine, 0, len(headers)*2)
	for i := range headers {
		claimLines, err := a.allocateClaim(&headers[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, claimLines...)
	}
	return lines, nil
}

func (a *LineAllocator) allocateClaim(h *ClaimHeader) ([]ClaimLine, error) {
	if h.TotalChargeAmount <= 0 {
		return nil, invariantViolation(h.ClaimKey, "total charge %.2f: %v", h.TotalChargeAmount, ErrInvalidCharge)
	}

	n := 1 + a.rng.Intn(5)
	charges := a.splitAmount(h.TotalChargeAmount, n)
	paid := deriveAmounts(charges, h.TotalPaidAmount, h.TotalChargeAmount)
	adjustments := deriveAmounts(charges, h.TotalAdjustmentAmount, h.TotalChargeAmount)

	lines := make([]ClaimLine, 0, n)
	for i := 0; i < n; i++ {
		proc := a.catalog.Procedures[a.rng.Intn(len(a.catalog.Procedures))]
		line := ClaimLine{
			ClaimKey:             h.ClaimKey,
			LineNumber:           i + 1,
			ProcedureCode:        proc.Code,
			ProcedureDescription: proc.Description,
			ServiceDate:          h.ServiceDateFrom,
			Units:                1 + a.rng.Intn(5),
			ChargeAmount:         charges[i],
			AllowedAmount:        round2(charges[i] - adjustments[i]),
			PaidAmount:           paid[i],
			AdjustmentAmount:     adjustments[i],
			LineStatus:           LineApproved,
			DiagnosisPointers:    a.diagnosisPointers(len(h.DiagnosisCodes)),
		}

		if a.rng.Float64() < 0.2 {
			line.Modifiers = datatypes.NewJSONSlice([]string{pickString(a.rng, []string{"25", "59", "76", "LT", "RT"})})
		}
		if h.ClaimType == ClaimTypeInstitutional {
			line.RevenueCode = a.catalog.RevenueCodes[a.rng.Intn(len(a.catalog.RevenueCodes))].Code
		}

		switch h.CurrentStatus {
		case StatusDenied:
			// partial-line denial: roughly half the lines carry the denial
			if a.rng.Float64() < 0.5 {
				reason := a.catalog.DenialReasons[a.rng.Intn(len(a.catalog.DenialReasons))]
				line.LineStatus = LineDenied
				line.DenialCode = reason.Code
				line.DenialDescription = reason.Description
			}
		case StatusPending:
			line.LineStatus = LinePending
		}

		lines = append(lines, line)
	}

	// at least one line must carry the denial on a denied claim
	if h.CurrentStatus == StatusDenied {
		denied := false
		for _, l := range lines {
			if l.LineStatus == LineDenied {
				denied = true
				break
			}
		}
		if !denied {
			reason := a.catalog.DenialReasons[a.rng.Intn(len(a.catalog.DenialReasons))]
			lines[0].LineStatus = LineDenied
			lines[0].DenialCode = reason.Code
			lines[0].DenialDescription = reason.Description
		}
	}

	return lines, nil
}

// splitAmount divides total into n cent-rounded parts that sum to total
// exactly. The residual from rounding lands on the largest part.
func (a *LineAllocator) splitAmount(total float64, n int) []float64 {
	if n == 1 {
		return []float64{total}
	}

	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		weights[i] = 0.5 + a.rng.Float64()
		sum += weights[i]
	}

	parts := make([]float64, n)
	var allocated float64
	largest := 0
	for i := range weights {
		parts[i] = round2(total * weights[i] / sum)
		allocated += parts[i]
		if parts[i] > parts[largest] {
			largest = i
		}
	}
	parts[largest] = round2(parts[largest] + total - allocated)
	return parts
}

// deriveAmounts applies total/base to each charge and reconciles the
// rounded results so they sum to total exactly.
func deriveAmounts(charges []float64, total, base float64) []float64 {
	amounts := make([]float64, len(charges))
	if total == 0 {
		return amounts
	}

	ratio := total / base
	var allocated float64
	largest := 0
	for i, c := range charges {
		amounts[i] = round2(c * ratio)
		allocated += amounts[i]
		if amounts[i] > amounts[largest] {
			largest = i
		}
	}
	amounts[largest] = round2(amounts[largest] + total - allocated)
	return amounts
}

// diagnosisPointers indexes 1-based into the header's diagnosis codes.
// The primary diagnosis always applies; deeper pointers are drawn only
// when the header carries that many codes.
func (a *LineAllocator) diagnosisPointers(diagnoses int) datatypes.JSONSlice[int] {
	pointers := []int{1}
	for p := 2; p <= diagnoses; p++ {
		if a.rng.Float64() < 0.3 {
			pointers = append(pointers, p)
		}
	}
	return datatypes.NewJSONSlice(pointers)
}
