package claims

import (
	"fmt"
	"math/rand"
)

// Fixed decomposition weights for the adjustment amount. The split is
// deterministic given the adjustment total: contractual, deductible and
// coinsurance take their shares, copay takes the exact remainder (about
// 5%), so the buckets always sum back to the adjustment.
const (
	contractualShare = 0.70
	deductibleShare  = 0.15
	coinsuranceShare = 0.10
)

// RemittanceReconciler produces one remittance advice per header that
// received payment, decomposing the adjustment and deriving patient
// responsibility as the residual of charge - paid - adjustment.
type RemittanceReconciler struct {
	rng *rand.Rand

	// advice numbers are sequential from a random base so they stay
	// unique within a bundle
	nextAdvice int
}

func NewRemittanceReconciler(rng *rand.Rand) (*RemittanceReconciler, error) {
	if rng == nil {
		return nil, newValidationError("random source is required")
	}
	return &RemittanceReconciler{rng: rng, nextAdvice: 1000000 + rng.Intn(9000000)}, nil
}

func (r *RemittanceReconciler) Reconcile(headers []ClaimHeader) ([]Remittance, error) {
	remits := make([]Remittance, 0, len(headers))
	for i := range headers {
		h := &headers[i]
		if h.TotalPaidAmount <= 0 {
			continue
		}
		remit, err := r.reconcileClaim(h)
		if err != nil {
			return nil, err
		}
		remits = append(remits, remit)
	}
	return remits, nil
}

func (r *RemittanceReconciler) reconcileClaim(h *ClaimHeader) (Remittance, error) {
	residual := round2(h.TotalChargeAmount - h.TotalPaidAmount - h.TotalAdjustmentAmount)
	if residual < -centTolerance {
		return Remittance{}, invariantViolation(h.ClaimKey,
			"payment %.2f + adjustment %.2f exceed charge %.2f: %v",
			h.TotalPaidAmount, h.TotalAdjustmentAmount, h.TotalChargeAmount, ErrNegativeResidual)
	}
	if residual < 0 {
		residual = 0
	}

	adj := h.TotalAdjustmentAmount
	contractual := round2(adj * contractualShare)
	deductible := round2(adj * deductibleShare)
	coinsurance := round2(adj * coinsuranceShare)
	copay := round2(adj - contractual - deductible - coinsurance)

	r.nextAdvice++

	return Remittance{
		AdviceNumber:          fmt.Sprintf("RA-%08d", r.nextAdvice),
		ClaimKey:              h.ClaimKey,
		CheckEFTNumber:        fmt.Sprintf("EFT-%08d", r.rng.Intn(100000000)),
		PaymentAmount:         h.TotalPaidAmount,
		PaymentDate:           h.StatusDate.AddDate(0, 0, r.rng.Intn(15)),
		AdjustmentReasonCode:  "CO-45",
		AdjustmentAmount:      adj,
		ContractualAmount:     contractual,
		DeductibleAmount:      deductible,
		CoinsuranceAmount:     coinsurance,
		CopayAmount:           copay,
		PatientResponsibility: residual,
	}, nil
}
