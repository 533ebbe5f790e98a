package claims

import (
	"errors"
	"testing"
)

func TestRemittanceDecompositionReconciles(t *testing.T) {
	reconciler, err := NewRemittanceReconciler(testRNG(6))
	if err != nil {
		t.Fatalf("unexpected reconciler error: %v", err)
	}

	headers := []ClaimHeader{
		paidHeader("CLM-ORG1-00001", 1234.56, 0.85),
		paidHeader("CLM-ORG1-00002", 999.99, 0.70),
		paidHeader("CLM-ORG1-00003", 10000.01, 0.95),
	}
	remits, err := reconciler.Reconcile(headers)
	if err != nil {
		t.Fatalf("unexpected reconcile error: %v", err)
	}
	if len(remits) != len(headers) {
		t.Fatalf("expected %d remittances, got %d", len(headers), len(remits))
	}

	for i, r := range remits {
		h := headers[i]
		buckets := round2(r.ContractualAmount + r.DeductibleAmount + r.CoinsuranceAmount + r.CopayAmount)
		if !approxEqual(buckets, r.AdjustmentAmount) {
			t.Fatalf("claim %s: buckets %.2f != adjustment %.2f", r.ClaimKey, buckets, r.AdjustmentAmount)
		}
		residual := round2(h.TotalChargeAmount - r.PaymentAmount - r.AdjustmentAmount)
		if !approxEqual(residual, r.PatientResponsibility) {
			t.Fatalf("claim %s: responsibility %.2f != residual %.2f", r.ClaimKey, r.PatientResponsibility, residual)
		}
		if r.PaymentDate.Before(h.StatusDate) {
			t.Fatalf("claim %s: payment before final status date", r.ClaimKey)
		}
	}
}

func TestRemittanceSkipsUnpaidClaims(t *testing.T) {
	reconciler, err := NewRemittanceReconciler(testRNG(6))
	if err != nil {
		t.Fatalf("unexpected reconciler error: %v", err)
	}

	denied := deniedHeader("CLM-ORG1-00001", 1000.00)
	remits, err := reconciler.Reconcile([]ClaimHeader{denied})
	if err != nil {
		t.Fatalf("unexpected reconcile error: %v", err)
	}
	if len(remits) != 0 {
		t.Fatalf("denied claim produced %d remittances", len(remits))
	}
	if denied.TotalPaidAmount != 0 {
		t.Fatalf("denied claim has payment %.2f", denied.TotalPaidAmount)
	}
}

func TestRemittanceRejectsNegativeResidual(t *testing.T) {
	reconciler, err := NewRemittanceReconciler(testRNG(6))
	if err != nil {
		t.Fatalf("unexpected reconciler error: %v", err)
	}

	h := paidHeader("CLM-ORG1-00001", 1000.00, 0.90)
	h.TotalAdjustmentAmount = 200.00 // paid 900 + adjustment 200 > charge
	_, err = reconciler.Reconcile([]ClaimHeader{h})
	if err == nil {
		t.Fatal("expected error for negative residual")
	}
	if !errors.Is(err, ErrNegativeResidual) {
		t.Fatalf("expected ErrNegativeResidual, got %v", err)
	}
}

func TestRemittanceAdviceNumbersUnique(t *testing.T) {
	reconciler, err := NewRemittanceReconciler(testRNG(12))
	if err != nil {
		t.Fatalf("unexpected reconciler error: %v", err)
	}

	headers := make([]ClaimHeader, 0, 100)
	for i := 0; i < 100; i++ {
		headers = append(headers, paidHeader(keyFor(i), 500, 0.8))
	}
	remits, err := reconciler.Reconcile(headers)
	if err != nil {
		t.Fatalf("unexpected reconcile error: %v", err)
	}

	seen := map[string]bool{}
	for _, r := range remits {
		if seen[r.AdviceNumber] {
			t.Fatalf("duplicate advice number %s", r.AdviceNumber)
		}
		seen[r.AdviceNumber] = true
	}
}
