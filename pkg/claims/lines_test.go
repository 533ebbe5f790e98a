package claims

import (
	"math"
	"testing"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
	"gorm.io/datatypes"
)

func paidHeader(key string, charge, ratio float64) ClaimHeader {
	paid := round2(charge * ratio)
	return ClaimHeader{
		ClaimKey:              key,
		OrganizationID:        "ORG1",
		ClaimType:             ClaimTypeProfessional,
		DiagnosisCodes:        datatypes.NewJSONSlice([]string{"E11.9", "I10"}),
		ServiceDateFrom:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		ServiceDateTo:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		SubmissionDate:        time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		StatusDate:            time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		TotalChargeAmount:     charge,
		TotalPaidAmount:       paid,
		TotalAdjustmentAmount: round2(charge - paid),
		CurrentStatus:         StatusPaid,
	}
}

func TestLineDiagnosisPointersIndexHeaderCodes(t *testing.T) {
	allocator, err := NewLineAllocator(catalog.DefaultCatalog(), testRNG(19))
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	headers := make([]ClaimHeader, 0, 40)
	for i := 0; i < 40; i++ {
		headers = append(headers, paidHeader(keyFor(i), 750, 0.8))
	}
	lines, err := allocator.Allocate(headers)
	if err != nil {
		t.Fatalf("unexpected allocation error: %v", err)
	}

	for _, l := range lines {
		if len(l.DiagnosisPointers) == 0 {
			t.Fatalf("claim %s line %d has no diagnosis pointers", l.ClaimKey, l.LineNumber)
		}
		if l.DiagnosisPointers[0] != 1 {
			t.Fatalf("claim %s line %d does not point at the primary diagnosis", l.ClaimKey, l.LineNumber)
		}
		for _, p := range l.DiagnosisPointers {
			if p < 1 || p > 2 {
				t.Fatalf("claim %s line %d pointer %d outside the header's 2 diagnosis codes",
					l.ClaimKey, l.LineNumber, p)
			}
		}
	}
}

func deniedHeader(key string, charge float64) ClaimHeader {
	h := paidHeader(key, charge, 0)
	h.TotalPaidAmount = 0
	h.TotalAdjustmentAmount = 0
	h.CurrentStatus = StatusDenied
	return h
}

func TestLineChargesSumExactlyToHeaderTotal(t *testing.T) {
	allocator, err := NewLineAllocator(catalog.DefaultCatalog(), testRNG(3))
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	headers := make([]ClaimHeader, 0, 50)
	for i := 0; i < 50; i++ {
		headers = append(headers, paidHeader(keyFor(i), 100+float64(i)*137.77, 0.8))
	}

	lines, err := allocator.Allocate(headers)
	if err != nil {
		t.Fatalf("unexpected allocation error: %v", err)
	}
	if len(lines) < len(headers) || len(lines) > len(headers)*5 {
		t.Fatalf("expected between %d and %d lines, got %d", len(headers), len(headers)*5, len(lines))
	}

	chargeSums := map[string]float64{}
	paidSums := map[string]float64{}
	for _, l := range lines {
		chargeSums[l.ClaimKey] = round2(chargeSums[l.ClaimKey] + l.ChargeAmount)
		paidSums[l.ClaimKey] = round2(paidSums[l.ClaimKey] + l.PaidAmount)
	}
	for _, h := range headers {
		if math.Abs(chargeSums[h.ClaimKey]-h.TotalChargeAmount) > 0.001 {
			t.Fatalf("claim %s: line charges %.4f != header %.4f", h.ClaimKey, chargeSums[h.ClaimKey], h.TotalChargeAmount)
		}
		if math.Abs(paidSums[h.ClaimKey]-h.TotalPaidAmount) > 0.001 {
			t.Fatalf("claim %s: line payments %.4f != header %.4f", h.ClaimKey, paidSums[h.ClaimKey], h.TotalPaidAmount)
		}
	}
}

func TestPaidScenarioAtKnownRatio(t *testing.T) {
	allocator, err := NewLineAllocator(catalog.DefaultCatalog(), testRNG(5))
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	lines, err := allocator.Allocate([]ClaimHeader{paidHeader("CLM-ORG1-00001", 1000.00, 0.85)})
	if err != nil {
		t.Fatalf("unexpected allocation error: %v", err)
	}

	var paid float64
	for _, l := range lines {
		paid = round2(paid + l.PaidAmount)
	}
	if !approxEqual(paid, 850.00) {
		t.Fatalf("expected summed paid 850.00, got %.2f", paid)
	}
}

func TestDeniedHeaderProducesDeniedLines(t *testing.T) {
	allocator, err := NewLineAllocator(catalog.DefaultCatalog(), testRNG(8))
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	headers := make([]ClaimHeader, 0, 20)
	for i := 0; i < 20; i++ {
		headers = append(headers, deniedHeader(keyFor(i), 500))
	}
	lines, err := allocator.Allocate(headers)
	if err != nil {
		t.Fatalf("unexpected allocation error: %v", err)
	}

	deniedByClaim := map[string]bool{}
	for _, l := range lines {
		if l.PaidAmount != 0 {
			t.Fatalf("denied claim %s line %d has payment %.2f", l.ClaimKey, l.LineNumber, l.PaidAmount)
		}
		if l.LineStatus == LineDenied {
			if l.DenialCode == "" || l.DenialDescription == "" {
				t.Fatalf("denied line %s/%d missing reason", l.ClaimKey, l.LineNumber)
			}
			deniedByClaim[l.ClaimKey] = true
		}
	}
	for _, h := range headers {
		if !deniedByClaim[h.ClaimKey] {
			t.Fatalf("denied claim %s has no denied lines", h.ClaimKey)
		}
	}
}

func TestAllocatorRejectsZeroCharge(t *testing.T) {
	allocator, err := NewLineAllocator(catalog.DefaultCatalog(), testRNG(9))
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	bad := paidHeader("CLM-ORG1-00001", 100, 0.8)
	bad.TotalChargeAmount = 0
	if _, err := allocator.Allocate([]ClaimHeader{bad}); err == nil {
		t.Fatal("expected error for zero-charge header")
	}
}

func keyFor(i int) string {
	return "CLM-ORG1-" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}
