package claims

import (
	"math/rand"
	"testing"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
)

func testRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestHeaderFactoryRejectsBadWeights(t *testing.T) {
	cfg := DefaultGenerationConfig()
	cfg.ScenarioWeights = []ScenarioWeight{
		{Scenario: ScenarioPaid, Weight: 0.5},
		{Scenario: ScenarioDenied, Weight: 0.3},
	}
	_, err := NewHeaderFactory(catalog.DefaultCatalog(), cfg, testRNG(1))
	if err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHeaderFactoryRejectsNonPositiveCharge(t *testing.T) {
	cfg := DefaultGenerationConfig()
	cfg.MinChargeAmount = 0
	if _, err := NewHeaderFactory(catalog.DefaultCatalog(), cfg, testRNG(1)); err == nil {
		t.Fatal("expected error for non-positive minimum charge")
	}
}

func TestHeaderFactoryRejectsZeroCount(t *testing.T) {
	factory, err := NewHeaderFactory(catalog.DefaultCatalog(), DefaultGenerationConfig(), testRNG(1))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}
	if _, err := factory.Generate("ORG1", 0, nil); err == nil {
		t.Fatal("expected error for zero count")
	}
}

func TestHeaderFinancialInvariants(t *testing.T) {
	factory, err := NewHeaderFactory(catalog.DefaultCatalog(), DefaultGenerationConfig(), testRNG(7))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}
	headers, err := factory.Generate("ORG1", 200, nil)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}
	if len(headers) != 200 {
		t.Fatalf("expected 200 headers, got %d", len(headers))
	}

	for _, h := range headers {
		if h.TotalChargeAmount <= 0 {
			t.Fatalf("claim %s has non-positive charge %.2f", h.ClaimKey, h.TotalChargeAmount)
		}
		settled := h.TotalPaidAmount + h.TotalAdjustmentAmount
		if settled > h.TotalChargeAmount+centTolerance {
			t.Fatalf("claim %s settles %.2f above charge %.2f", h.ClaimKey, settled, h.TotalChargeAmount)
		}
		switch h.CurrentStatus {
		case StatusPaid:
			if !approxEqual(settled, h.TotalChargeAmount) {
				t.Fatalf("paid claim %s settles %.2f of %.2f", h.ClaimKey, settled, h.TotalChargeAmount)
			}
		case StatusDenied, StatusPending:
			if h.TotalPaidAmount != 0 || h.TotalAdjustmentAmount != 0 {
				t.Fatalf("%s claim %s has nonzero payment fields", h.CurrentStatus, h.ClaimKey)
			}
		}
		if h.ClaimType == ClaimTypeInstitutional && (h.AdmissionDate == nil || h.DischargeDate == nil) {
			t.Fatalf("institutional claim %s missing admission/discharge dates", h.ClaimKey)
		}
		if h.ClaimType == ClaimTypeProfessional && h.AdmissionDate != nil {
			t.Fatalf("professional claim %s carries an admission date", h.ClaimKey)
		}
	}
}

func TestHeadersCarryCatalogDiagnoses(t *testing.T) {
	cat := catalog.DefaultCatalog()
	factory, err := NewHeaderFactory(cat, DefaultGenerationConfig(), testRNG(13))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}
	headers, err := factory.Generate("ORG1", 100, nil)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}

	known := make(map[string]struct{}, len(cat.Diagnoses))
	for _, d := range cat.Diagnoses {
		known[d.Code] = struct{}{}
	}

	for _, h := range headers {
		if len(h.DiagnosisCodes) < 1 || len(h.DiagnosisCodes) > 3 {
			t.Fatalf("claim %s carries %d diagnosis codes", h.ClaimKey, len(h.DiagnosisCodes))
		}
		seen := make(map[string]struct{}, len(h.DiagnosisCodes))
		for _, code := range h.DiagnosisCodes {
			if _, ok := known[code]; !ok {
				t.Fatalf("claim %s carries diagnosis %q not in the catalog", h.ClaimKey, code)
			}
			if _, dup := seen[code]; dup {
				t.Fatalf("claim %s repeats diagnosis %q", h.ClaimKey, code)
			}
			seen[code] = struct{}{}
		}
	}
}

func TestHeaderTimelineLeavesRoomForHistory(t *testing.T) {
	factory, err := NewHeaderFactory(catalog.DefaultCatalog(), DefaultGenerationConfig(), testRNG(17))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}
	headers, err := factory.Generate("ORG1", 200, nil)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}

	now := time.Now().UTC()
	for _, h := range headers {
		latest := h.SubmissionDate.AddDate(0, 0, progressionHops*maxHopDays)
		if latest.After(now) {
			t.Fatalf("claim %s submitted %s could close its history after the clock",
				h.ClaimKey, h.SubmissionDate.Format("2006-01-02"))
		}
	}
}

func TestHeaderPriorAuthReferencesStayInSet(t *testing.T) {
	factory, err := NewHeaderFactory(catalog.DefaultCatalog(), DefaultGenerationConfig(), testRNG(11))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}
	auths := []string{"PA-000001", "PA-000002"}
	headers, err := factory.Generate("ORG1", 100, auths)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}

	linked := 0
	for _, h := range headers {
		if h.PriorAuthNumber == "" {
			continue
		}
		linked++
		if h.PriorAuthNumber != auths[0] && h.PriorAuthNumber != auths[1] {
			t.Fatalf("claim %s references unknown auth %q", h.ClaimKey, h.PriorAuthNumber)
		}
	}
	if linked == 0 {
		t.Fatal("expected some headers to reference prior auths")
	}
}

func TestHeaderGenerationIsDeterministic(t *testing.T) {
	cat := catalog.DefaultCatalog()
	cfg := DefaultGenerationConfig()

	first, err := NewHeaderFactory(cat, cfg, testRNG(99))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}
	second, err := NewHeaderFactory(cat, cfg, testRNG(99))
	if err != nil {
		t.Fatalf("unexpected factory error: %v", err)
	}

	a, err := first.Generate("ORG1", 25, nil)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}
	b, err := second.Generate("ORG1", 25, nil)
	if err != nil {
		t.Fatalf("unexpected generation error: %v", err)
	}

	for i := range a {
		if a[i].ClaimKey != b[i].ClaimKey ||
			a[i].TotalChargeAmount != b[i].TotalChargeAmount ||
			a[i].CurrentStatus != b[i].CurrentStatus ||
			a[i].PatientID != b[i].PatientID {
			t.Fatalf("header %d differs between identically seeded runs", i)
		}
	}
}
