package claims

import (
	"testing"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	assembler, err := NewAssembler(catalog.DefaultCatalog(), DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("unexpected assembler error: %v", err)
	}
	return assembler
}

func TestAssembleBundleShape(t *testing.T) {
	assembler := newTestAssembler(t)

	bundle, err := assembler.Assemble("ORG1", 20, 42)
	if err != nil {
		t.Fatalf("unexpected assembly error: %v", err)
	}

	if len(bundle.Headers) != 20 {
		t.Fatalf("expected 20 headers, got %d", len(bundle.Headers))
	}
	if len(bundle.Lines) < 20 || len(bundle.Lines) > 100 {
		t.Fatalf("expected 20-100 lines, got %d", len(bundle.Lines))
	}
	if len(bundle.StatusHistory) < 60 || len(bundle.StatusHistory) > 80 {
		t.Fatalf("expected 60-80 status records, got %d", len(bundle.StatusHistory))
	}

	paidClaims := 0
	for _, h := range bundle.Headers {
		if h.TotalPaidAmount > 0 {
			paidClaims++
			if h.CurrentStatus != StatusPaid && h.CurrentStatus != StatusProcessed {
				t.Fatalf("claim %s paid %.2f in status %s", h.ClaimKey, h.TotalPaidAmount, h.CurrentStatus)
			}
		}
	}
	if len(bundle.Remittances) != paidClaims {
		t.Fatalf("expected %d remittances for %d paid claims, got %d", paidClaims, paidClaims, len(bundle.Remittances))
	}

	if len(bundle.PriorAuths) == 0 {
		t.Fatal("expected prior auths in bundle")
	}
	if len(bundle.Eligibility) != 20 {
		t.Fatalf("expected 20 eligibility snapshots, got %d", len(bundle.Eligibility))
	}

	if err := Validate(bundle); err != nil {
		t.Fatalf("assembled bundle fails validation: %v", err)
	}
}

func TestAssembleIsDeterministicForSeed(t *testing.T) {
	assembler := newTestAssembler(t)

	a, err := assembler.Assemble("ORG1", 15, 7)
	if err != nil {
		t.Fatalf("unexpected assembly error: %v", err)
	}
	b, err := assembler.Assemble("ORG1", 15, 7)
	if err != nil {
		t.Fatalf("unexpected assembly error: %v", err)
	}

	if len(a.Lines) != len(b.Lines) || len(a.StatusHistory) != len(b.StatusHistory) ||
		len(a.Remittances) != len(b.Remittances) || len(a.PriorAuths) != len(b.PriorAuths) {
		t.Fatal("identically seeded assemblies differ in shape")
	}
	for i := range a.Headers {
		if a.Headers[i].ClaimKey != b.Headers[i].ClaimKey ||
			a.Headers[i].TotalChargeAmount != b.Headers[i].TotalChargeAmount ||
			a.Headers[i].CurrentStatus != b.Headers[i].CurrentStatus {
			t.Fatalf("header %d differs between identically seeded assemblies", i)
		}
	}
	for i := range a.Eligibility {
		if a.Eligibility[i].PatientID != b.Eligibility[i].PatientID ||
			a.Eligibility[i].VerificationStatus != b.Eligibility[i].VerificationStatus {
			t.Fatalf("eligibility %d differs between identically seeded assemblies", i)
		}
	}
}

func TestAssembledHistoriesEndAtOrBeforeGeneration(t *testing.T) {
	assembler := newTestAssembler(t)

	for seed := int64(1); seed <= 5; seed++ {
		bundle, err := assembler.Assemble("ORG1", 50, seed)
		if err != nil {
			t.Fatalf("seed %d: unexpected assembly error: %v", seed, err)
		}

		now := time.Now().UTC()
		for _, rec := range bundle.StatusHistory {
			if rec.StatusDate.After(now) {
				t.Fatalf("seed %d: claim %s has status %q dated %s, after generation time",
					seed, rec.ClaimKey, rec.StatusCode, rec.StatusDate.Format("2006-01-02"))
			}
		}
		for _, h := range bundle.Headers {
			if h.StatusDate.After(now) {
				t.Fatalf("seed %d: claim %s header status date %s is in the future",
					seed, h.ClaimKey, h.StatusDate.Format("2006-01-02"))
			}
		}
	}
}

func TestAssemblePicksSeedWhenUnset(t *testing.T) {
	assembler := newTestAssembler(t)

	bundle, err := assembler.Assemble("ORG1", 5, 0)
	if err != nil {
		t.Fatalf("unexpected assembly error: %v", err)
	}
	if bundle.Seed == 0 {
		t.Fatal("expected assembler to choose a nonzero seed")
	}
}

func TestAssembleRejectsBadInput(t *testing.T) {
	assembler := newTestAssembler(t)

	if _, err := assembler.Assemble("", 10, 1); err == nil {
		t.Fatal("expected error for empty organization")
	}
	if _, err := assembler.Assemble("ORG1", 0, 1); err == nil {
		t.Fatal("expected error for zero count")
	}
	if _, err := assembler.Assemble("ORG1", -3, 1); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestAssembledPriorAuthReferencesResolve(t *testing.T) {
	assembler := newTestAssembler(t)

	bundle, err := assembler.Assemble("ORG1", 50, 21)
	if err != nil {
		t.Fatalf("unexpected assembly error: %v", err)
	}

	authSet := map[string]string{}
	for _, a := range bundle.PriorAuths {
		authSet[a.AuthNumber] = a.AuthStatus
	}
	for _, h := range bundle.Headers {
		if h.PriorAuthNumber == "" {
			continue
		}
		status, ok := authSet[h.PriorAuthNumber]
		if !ok {
			t.Fatalf("claim %s references auth %s outside the bundle", h.ClaimKey, h.PriorAuthNumber)
		}
		if status != AuthApproved {
			t.Fatalf("claim %s references %s auth %s", h.ClaimKey, status, h.PriorAuthNumber)
		}
	}
}
