package claims

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
	"github.com/revara-health/platform/pkg/common/logger"
)

// Assembler orchestrates the generators in dependency order and returns a
// validated bundle. Each call owns its seeded random source, so the same
// seed reproduces the same bundle and independent organizations can be
// assembled in parallel.
type Assembler struct {
	catalog catalog.Catalog
	cfg     GenerationConfig
}

func NewAssembler(cat catalog.Catalog, cfg GenerationConfig) (*Assembler, error) {
	if err := cat.Validate(); err != nil {
		return nil, newValidationError("catalog: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Assembler{catalog: cat, cfg: cfg}, nil
}

// Assemble builds the complete dataset for one organization. Any failure
// aborts the whole assembly; a partial bundle would break referential
// completeness for downstream readers.
func (a *Assembler) Assemble(orgID string, count int, seed int64) (*Bundle, error) {
	if orgID == "" {
		return nil, newValidationError("organization id is required")
	}
	if count <= 0 {
		return nil, newValidationError("count %d: %w", count, ErrInvalidCount)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Eligibility is independent of the claim chain and runs alongside it.
	// It gets a derived seed so both halves stay deterministic.
	var (
		wg          sync.WaitGroup
		eligibility []Eligibility
		eligErr     error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		eligRng := rand.New(rand.NewSource(seed + 1))
		verifier, err := NewEligibilityVerifier(a.catalog, eligRng)
		if err != nil {
			eligErr = err
			return
		}
		eligibility, eligErr = verifier.Generate(orgID, count)
	}()

	bundle, err := a.assembleClaimChain(orgID, count, rng)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	if eligErr != nil {
		return nil, fmt.Errorf("generating eligibility: %w", eligErr)
	}

	bundle.Eligibility = eligibility
	bundle.Seed = seed
	bundle.GeneratedAt = time.Now().UTC()

	if err := Validate(bundle); err != nil {
		logger.Log.WithError(err).WithField("organization_id", orgID).Error("generated bundle failed validation")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"organization_id": orgID,
		"claims":          len(bundle.Headers),
		"lines":           len(bundle.Lines),
		"status_records":  len(bundle.StatusHistory),
		"remittances":     len(bundle.Remittances),
		"prior_auths":     len(bundle.PriorAuths),
		"eligibility":     len(bundle.Eligibility),
		"seed":            seed,
	}).Info("Assembled claims bundle")

	return bundle, nil
}

// assembleClaimChain runs the header-dependent generators in order:
// prior auths first (headers may reference approved ones), then headers,
// then lines, status history and remittances.
func (a *Assembler) assembleClaimChain(orgID string, count int, rng *rand.Rand) (*Bundle, error) {
	authWorkflow, err := NewPriorAuthWorkflow(a.catalog, rng)
	if err != nil {
		return nil, err
	}
	authCount := count/2 + 1
	auths, err := authWorkflow.Generate(orgID, authCount)
	if err != nil {
		return nil, fmt.Errorf("generating prior auths: %w", err)
	}

	factory, err := NewHeaderFactory(a.catalog, a.cfg, rng)
	if err != nil {
		return nil, err
	}
	headers, err := factory.Generate(orgID, count, ApprovedNumbers(auths))
	if err != nil {
		return nil, fmt.Errorf("generating headers: %w", err)
	}

	allocator, err := NewLineAllocator(a.catalog, rng)
	if err != nil {
		return nil, err
	}
	lines, err := allocator.Allocate(headers)
	if err != nil {
		return nil, fmt.Errorf("allocating lines: %w", err)
	}

	engine, err := NewProgressionEngine(a.catalog, rng)
	if err != nil {
		return nil, err
	}
	history, err := engine.ProgressAll(headers)
	if err != nil {
		return nil, fmt.Errorf("building status history: %w", err)
	}

	reconciler, err := NewRemittanceReconciler(rng)
	if err != nil {
		return nil, err
	}
	remits, err := reconciler.Reconcile(headers)
	if err != nil {
		return nil, fmt.Errorf("reconciling remittances: %w", err)
	}

	return &Bundle{
		OrganizationID: orgID,
		Headers:        headers,
		Lines:          lines,
		StatusHistory:  history,
		Remittances:    remits,
		PriorAuths:     auths,
	}, nil
}
