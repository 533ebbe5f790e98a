package claims

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/revara-health/platform/pkg/catalog"
	"gorm.io/datatypes"
)

type Scenario string

const (
	ScenarioPaid    Scenario = "paid"
	ScenarioPartial Scenario = "partial"
	ScenarioDenied  Scenario = "denied"
	ScenarioPending Scenario = "pending"
)

type ScenarioWeight struct {
	Scenario Scenario
	Weight   float64
}

type GenerationConfig struct {
	ServiceWindowDays int
	MinChargeAmount   float64
	MaxChargeAmount   float64
	ScenarioWeights   []ScenarioWeight
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		ServiceWindowDays: 90,
		MinChargeAmount:   150,
		MaxChargeAmount:   25000,
		ScenarioWeights: []ScenarioWeight{
			{Scenario: ScenarioPaid, Weight: 0.40},
			{Scenario: ScenarioPartial, Weight: 0.30},
			{Scenario: ScenarioDenied, Weight: 0.20},
			{Scenario: ScenarioPending, Weight: 0.10},
		},
	}
}

func (c GenerationConfig) validate() error {
	if c.ServiceWindowDays <= 0 {
		return newValidationError("service window must be positive, got %d", c.ServiceWindowDays)
	}
	if c.MinChargeAmount <= 0 {
		return newValidationError("minimum charge must be positive: %w", ErrInvalidCharge)
	}
	if c.MaxChargeAmount < c.MinChargeAmount {
		return newValidationError("maximum charge %.2f below minimum %.2f: %w",
			c.MaxChargeAmount, c.MinChargeAmount, ErrInvalidCharge)
	}
	if len(c.ScenarioWeights) == 0 {
		return newValidationError("no scenario weights configured: %w", ErrInvalidWeights)
	}
	var sum float64
	for _, w := range c.ScenarioWeights {
		if w.Weight < 0 {
			return newValidationError("negative weight for scenario %s: %w", w.Scenario, ErrInvalidWeights)
		}
		sum += w.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return newValidationError("weights sum to %.6f: %w", sum, ErrInvalidWeights)
	}
	return nil
}

var (
	firstNames = []string{"James", "Maria", "Robert", "Linda", "Michael", "Patricia", "David", "Jennifer", "William", "Elizabeth", "Carlos", "Aisha", "Wei", "Priya", "Omar", "Grace"}
	lastNames  = []string{"Smith", "Johnson", "Garcia", "Chen", "Williams", "Brown", "Patel", "Nguyen", "Davis", "Martinez", "Kim", "Okafor", "Anderson", "Thomas", "Hernandez", "Lee"}
)

// Timeline budget between a claim's service start and the last hop of its
// simulated history. The service-date window is pushed back by this much
// so even the slowest claim closes its history at or before generation
// time, and live transitions stamped with wall clock stay monotonic.
const (
	maxServiceSpreadDays = 2
	maxSubmissionLagDays = 30
	historyBudgetDays    = maxServiceSpreadDays + maxSubmissionLagDays + progressionHops*maxHopDays
)

// HeaderFactory produces claim headers with a weighted payment-outcome
// scenario per claim. All randomness flows through the injected rng so a
// fixed seed reproduces the same population.
type HeaderFactory struct {
	catalog catalog.Catalog
	cfg     GenerationConfig
	rng     *rand.Rand
}

func NewHeaderFactory(cat catalog.Catalog, cfg GenerationConfig, rng *rand.Rand) (*HeaderFactory, error) {
	if err := cat.Validate(); err != nil {
		return nil, newValidationError("catalog: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, newValidationError("random source is required")
	}
	return &HeaderFactory{catalog: cat, cfg: cfg, rng: rng}, nil
}

// Generate builds count headers for one organization. Approved prior-auth
// numbers may be passed in; a subset of headers will reference them, and
// only them, so no header ever points at an auth outside the bundle.
func (f *HeaderFactory) Generate(orgID string, count int, authNumbers []string) ([]ClaimHeader, error) {
	if orgID == "" {
		return nil, newValidationError("organization id is required")
	}
	if count <= 0 {
		return nil, newValidationError("count %d: %w", count, ErrInvalidCount)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	headers := make([]ClaimHeader, 0, count)
	for i := 0; i < count; i++ {
		serviceFrom := now.AddDate(0, 0, -f.rng.Intn(f.cfg.ServiceWindowDays)-historyBudgetDays)
		serviceTo := serviceFrom.AddDate(0, 0, f.rng.Intn(maxServiceSpreadDays+1))
		submission := serviceTo.AddDate(0, 0, f.rng.Intn(maxSubmissionLagDays+1))

		charge := round2(f.cfg.MinChargeAmount + f.rng.Float64()*(f.cfg.MaxChargeAmount-f.cfg.MinChargeAmount))

		h := ClaimHeader{
			ClaimKey:            fmt.Sprintf("CLM-%s-%05d", orgID, i+1),
			OrganizationID:      orgID,
			PatientID:           fmt.Sprintf("PAT-%06d", f.rng.Intn(1000000)),
			PatientFirstName:    pickString(f.rng, firstNames),
			PatientLastName:     pickString(f.rng, lastNames),
			PatientDOB:          now.AddDate(-18-f.rng.Intn(70), 0, -f.rng.Intn(365)),
			PatientGender:       pickString(f.rng, []string{"F", "M"}),
			ClaimType:           ClaimTypeProfessional,
			DiagnosisCodes:      f.drawDiagnoses(),
			ServiceDateFrom:     serviceFrom,
			ServiceDateTo:       serviceTo,
			TotalChargeAmount:   charge,
			ProviderNPI:         f.randomNPI(),
			FacilityNPI:         f.randomNPI(),
			PayerName:           pickString(f.rng, f.catalog.Payers),
			Department:          pickString(f.rng, f.catalog.Departments),
			SubmissionDate:      submission,
			StatusDate:          submission,
			EligibilityVerified: f.rng.Float64() < 0.8,
		}

		if f.rng.Float64() < 0.3 {
			h.ClaimType = ClaimTypeInstitutional
			adm := serviceFrom
			dis := serviceTo
			h.AdmissionDate = &adm
			h.DischargeDate = &dis
		}

		if len(authNumbers) > 0 && f.rng.Float64() < 0.3 {
			h.PriorAuthNumber = pickString(f.rng, authNumbers)
		}

		f.applyScenario(&h)
		headers = append(headers, h)
	}
	return headers, nil
}

func (f *HeaderFactory) pickScenario() Scenario {
	r := f.rng.Float64()
	var cum float64
	for _, w := range f.cfg.ScenarioWeights {
		cum += w.Weight
		if r < cum {
			return w.Scenario
		}
	}
	return f.cfg.ScenarioWeights[len(f.cfg.ScenarioWeights)-1].Scenario
}

// applyScenario sets paid/adjustment totals and current status so that
// paid + adjustment <= charge always, with equality exactly for "paid".
func (f *HeaderFactory) applyScenario(h *ClaimHeader) {
	switch f.pickScenario() {
	case ScenarioPaid:
		ratio := 0.70 + f.rng.Float64()*0.25
		h.TotalPaidAmount = round2(h.TotalChargeAmount * ratio)
		h.TotalAdjustmentAmount = round2(h.TotalChargeAmount - h.TotalPaidAmount)
		h.CurrentStatus = StatusPaid
	case ScenarioPartial:
		paidRatio := 0.30 + f.rng.Float64()*0.40
		adjRatio := 0.10 + f.rng.Float64()*0.20
		h.TotalPaidAmount = round2(h.TotalChargeAmount * paidRatio)
		h.TotalAdjustmentAmount = round2(h.TotalChargeAmount * adjRatio)
		h.CurrentStatus = StatusProcessed
	case ScenarioDenied:
		h.CurrentStatus = StatusDenied
	default:
		h.CurrentStatus = StatusPending
	}
}

// drawDiagnoses picks 1-3 distinct ICD-10 codes; line-level diagnosis
// pointers index into this list.
func (f *HeaderFactory) drawDiagnoses() datatypes.JSONSlice[string] {
	n := 1 + f.rng.Intn(3)
	if n > len(f.catalog.Diagnoses) {
		n = len(f.catalog.Diagnoses)
	}
	codes := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(codes) < n {
		d := f.catalog.Diagnoses[f.rng.Intn(len(f.catalog.Diagnoses))]
		if _, dup := seen[d.Code]; dup {
			continue
		}
		seen[d.Code] = struct{}{}
		codes = append(codes, d.Code)
	}
	return datatypes.NewJSONSlice(codes)
}

func (f *HeaderFactory) randomNPI() string {
	return fmt.Sprintf("1%09d", f.rng.Intn(1000000000))
}

func pickString(rng *rand.Rand, items []string) string {
	return items[rng.Intn(len(items))]
}
