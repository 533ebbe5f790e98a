package claims

import (
	"time"

	"gorm.io/datatypes"
)

// Claim status codes. "processed" is the terminal state of a partially paid
// claim; "pending" is soft-terminal and may resume processing.
const (
	StatusSubmitted    = "submitted"
	StatusAcknowledged = "acknowledged"
	StatusProcessing   = "processing"
	StatusPaid         = "paid"
	StatusProcessed    = "processed"
	StatusDenied       = "denied"
	StatusPending      = "pending"
)

const (
	ClaimTypeProfessional  = "professional"
	ClaimTypeInstitutional = "institutional"
)

const (
	LineApproved = "approved"
	LineDenied   = "denied"
	LinePending  = "pending"
)

const (
	AuthApproved = "approved"
	AuthDenied   = "denied"
	AuthPending  = "pending"
)

const (
	CoverageActive     = "active"
	CoverageInactive   = "inactive"
	CoverageTerminated = "terminated"
)

type ClaimHeader struct {
	ClaimKey       string `json:"claim_key" gorm:"primaryKey;column:claim_key"`
	OrganizationID string `json:"organization_id" gorm:"column:organization_id;index"`

	PatientID        string    `json:"patient_id" gorm:"column:patient_id"`
	PatientFirstName string    `json:"patient_first_name" gorm:"column:patient_first_name"`
	PatientLastName  string    `json:"patient_last_name" gorm:"column:patient_last_name"`
	PatientDOB       time.Time `json:"patient_dob" gorm:"column:patient_dob"`
	PatientGender    string    `json:"patient_gender" gorm:"column:patient_gender"`

	ClaimType       string                      `json:"claim_type" gorm:"column:claim_type"`
	DiagnosisCodes  datatypes.JSONSlice[string] `json:"diagnosis_codes" gorm:"column:diagnosis_codes"`
	ServiceDateFrom time.Time                   `json:"service_date_from" gorm:"column:service_date_from"`
	ServiceDateTo   time.Time                   `json:"service_date_to" gorm:"column:service_date_to"`
	AdmissionDate   *time.Time                  `json:"admission_date,omitempty" gorm:"column:admission_date"`
	DischargeDate   *time.Time                  `json:"discharge_date,omitempty" gorm:"column:discharge_date"`

	TotalChargeAmount     float64 `json:"total_charge_amount" gorm:"column:total_charge_amount"`
	TotalPaidAmount       float64 `json:"total_paid_amount" gorm:"column:total_paid_amount"`
	TotalAdjustmentAmount float64 `json:"total_adjustment_amount" gorm:"column:total_adjustment_amount"`

	CurrentStatus string    `json:"current_status" gorm:"column:current_status;index"`
	StatusDate    time.Time `json:"status_date" gorm:"column:status_date"`

	ProviderNPI string `json:"provider_npi" gorm:"column:provider_npi"`
	FacilityNPI string `json:"facility_npi" gorm:"column:facility_npi"`
	PayerName   string `json:"payer_name" gorm:"column:payer_name;index"`
	Department  string `json:"department" gorm:"column:department;index"`

	SubmissionDate      time.Time `json:"submission_date" gorm:"column:submission_date"`
	PriorAuthNumber     string    `json:"prior_auth_number,omitempty" gorm:"column:prior_auth_number"`
	EligibilityVerified bool      `json:"eligibility_verified" gorm:"column:eligibility_verified"`

	// Optimistic concurrency guard for live status transitions.
	Version   int       `json:"version" gorm:"column:version"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (ClaimHeader) TableName() string {
	return "claim_headers"
}

type ClaimLine struct {
	ID         uint   `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	ClaimKey   string `json:"claim_key" gorm:"column:claim_key;index"`
	LineNumber int    `json:"line_number" gorm:"column:line_number"`

	ProcedureCode        string                      `json:"procedure_code" gorm:"column:procedure_code"`
	ProcedureDescription string                      `json:"procedure_description" gorm:"column:procedure_description"`
	Modifiers            datatypes.JSONSlice[string] `json:"modifiers,omitempty" gorm:"column:modifiers"`
	RevenueCode          string                      `json:"revenue_code,omitempty" gorm:"column:revenue_code"`

	ServiceDate time.Time `json:"service_date" gorm:"column:service_date"`
	Units       int       `json:"units" gorm:"column:units"`

	ChargeAmount     float64 `json:"charge_amount" gorm:"column:charge_amount"`
	AllowedAmount    float64 `json:"allowed_amount" gorm:"column:allowed_amount"`
	PaidAmount       float64 `json:"paid_amount" gorm:"column:paid_amount"`
	AdjustmentAmount float64 `json:"adjustment_amount" gorm:"column:adjustment_amount"`

	LineStatus        string                   `json:"line_status" gorm:"column:line_status"`
	DenialCode        string                   `json:"denial_code,omitempty" gorm:"column:denial_code"`
	DenialDescription string                   `json:"denial_description,omitempty" gorm:"column:denial_description"`
	DiagnosisPointers datatypes.JSONSlice[int] `json:"diagnosis_pointers" gorm:"column:diagnosis_pointers"`
}

func (ClaimLine) TableName() string {
	return "claim_lines"
}

type ClaimStatus struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	ClaimKey string `json:"claim_key" gorm:"column:claim_key;index"`
	Sequence int    `json:"sequence" gorm:"column:sequence"`

	StatusCode        string    `json:"status_code" gorm:"column:status_code"`
	StatusDescription string    `json:"status_description" gorm:"column:status_description"`
	StatusDate        time.Time `json:"status_date" gorm:"column:status_date"`

	ClearinghouseStatus string `json:"clearinghouse_status" gorm:"column:clearinghouse_status"`
	PayerStatus         string `json:"payer_status,omitempty" gorm:"column:payer_status"`

	ResponseReceived bool       `json:"response_received" gorm:"column:response_received"`
	ResponseType     string     `json:"response_type,omitempty" gorm:"column:response_type"` // 277 or 835
	ResponseDate     *time.Time `json:"response_date,omitempty" gorm:"column:response_date"`

	FollowUpRequired bool       `json:"follow_up_required" gorm:"column:follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty" gorm:"column:follow_up_date"`

	AssignedTo string `json:"assigned_to,omitempty" gorm:"column:assigned_to"`
	Priority   string `json:"priority" gorm:"column:priority"`
}

func (ClaimStatus) TableName() string {
	return "claim_status_history"
}

type Remittance struct {
	AdviceNumber string `json:"advice_number" gorm:"primaryKey;column:advice_number"`
	ClaimKey     string `json:"claim_key" gorm:"column:claim_key;index"`

	CheckEFTNumber string    `json:"check_eft_number" gorm:"column:check_eft_number"`
	PaymentAmount  float64   `json:"payment_amount" gorm:"column:payment_amount"`
	PaymentDate    time.Time `json:"payment_date" gorm:"column:payment_date"`

	AdjustmentReasonCode string  `json:"adjustment_reason_code" gorm:"column:adjustment_reason_code"`
	AdjustmentAmount     float64 `json:"adjustment_amount" gorm:"column:adjustment_amount"`

	ContractualAmount float64 `json:"contractual_amount" gorm:"column:contractual_amount"`
	DeductibleAmount  float64 `json:"deductible_amount" gorm:"column:deductible_amount"`
	CoinsuranceAmount float64 `json:"coinsurance_amount" gorm:"column:coinsurance_amount"`
	CopayAmount       float64 `json:"copay_amount" gorm:"column:copay_amount"`

	PatientResponsibility float64 `json:"patient_responsibility" gorm:"column:patient_responsibility"`
}

func (Remittance) TableName() string {
	return "remittances"
}

type PriorAuth struct {
	AuthNumber     string `json:"auth_number" gorm:"primaryKey;column:auth_number"`
	OrganizationID string `json:"organization_id" gorm:"column:organization_id;index"`

	PatientID     string `json:"patient_id" gorm:"column:patient_id"`
	ProcedureCode string `json:"procedure_code" gorm:"column:procedure_code"`
	PayerName     string `json:"payer_name" gorm:"column:payer_name"`

	AuthStatus  string    `json:"auth_status" gorm:"column:auth_status"`
	RequestDate time.Time `json:"request_date" gorm:"column:request_date"`

	UnitsRequested int `json:"units_requested" gorm:"column:units_requested"`
	UnitsApproved  int `json:"units_approved,omitempty" gorm:"column:units_approved"`

	ApprovalDate   *time.Time `json:"approval_date,omitempty" gorm:"column:approval_date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty" gorm:"column:expiration_date"`

	DenialReason   string     `json:"denial_reason,omitempty" gorm:"column:denial_reason"`
	AppealDeadline *time.Time `json:"appeal_deadline,omitempty" gorm:"column:appeal_deadline"`
}

func (PriorAuth) TableName() string {
	return "prior_auths"
}

type Eligibility struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	OrganizationID string `json:"organization_id" gorm:"column:organization_id;index"`
	PatientID      string `json:"patient_id" gorm:"column:patient_id"`

	VerificationMethod string    `json:"verification_method" gorm:"column:verification_method"`
	VerificationDate   time.Time `json:"verification_date" gorm:"column:verification_date"`
	VerificationStatus string    `json:"verification_status" gorm:"column:verification_status"`

	PayerName       string     `json:"payer_name" gorm:"column:payer_name"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty" gorm:"column:effective_date"`
	TerminationDate *time.Time `json:"termination_date,omitempty" gorm:"column:termination_date"`

	CopayAmount       float64 `json:"copay_amount" gorm:"column:copay_amount"`
	DeductibleTotal   float64 `json:"deductible_total" gorm:"column:deductible_total"`
	DeductibleMet     float64 `json:"deductible_met" gorm:"column:deductible_met"`
	OutOfPocketMax    float64 `json:"out_of_pocket_max" gorm:"column:out_of_pocket_max"`
	OutOfPocketMet    float64 `json:"out_of_pocket_met" gorm:"column:out_of_pocket_met"`
	NetworkStatus     string  `json:"network_status" gorm:"column:network_status"`
	PriorAuthRequired bool    `json:"prior_auth_required" gorm:"column:prior_auth_required"`
	ReferralRequired  bool    `json:"referral_required" gorm:"column:referral_required"`
}

func (Eligibility) TableName() string {
	return "eligibility_verifications"
}

// Bundle is the complete cross-referenced dataset for one organization.
type Bundle struct {
	OrganizationID string        `json:"organization_id"`
	Seed           int64         `json:"seed"`
	Headers        []ClaimHeader `json:"claim_headers"`
	Lines          []ClaimLine   `json:"claim_lines"`
	StatusHistory  []ClaimStatus `json:"claim_status"`
	Remittances    []Remittance  `json:"remittance"`
	PriorAuths     []PriorAuth   `json:"prior_auth"`
	Eligibility    []Eligibility `json:"eligibility"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
