package catalog

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Procedure struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

type Diagnosis struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

// DenialReason carries a CARC code and its payer-facing description.
type DenialReason struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

type RevenueCode struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

type Catalog struct {
	Procedures        []Procedure    `yaml:"procedures" json:"procedures"`
	Diagnoses         []Diagnosis    `yaml:"diagnoses" json:"diagnoses"`
	DenialReasons     []DenialReason `yaml:"denial_reasons" json:"denial_reasons"`
	AuthDenialReasons []string       `yaml:"auth_denial_reasons" json:"auth_denial_reasons"`
	RevenueCodes      []RevenueCode  `yaml:"revenue_codes" json:"revenue_codes"`
	Clearinghouses    []string       `yaml:"clearinghouses" json:"clearinghouses"`
	Payers            []string       `yaml:"payers" json:"payers"`
	Departments       []string       `yaml:"departments" json:"departments"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func (c Catalog) Validate() error {
	if len(c.Procedures) == 0 {
		return fmt.Errorf("catalog has no procedure codes")
	}
	if len(c.Diagnoses) == 0 {
		return fmt.Errorf("catalog has no diagnosis codes")
	}
	if len(c.DenialReasons) == 0 {
		return fmt.Errorf("catalog has no denial reasons")
	}
	if len(c.RevenueCodes) == 0 {
		return fmt.Errorf("catalog has no revenue codes")
	}
	if len(c.Clearinghouses) == 0 {
		return fmt.Errorf("catalog has no clearinghouses")
	}
	if len(c.Payers) == 0 {
		return fmt.Errorf("catalog has no payers")
	}
	return nil
}

func DefaultCatalog() Catalog {
	return Catalog{
		Procedures: []Procedure{
			{Code: "99213", Description: "Office visit, established patient, low complexity"},
			{Code: "99214", Description: "Office visit, established patient, moderate complexity"},
			{Code: "99285", Description: "Emergency department visit, high severity"},
			{Code: "99232", Description: "Subsequent hospital care, per day"},
			{Code: "71046", Description: "Chest X-ray, 2 views"},
			{Code: "80053", Description: "Comprehensive metabolic panel"},
			{Code: "85025", Description: "Complete blood count with differential"},
			{Code: "93000", Description: "Electrocardiogram, complete"},
			{Code: "36415", Description: "Collection of venous blood by venipuncture"},
			{Code: "97110", Description: "Therapeutic exercises, each 15 minutes"},
			{Code: "29881", Description: "Knee arthroscopy with meniscectomy"},
			{Code: "45380", Description: "Colonoscopy with biopsy"},
		},
		Diagnoses: []Diagnosis{
			{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications"},
			{Code: "I10", Description: "Essential (primary) hypertension"},
			{Code: "J06.9", Description: "Acute upper respiratory infection, unspecified"},
			{Code: "M54.50", Description: "Low back pain, unspecified"},
			{Code: "R07.9", Description: "Chest pain, unspecified"},
			{Code: "N39.0", Description: "Urinary tract infection, site not specified"},
			{Code: "K21.9", Description: "Gastro-esophageal reflux disease without esophagitis"},
			{Code: "F41.9", Description: "Anxiety disorder, unspecified"},
		},
		DenialReasons: []DenialReason{
			{Code: "CO-45", Description: "Charge exceeds fee schedule/maximum allowable"},
			{Code: "CO-97", Description: "Benefit included in payment for another service"},
			{Code: "PR-1", Description: "Deductible amount"},
			{Code: "PR-2", Description: "Coinsurance amount"},
			{Code: "CO-16", Description: "Claim lacks information needed for adjudication"},
			{Code: "CO-29", Description: "Timely filing limit expired"},
			{Code: "CO-50", Description: "Service not deemed medically necessary"},
			{Code: "CO-197", Description: "Precertification/authorization absent"},
		},
		AuthDenialReasons: []string{
			"Medical necessity not established",
			"Requested service excluded from plan benefits",
			"Insufficient clinical documentation",
			"Lower level of care available",
		},
		RevenueCodes: []RevenueCode{
			{Code: "0250", Description: "Pharmacy, general"},
			{Code: "0300", Description: "Laboratory, general"},
			{Code: "0320", Description: "Radiology, diagnostic"},
			{Code: "0450", Description: "Emergency room, general"},
			{Code: "0360", Description: "Operating room services"},
			{Code: "0120", Description: "Room and board, semi-private"},
		},
		Clearinghouses: []string{
			"Availity",
			"Change Healthcare",
			"Waystar",
			"Trizetto",
		},
		Payers: []string{
			"Medicare",
			"Medicaid",
			"Blue Cross Blue Shield",
			"UnitedHealthcare",
			"Aetna",
			"Cigna",
		},
		Departments: []string{
			"Emergency",
			"Cardiology",
			"Orthopedics",
			"Internal Medicine",
			"Radiology",
			"Surgery",
		},
	}
}
