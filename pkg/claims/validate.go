package claims

// Validate checks every cross-entity invariant of a bundle. Generation
// constructs records so these hold by design; validation still runs on
// every assembly so a bug, or imported data, can never hand consumers an
// inconsistent dataset.
func Validate(b *Bundle) error {
	if b == nil {
		return newValidationError("bundle is nil")
	}

	headersByKey := make(map[string]*ClaimHeader, len(b.Headers))
	for i := range b.Headers {
		h := &b.Headers[i]
		if _, dup := headersByKey[h.ClaimKey]; dup {
			return invariantViolation(h.ClaimKey, "duplicate claim key")
		}
		headersByKey[h.ClaimKey] = h
		if err := validateHeader(h); err != nil {
			return err
		}
	}

	authNumbers := make(map[string]struct{}, len(b.PriorAuths))
	for i := range b.PriorAuths {
		a := &b.PriorAuths[i]
		if err := validatePriorAuth(a); err != nil {
			return err
		}
		authNumbers[a.AuthNumber] = struct{}{}
	}

	for _, h := range b.Headers {
		if h.PriorAuthNumber == "" {
			continue
		}
		if _, ok := authNumbers[h.PriorAuthNumber]; !ok {
			return invariantViolation(h.ClaimKey, "references prior auth %q not in bundle", h.PriorAuthNumber)
		}
	}

	if err := validateLines(b.Lines, headersByKey); err != nil {
		return err
	}
	if err := validateStatusHistory(b.StatusHistory, headersByKey); err != nil {
		return err
	}
	if err := validateRemittances(b.Remittances, headersByKey); err != nil {
		return err
	}
	for i := range b.Eligibility {
		if err := validateEligibility(&b.Eligibility[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateHeader(h *ClaimHeader) error {
	if h.TotalChargeAmount <= 0 {
		return invariantViolation(h.ClaimKey, "total charge %.2f: %v", h.TotalChargeAmount, ErrInvalidCharge)
	}
	settled := round2(h.TotalPaidAmount + h.TotalAdjustmentAmount)
	if settled > h.TotalChargeAmount+centTolerance {
		return invariantViolation(h.ClaimKey, "paid %.2f + adjustment %.2f exceeds charge %.2f",
			h.TotalPaidAmount, h.TotalAdjustmentAmount, h.TotalChargeAmount)
	}
	if h.CurrentStatus == StatusPaid && !approxEqual(settled, h.TotalChargeAmount) {
		return invariantViolation(h.ClaimKey, "paid claim settles %.2f of charge %.2f", settled, h.TotalChargeAmount)
	}
	if h.ServiceDateTo.Before(h.ServiceDateFrom) {
		return invariantViolation(h.ClaimKey, "service period ends before it starts")
	}
	if len(h.DiagnosisCodes) == 0 {
		return invariantViolation(h.ClaimKey, "claim carries no diagnosis codes")
	}
	return nil
}

func validateLines(lines []ClaimLine, headers map[string]*ClaimHeader) error {
	chargeSums := make(map[string]float64)
	paidSums := make(map[string]float64)
	for i := range lines {
		l := &lines[i]
		h, ok := headers[l.ClaimKey]
		if !ok {
			return invariantViolation(l.ClaimKey, "line %d references missing header", l.LineNumber)
		}
		if l.LineStatus == LineDenied && h.CurrentStatus != StatusDenied {
			return invariantViolation(l.ClaimKey, "line %d denied on a %s claim", l.LineNumber, h.CurrentStatus)
		}
		if l.LineStatus == LineDenied && l.DenialCode == "" {
			return invariantViolation(l.ClaimKey, "line %d denied without a reason code", l.LineNumber)
		}
		for _, p := range l.DiagnosisPointers {
			if p < 1 || p > len(h.DiagnosisCodes) {
				return invariantViolation(l.ClaimKey, "line %d diagnosis pointer %d outside 1..%d",
					l.LineNumber, p, len(h.DiagnosisCodes))
			}
		}
		chargeSums[l.ClaimKey] = round2(chargeSums[l.ClaimKey] + l.ChargeAmount)
		paidSums[l.ClaimKey] = round2(paidSums[l.ClaimKey] + l.PaidAmount)
	}

	for key, h := range headers {
		if !approxEqual(chargeSums[key], h.TotalChargeAmount) {
			return invariantViolation(key, "line charges sum to %.2f, header total is %.2f",
				chargeSums[key], h.TotalChargeAmount)
		}
		if !approxEqual(paidSums[key], h.TotalPaidAmount) {
			return invariantViolation(key, "line payments sum to %.2f, header total is %.2f",
				paidSums[key], h.TotalPaidAmount)
		}
	}
	return nil
}

func validateStatusHistory(history []ClaimStatus, headers map[string]*ClaimHeader) error {
	byClaim := make(map[string][]ClaimStatus)
	for _, rec := range history {
		if _, ok := headers[rec.ClaimKey]; !ok {
			return invariantViolation(rec.ClaimKey, "status record references missing header")
		}
		byClaim[rec.ClaimKey] = append(byClaim[rec.ClaimKey], rec)
	}

	for key, h := range headers {
		records := byClaim[key]
		if len(records) == 0 {
			return invariantViolation(key, "header has no status history")
		}
		for i := 1; i < len(records); i++ {
			if !records[i].StatusDate.After(records[i-1].StatusDate) {
				return invariantViolation(key, "status %q at %s does not advance past %q at %s",
					records[i].StatusCode, records[i].StatusDate.Format("2006-01-02"),
					records[i-1].StatusCode, records[i-1].StatusDate.Format("2006-01-02"))
			}
		}
		last := records[len(records)-1]
		if last.StatusCode != h.CurrentStatus {
			return invariantViolation(key, "history ends at %q, header says %q", last.StatusCode, h.CurrentStatus)
		}
	}
	return nil
}

func validateRemittances(remits []Remittance, headers map[string]*ClaimHeader) error {
	seen := make(map[string]struct{}, len(remits))
	for i := range remits {
		r := &remits[i]
		h, ok := headers[r.ClaimKey]
		if !ok {
			return invariantViolation(r.ClaimKey, "remittance references missing header")
		}
		if _, dup := seen[r.ClaimKey]; dup {
			return invariantViolation(r.ClaimKey, "multiple remittances for one claim")
		}
		seen[r.ClaimKey] = struct{}{}

		buckets := round2(r.ContractualAmount + r.DeductibleAmount + r.CoinsuranceAmount + r.CopayAmount)
		if !approxEqual(buckets, r.AdjustmentAmount) {
			return invariantViolation(r.ClaimKey, "adjustment buckets sum to %.2f, adjustment is %.2f",
				buckets, r.AdjustmentAmount)
		}
		residual := round2(h.TotalChargeAmount - r.PaymentAmount - r.AdjustmentAmount)
		if !approxEqual(residual, r.PatientResponsibility) {
			return invariantViolation(r.ClaimKey, "patient responsibility %.2f, residual is %.2f",
				r.PatientResponsibility, residual)
		}
		if r.PatientResponsibility < -centTolerance {
			return invariantViolation(r.ClaimKey, "%v: %.2f", ErrNegativeResidual, r.PatientResponsibility)
		}
	}

	for key, h := range headers {
		if h.TotalPaidAmount > 0 {
			if _, ok := seen[key]; !ok {
				return invariantViolation(key, "paid claim has no remittance")
			}
		}
	}
	return nil
}

func validatePriorAuth(a *PriorAuth) error {
	switch a.AuthStatus {
	case AuthApproved:
		if a.ApprovalDate == nil || a.ExpirationDate == nil {
			return invariantViolation(a.AuthNumber, "approved auth missing validity window")
		}
		if a.DenialReason != "" || a.AppealDeadline != nil {
			return invariantViolation(a.AuthNumber, "approved auth carries denial fields")
		}
		if a.UnitsApproved <= 0 || a.UnitsApproved > a.UnitsRequested {
			return invariantViolation(a.AuthNumber, "approved units %d outside 1..%d", a.UnitsApproved, a.UnitsRequested)
		}
	case AuthDenied:
		if a.DenialReason == "" || a.AppealDeadline == nil {
			return invariantViolation(a.AuthNumber, "denied auth missing denial reason or appeal deadline")
		}
		if a.ApprovalDate != nil || a.ExpirationDate != nil {
			return invariantViolation(a.AuthNumber, "denied auth carries a validity window")
		}
	case AuthPending:
		if a.ApprovalDate != nil || a.ExpirationDate != nil || a.AppealDeadline != nil {
			return invariantViolation(a.AuthNumber, "pending auth carries outcome dates")
		}
	default:
		return invariantViolation(a.AuthNumber, "unknown auth status %q", a.AuthStatus)
	}
	if a.UnitsRequested <= 0 {
		return invariantViolation(a.AuthNumber, "units requested must be positive")
	}
	return nil
}

func validateEligibility(e *Eligibility) error {
	hasEffective := e.EffectiveDate != nil
	hasTermination := e.TerminationDate != nil
	if hasEffective == hasTermination {
		return invariantViolation(e.PatientID, "exactly one of effective/termination date must be set")
	}
	if e.VerificationStatus == CoverageActive && !hasEffective {
		return invariantViolation(e.PatientID, "active coverage without effective date")
	}
	if e.VerificationStatus != CoverageActive && !hasTermination {
		return invariantViolation(e.PatientID, "%s coverage without termination date", e.VerificationStatus)
	}
	return nil
}
