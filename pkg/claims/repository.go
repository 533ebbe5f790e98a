package claims

import (
	"context"
	"errors"
	"time"

	"github.com/revara-health/platform/pkg/common/models"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&ClaimHeader{},
		&ClaimLine{},
		&ClaimStatus{},
		&Remittance{},
		&PriorAuth{},
		&Eligibility{},
	)
}

// SaveBundle replaces the organization's dataset in one transaction.
// Regeneration for the same organization is idempotent: old records are
// swept before the new bundle lands, so a replayed import never leaves
// duplicates or a partial mix of two generations.
func (r *Repository) SaveBundle(ctx context.Context, b *Bundle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var keys []string
		if err := tx.Model(&ClaimHeader{}).
			Where("organization_id = ?", b.OrganizationID).
			Pluck("claim_key", &keys).Error; err != nil {
			return err
		}
		if len(keys) > 0 {
			for _, model := range []interface{}{&ClaimLine{}, &ClaimStatus{}, &Remittance{}} {
				if err := tx.Where("claim_key IN ?", keys).Delete(model).Error; err != nil {
					return err
				}
			}
		}
		for _, model := range []interface{}{&ClaimHeader{}, &PriorAuth{}, &Eligibility{}} {
			if err := tx.Where("organization_id = ?", b.OrganizationID).Delete(model).Error; err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for i := range b.Headers {
			b.Headers[i].CreatedAt = now
			b.Headers[i].UpdatedAt = now
			b.Headers[i].Version = 1
		}

		if err := tx.CreateInBatches(b.Headers, 200).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(b.Lines, 200).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(b.StatusHistory, 200).Error; err != nil {
			return err
		}
		if len(b.Remittances) > 0 {
			if err := tx.CreateInBatches(b.Remittances, 200).Error; err != nil {
				return err
			}
		}
		if err := tx.CreateInBatches(b.PriorAuths, 200).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(b.Eligibility, 200).Error
	})
}

func (r *Repository) GetBundle(ctx context.Context, orgID string) (*Bundle, error) {
	bundle := &Bundle{OrganizationID: orgID}
	db := r.db.WithContext(ctx)

	if err := db.Where("organization_id = ?", orgID).
		Order("claim_key").Find(&bundle.Headers).Error; err != nil {
		return nil, err
	}
	if len(bundle.Headers) == 0 {
		return nil, ErrBundleNotFound
	}

	keys := make([]string, 0, len(bundle.Headers))
	for _, h := range bundle.Headers {
		keys = append(keys, h.ClaimKey)
	}

	if err := db.Where("claim_key IN ?", keys).
		Order("claim_key, line_number").Find(&bundle.Lines).Error; err != nil {
		return nil, err
	}
	if err := db.Where("claim_key IN ?", keys).
		Order("claim_key, sequence").Find(&bundle.StatusHistory).Error; err != nil {
		return nil, err
	}
	if err := db.Where("claim_key IN ?", keys).Find(&bundle.Remittances).Error; err != nil {
		return nil, err
	}
	if err := db.Where("organization_id = ?", orgID).Find(&bundle.PriorAuths).Error; err != nil {
		return nil, err
	}
	if err := db.Where("organization_id = ?", orgID).Find(&bundle.Eligibility).Error; err != nil {
		return nil, err
	}
	return bundle, nil
}

// HeaderFilter narrows dashboard reads; zero values mean "no filter".
type HeaderFilter struct {
	Status     string
	PayerName  string
	Department string
	From       time.Time
	To         time.Time
	Limit      int
}

func (r *Repository) ListHeaders(ctx context.Context, orgID string, filter HeaderFilter) ([]ClaimHeader, error) {
	q := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.Status != "" {
		q = q.Where("current_status = ?", filter.Status)
	}
	if filter.PayerName != "" {
		q = q.Where("payer_name = ?", filter.PayerName)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if !filter.From.IsZero() {
		q = q.Where("service_date_from >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("service_date_from <= ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var headers []ClaimHeader
	if err := q.Order("service_date_from DESC").Find(&headers).Error; err != nil {
		return nil, err
	}
	return headers, nil
}

func (r *Repository) GetHeader(ctx context.Context, claimKey string) (*ClaimHeader, error) {
	var h ClaimHeader
	result := r.db.WithContext(ctx).First(&h, "claim_key = ?", claimKey)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrHeaderNotFound
	}
	return &h, result.Error
}

// TransitionStatus applies a live status change with an optimistic
// version check and appends the history row in the same transaction.
func (r *Repository) TransitionStatus(ctx context.Context, h *ClaimHeader, newStatus string, record *ClaimStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ClaimHeader{}).
			Where("claim_key = ? AND version = ?", h.ClaimKey, h.Version).
			Updates(map[string]interface{}{
				"current_status": newStatus,
				"status_date":    record.StatusDate,
				"version":        h.Version + 1,
				"updated_at":     time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return tx.Create(record).Error
	})
}

// NextStatusPoint returns the next history sequence for a claim along
// with the date of its latest status row (zero when none exists).
func (r *Repository) NextStatusPoint(ctx context.Context, claimKey string) (int, time.Time, error) {
	var cursor struct {
		MaxSeq   int
		LastDate *time.Time
	}
	err := r.db.WithContext(ctx).Model(&ClaimStatus{}).
		Where("claim_key = ?", claimKey).
		Select("COALESCE(MAX(sequence), 0) AS max_seq, MAX(status_date) AS last_date").
		Scan(&cursor).Error
	if err != nil {
		return 0, time.Time{}, err
	}
	last := time.Time{}
	if cursor.LastDate != nil {
		last = *cursor.LastDate
	}
	return cursor.MaxSeq + 1, last, nil
}

func (r *Repository) Summary(ctx context.Context, orgID string) (*models.BundleSummary, error) {
	db := r.db.WithContext(ctx)
	summary := &models.BundleSummary{
		OrganizationID: orgID,
		ClaimsByStatus: make(map[string]int64),
		ComputedAt:     time.Now().UTC(),
	}

	type statusCount struct {
		CurrentStatus string
		Count         int64
	}
	var counts []statusCount
	if err := db.Model(&ClaimHeader{}).
		Select("current_status, COUNT(*) AS count").
		Where("organization_id = ?", orgID).
		Group("current_status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		summary.ClaimsByStatus[c.CurrentStatus] = c.Count
		summary.ClaimCount += c.Count
	}
	if summary.ClaimCount == 0 {
		return nil, ErrBundleNotFound
	}

	type totals struct {
		Charged  float64
		Paid     float64
		Adjusted float64
	}
	var t totals
	if err := db.Model(&ClaimHeader{}).
		Select("COALESCE(SUM(total_charge_amount),0) AS charged, COALESCE(SUM(total_paid_amount),0) AS paid, COALESCE(SUM(total_adjustment_amount),0) AS adjusted").
		Where("organization_id = ?", orgID).Scan(&t).Error; err != nil {
		return nil, err
	}
	summary.TotalCharged = t.Charged
	summary.TotalPaid = t.Paid
	summary.TotalAdjusted = t.Adjusted

	orgClaims := r.db.WithContext(ctx).Model(&ClaimHeader{}).
		Select("claim_key").Where("organization_id = ?", orgID)
	if err := db.Model(&Remittance{}).
		Where("claim_key IN (?)", orgClaims).
		Count(&summary.RemittanceCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&PriorAuth{}).
		Where("organization_id = ?", orgID).Count(&summary.PriorAuthCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Eligibility{}).
		Where("organization_id = ?", orgID).Count(&summary.EligibilityCount).Error; err != nil {
		return nil, err
	}
	return summary, nil
}
