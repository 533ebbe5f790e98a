package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/revara-health/platform/pkg/common/kafka"
	"github.com/revara-health/platform/pkg/common/logger"
	"github.com/revara-health/platform/pkg/common/models"
	"github.com/revara-health/platform/pkg/observability/metrics"
)

type Service struct {
	assembler  *Assembler
	repo       *Repository
	producer   *kafka.Producer
	cache      *redis.Client
	summaryTTL time.Duration
	maxCount   int
}

func NewService(assembler *Assembler, repo *Repository, producer *kafka.Producer, cache *redis.Client, summaryTTL time.Duration, maxCount int) *Service {
	return &Service{
		assembler:  assembler,
		repo:       repo,
		producer:   producer,
		cache:      cache,
		summaryTTL: summaryTTL,
		maxCount:   maxCount,
	}
}

// Generate assembles, validates and persists a bundle, then announces it
// on the lifecycle topic. Persistence replaces any prior dataset for the
// organization.
func (s *Service) Generate(ctx context.Context, req models.GenerateRequest) (*Bundle, error) {
	if s.maxCount > 0 && req.Count > s.maxCount {
		return nil, newValidationError("count %d exceeds limit %d", req.Count, s.maxCount)
	}

	bundle, err := s.assembler.Assemble(req.OrganizationID, req.Count, req.Seed)
	if err != nil {
		metrics.IncGenerationFailed()
		return nil, err
	}

	if err := s.repo.SaveBundle(ctx, bundle); err != nil {
		metrics.IncGenerationFailed()
		return nil, fmt.Errorf("persisting bundle: %w", err)
	}

	metrics.ObserveBundleGenerated(len(bundle.Headers),
		len(bundle.Lines)+len(bundle.StatusHistory)+len(bundle.Remittances)+len(bundle.PriorAuths)+len(bundle.Eligibility))
	s.invalidateSummary(ctx, req.OrganizationID)

	if s.producer != nil {
		payload := map[string]interface{}{
			"organization_id": bundle.OrganizationID,
			"claim_count":     len(bundle.Headers),
			"seed":            bundle.Seed,
			"generated_at":    bundle.GeneratedAt,
		}
		if err := s.producer.PublishEvent(ctx, "bundle-generated", "claims-service", payload); err != nil {
			logger.Log.WithError(err).Warn("failed to publish bundle-generated event")
		}
	}

	return bundle, nil
}

func (s *Service) GetBundle(ctx context.Context, orgID string) (*Bundle, error) {
	return s.repo.GetBundle(ctx, orgID)
}

func (s *Service) ListHeaders(ctx context.Context, orgID string, filter HeaderFilter) ([]ClaimHeader, error) {
	return s.repo.ListHeaders(ctx, orgID, filter)
}

// Summary serves the dashboard aggregate, cached per organization.
func (s *Service) Summary(ctx context.Context, orgID string) (*models.BundleSummary, error) {
	key := summaryCacheKey(orgID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var summary models.BundleSummary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.repo.Summary(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, data, s.summaryTTL).Err(); err != nil {
				logger.Log.WithError(err).Debug("failed to cache bundle summary")
			}
		}
	}
	return summary, nil
}

// ApplyStatusEvent drives a live lifecycle transition as a payer response
// arrives. The version check keeps concurrent updates from double-applying;
// a replayed event that no longer matches the claim's state is reported as
// an invalid transition, which callers may treat as already-applied.
func (s *Service) ApplyStatusEvent(ctx context.Context, claimKey string, event Event, actor string) (*ClaimHeader, error) {
	h, err := s.repo.GetHeader(ctx, claimKey)
	if err != nil {
		return nil, err
	}

	next, err := Transition(h.CurrentStatus, event)
	if err != nil {
		return nil, err
	}

	seq, lastDate, err := s.repo.NextStatusPoint(ctx, claimKey)
	if err != nil {
		return nil, err
	}

	// Simulated histories can reach up to the generation time; the stamp
	// must still land strictly after the latest row.
	now := nextStatusDate(time.Now().UTC(), lastDate)
	record := &ClaimStatus{
		ClaimKey:          claimKey,
		Sequence:          seq,
		StatusCode:        next,
		StatusDescription: statusDescriptions[next],
		StatusDate:        now,
		ResponseReceived:  true,
		AssignedTo:        actor,
		Priority:          "low",
	}
	if next == StatusDenied || next == StatusPending {
		record.FollowUpRequired = true
		fu := now.AddDate(0, 0, 3)
		record.FollowUpDate = &fu
		record.Priority = "high"
	}

	if err := s.repo.TransitionStatus(ctx, h, next, record); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			metrics.IncTransitionConflict()
		}
		return nil, err
	}
	metrics.IncStatusTransition()

	h.CurrentStatus = next
	h.StatusDate = now
	h.Version++

	s.invalidateSummary(ctx, h.OrganizationID)

	if s.producer != nil {
		payload := map[string]interface{}{
			"claim_key":       claimKey,
			"organization_id": h.OrganizationID,
			"status":          next,
			"event":           string(event),
		}
		if err := s.producer.PublishEvent(ctx, "status-changed", "claims-service", payload); err != nil {
			logger.Log.WithError(err).Warn("failed to publish status-changed event")
		}
	}

	return h, nil
}

// HandlePayerResponse adapts consumed payer-response events onto the FSM.
// Invalid transitions are logged and swallowed so a replayed or stale
// message does not wedge the consumer group.
func (s *Service) HandlePayerResponse(ctx context.Context, event models.Event) error {
	claimKey, _ := event.Data["claim_key"].(string)
	lifecycle, _ := event.Data["event"].(string)
	if claimKey == "" || lifecycle == "" {
		logger.Log.WithField("event_id", event.ID).Warn("payer response missing claim_key or event")
		return nil
	}

	_, err := s.ApplyStatusEvent(ctx, claimKey, Event(lifecycle), "payer-response")
	if err != nil {
		if IsInvariantError(err) || errors.Is(err, ErrHeaderNotFound) {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"claim_key": claimKey,
				"event":     lifecycle,
			}).Warn("dropping unappliable payer response")
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) invalidateSummary(ctx context.Context, orgID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey(orgID)).Err(); err != nil {
		logger.Log.WithError(err).Debug("failed to invalidate summary cache")
	}
}

func summaryCacheKey(orgID string) string {
	return fmt.Sprintf("claims:summary:%s", orgID)
}
