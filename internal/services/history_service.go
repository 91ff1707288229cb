package services

import (
	"context"
	"errors"
	"time"

	"github.com/pollyhq/pollycoach/internal/cache"
	"github.com/pollyhq/pollycoach/internal/models"
	mongorepo "github.com/pollyhq/pollycoach/internal/repositories/mongo"
	"github.com/pollyhq/pollycoach/internal/repositories/postgres"
	"github.com/pollyhq/pollycoach/internal/utils"
)

const statsCacheKey = "stats:global"
const statsCacheTTL = time.Minute

// HistoryService reads completed practice records and aggregate stats,
// caching the aggregate in Redis when a cache is configured.
type HistoryService interface {
	Recent(ctx context.Context, limit int) ([]models.PracticeRecord, error)
	Get(ctx context.Context, sessionID string) (*models.PracticeRecord, error)
	Timeline(ctx context.Context, sessionID string) ([]models.TimelineArchive, error)
	Stats(ctx context.Context) (models.UserStats, error)
}

type historyService struct {
	records   postgres.PracticeRepo
	timelines mongorepo.TimelineRepository
	cache     cache.Cache
}

func NewHistoryService(records postgres.PracticeRepo, timelines mongorepo.TimelineRepository, c cache.Cache) HistoryService {
	return &historyService{records: records, timelines: timelines, cache: c}
}

func (s *historyService) Recent(ctx context.Context, limit int) ([]models.PracticeRecord, error) {
	const op = "HistoryService.Recent"

	if s.records == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "history storage is not configured", nil)
	}
	out, err := s.records.Recent(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list practice records", err)
	}
	return out, nil
}

func (s *historyService) Get(ctx context.Context, sessionID string) (*models.PracticeRecord, error) {
	const op = "HistoryService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if s.records == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "history storage is not configured", nil)
	}

	out, err := s.records.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get practice record", err)
	}
	return out, nil
}

// Timeline returns the archived per-frame emotion timelines of a session,
// newest first. Archives expire under the Mongo TTL, so an empty result for
// an existing session is normal.
func (s *historyService) Timeline(ctx context.Context, sessionID string) ([]models.TimelineArchive, error) {
	const op = "HistoryService.Timeline"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if s.timelines == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "timeline storage is not configured", nil)
	}

	out, err := s.timelines.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list timelines", err)
	}
	return out, nil
}

func (s *historyService) Stats(ctx context.Context) (models.UserStats, error) {
	const op = "HistoryService.Stats"

	if s.records == nil {
		return models.UserStats{}, utils.E(utils.CodeUnavailable, op, "history storage is not configured", nil)
	}
	if s.cache != nil {
		var cached models.UserStats
		if hit, err := s.cache.GetJSON(ctx, statsCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := s.records.Stats(ctx)
	if err != nil {
		return models.UserStats{}, utils.E(utils.CodeInternal, op, "failed to aggregate stats", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, statsCacheKey, out, statsCacheTTL)
	}
	return out, nil
}
