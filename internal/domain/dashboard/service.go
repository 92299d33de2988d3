package dashboard

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/pkg/logger"
)

// maxRangeDays bounds ListSnapshots.
const maxRangeDays = 366

// Service serves daily snapshots.
type Service struct {
	repo  Repository
	cache Cache
	clock calendar.Clock
}

// NewService creates a dashboard service. A nil cache disables caching.
func NewService(repo Repository, cache Cache, clock calendar.Clock) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if clock == nil {
		clock = calendar.NewSystemClock(time.UTC)
	}
	return &Service{repo: repo, cache: cache, clock: clock}
}

// RecomputeDailySnapshot recomputes and upserts the snapshot for date.
func (s *Service) RecomputeDailySnapshot(ctx context.Context, date time.Time) (*Stats, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, ownerID, date)
}

// RecomputeForOwner is the worker entry point; it does not read the owner from ctx.
func (s *Service) RecomputeForOwner(ctx context.Context, ownerID id.ID, date time.Time) (*Stats, error) {
	return s.recompute(appctx.WithOwner(ctx, ownerID), ownerID, date)
}

func (s *Service) recompute(ctx context.Context, ownerID id.ID, date time.Time) (*Stats, error) {
	start, end := calendar.DayRange(date, s.clock.Location())

	stats, err := s.repo.Compute(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("compute snapshot: %w", err)
	}
	stats.OwnerID = ownerID
	stats.Date = start
	stats.UpdatedAt = s.clock.Now()

	if err := s.repo.Upsert(ctx, stats); err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, stats); err != nil {
		logger.Warn(ctx, "dashboard cache write failed", "date", calendar.FormatDate(start), "error", err)
	}

	logger.Info(ctx, "daily snapshot recomputed",
		"date", calendar.FormatDate(start),
		"total_sales", stats.TotalSales,
		"sales_count", stats.SalesCount,
	)
	return stats, nil
}

// GetSnapshot serves the snapshot from cache, then the store, computing it on a miss.
func (s *Service) GetSnapshot(ctx context.Context, date time.Time) (*Stats, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	day := calendar.StartOfDay(date, s.clock.Location())

	if cached, ok, err := s.cache.Get(ctx, ownerID, day); err != nil {
		logger.Warn(ctx, "dashboard cache read failed", "date", calendar.FormatDate(day), "error", err)
	} else if ok {
		return cached, nil
	}

	stored, err := s.repo.Get(ctx, ownerID, day)
	switch {
	case err == nil:
		if err := s.cache.Set(ctx, stored); err != nil {
			logger.Warn(ctx, "dashboard cache write failed", "date", calendar.FormatDate(day), "error", err)
		}
		return stored, nil
	case apperror.IsNotFound(err):
		return s.recompute(ctx, ownerID, day)
	default:
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
}

// ListSnapshots returns stored snapshots for [from, to], oldest first.
func (s *Service) ListSnapshots(ctx context.Context, from, to time.Time) ([]*Stats, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	loc := s.clock.Location()
	from, to = calendar.StartOfDay(from, loc), calendar.StartOfDay(to, loc)
	if to.Before(from) {
		return nil, apperror.NewValidation("range end is before its start").WithField("to", calendar.FormatDate(to))
	}
	if calendar.DaysBetween(from, to, loc) > maxRangeDays {
		return nil, apperror.NewValidation("range is too long").WithField("to", calendar.FormatDate(to))
	}
	return s.repo.List(ctx, ownerID, from, to)
}

// Today is the current shop date.
func (s *Service) Today() time.Time {
	return calendar.Today(s.clock)
}

// Location is the shop time zone.
func (s *Service) Location() *time.Location {
	return s.clock.Location()
}
