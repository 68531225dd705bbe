// Package lottery generates deterministic Powerball sets and maintains hot
// and cold number statistics from recent drawings.
package lottery

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

// DrawSource fetches recent drawings, newest first.
type DrawSource interface {
	RecentDraws(ctx context.Context, limit int) ([]Drawing, error)
}

// StatsStore persists the latest snapshot across restarts.
type StatsStore interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

const (
	defaultDrawLimit      = 100
	defaultFetchTimeout   = 10 * time.Second
	defaultFailureBackoff = 5 * time.Minute
)

// errRefreshBackoff marks a refresh skipped because the last one failed recently.
var errRefreshBackoff = errors.New("drawings refresh backing off after failure")

// Config controls how many drawings are analysed and how the upstream fetch
// is bounded. After a failed fetch no new fetch starts for FailureBackoff.
type Config struct {
	DrawLimit      int
	FetchTimeout   time.Duration
	FailureBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.DrawLimit <= 0 {
		c.DrawLimit = defaultDrawLimit
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.FailureBackoff <= 0 {
		c.FailureBackoff = defaultFailureBackoff
	}
	return c
}

// StatsService serves hot/cold statistics and recent drawings. Data is
// refreshed at most once per drawing.
type StatsService interface {
	Stats(ctx context.Context, forceRefresh bool) Stats
	Drawings(ctx context.Context, limit int, forceRefresh bool) (DrawingsResult, error)
}

type statsService struct {
	cfg    Config
	source DrawSource
	store  StatsStore
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	snap        Snapshot
	loaded      bool
	lastFailure time.Time
	lastErr     error
	group       singleflight.Group
}

// NewStatsService constructs the statistics service.
func NewStatsService(cfg Config, source DrawSource, store StatsStore, logger *slog.Logger) StatsService {
	return &statsService{
		cfg:    cfg.withDefaults(),
		source: source,
		store:  store,
		logger: logger.With("component", "lottery.stats"),
		now:    time.Now,
	}
}

func (s *statsService) Stats(ctx context.Context, forceRefresh bool) Stats {
	snap, cached, err := s.snapshot(ctx, forceRefresh)
	if err != nil {
		if !errors.Is(err, errRefreshBackoff) {
			s.logger.Warn("lottery statistics refresh failed", "error", err)
		}
		s.mu.RLock()
		snap = s.snap
		s.mu.RUnlock()
		cached = true
	}
	if len(snap.Stats.HotNumbers) == 0 {
		stats := FallbackStats()
		stats.LastUpdated = s.now()
		stats.NextRefresh = NextDrawing(s.now())
		return stats
	}
	stats := snap.Stats
	stats.LastUpdated = snap.UpdatedAt
	stats.NextRefresh = NextDrawing(s.now())
	stats.Cached = cached
	return stats
}

func (s *statsService) Drawings(ctx context.Context, limit int, forceRefresh bool) (DrawingsResult, error) {
	if limit <= 0 {
		limit = 20
	}
	snap, cached, err := s.snapshot(ctx, forceRefresh)
	stale := false
	if err != nil {
		s.mu.RLock()
		snap = s.snap
		s.mu.RUnlock()
		if len(snap.Drawings) == 0 {
			return DrawingsResult{}, apperrors.Wrap(apperrors.CodeLotteryData, "failed to fetch drawings", err)
		}
		s.logger.Warn("serving stale drawings", "error", err)
		cached, stale = true, true
	}
	drawings := snap.Drawings
	if len(drawings) > limit {
		drawings = drawings[:limit]
	}
	return DrawingsResult{
		Drawings:    slices.Clone(drawings),
		LastUpdated: snap.UpdatedAt,
		NextRefresh: NextDrawing(s.now()),
		Cached:      cached,
		Stale:       stale,
	}, nil
}

// snapshot returns the current snapshot, refreshing it when a drawing has
// happened since the last update. The bool reports a cache hit. Within the
// failure backoff window it returns the last fetch error without calling the
// source, forced refreshes included.
func (s *statsService) snapshot(ctx context.Context, forceRefresh bool) (Snapshot, bool, error) {
	s.loadOnce(ctx)
	now := s.now()
	s.mu.RLock()
	snap := s.snap
	failedAt, lastErr := s.lastFailure, s.lastErr
	s.mu.RUnlock()
	if !forceRefresh && FreshSince(snap.UpdatedAt, now) {
		return snap, true, nil
	}
	if !failedAt.IsZero() && now.Sub(failedAt) < s.cfg.FailureBackoff {
		return Snapshot{}, false, apperrors.Wrap(apperrors.CodeLotteryData, "drawings source unavailable", errors.Join(errRefreshBackoff, lastErr))
	}

	// The fetch outlives any single caller so one cancelled request cannot
	// fail everyone waiting on the same flight.
	result := s.group.DoChan("refresh", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()
		return s.refresh(fetchCtx)
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, false, apperrors.Wrap(apperrors.CodeLotteryData, "waiting for drawings refresh", ctx.Err())
	case res := <-result:
		if res.Err != nil {
			return Snapshot{}, false, res.Err
		}
		return res.Val.(Snapshot), false, nil
	}
}

func (s *statsService) refresh(ctx context.Context) (Snapshot, error) {
	snap, err := s.fetch(ctx)
	s.mu.Lock()
	if err != nil {
		s.lastFailure, s.lastErr = s.now(), err
	} else {
		s.snap = snap
		s.lastFailure, s.lastErr = time.Time{}, nil
	}
	s.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			s.logger.Warn("persist lottery snapshot failed", "error", err)
		}
	}
	s.logger.Info("lottery statistics refreshed", "draws", len(snap.Drawings), "hot", snap.Stats.HotNumbers[:min(5, len(snap.Stats.HotNumbers))])
	return snap, nil
}

func (s *statsService) fetch(ctx context.Context) (Snapshot, error) {
	if s.source == nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeLotteryData, "no drawing source configured", nil)
	}
	draws, err := s.source.RecentDraws(ctx, s.cfg.DrawLimit)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeLotteryData, "fetch recent drawings", err)
	}
	if len(draws) == 0 {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeLotteryData, "no drawings returned", nil)
	}
	return Snapshot{
		Stats:     ComputeStats(draws),
		Drawings:  draws,
		UpdatedAt: s.now(),
	}, nil
}

func (s *statsService) loadOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true
	if s.store == nil {
		return
	}
	snap, ok, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("load lottery snapshot failed", "error", err)
		return
	}
	if ok {
		s.snap = snap
		s.logger.Info("lottery statistics loaded from store", "updated_at", snap.UpdatedAt)
	}
}
