package luck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

// JobRecordHistory is the queue job name for history writes.
const JobRecordHistory = "luck.record_history"

func (s *service) History(ctx context.Context, uid string, days int) (History, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return History{}, apperrors.Wrap(apperrors.CodeInvalidInput, "uid cannot be empty", nil)
	}
	if days <= 0 {
		days = s.cfg.HistoryDays
	}
	if days > s.cfg.MaxHistoryDays {
		return History{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("days cannot exceed %d", s.cfg.MaxHistoryDays), nil)
	}
	today := truncateDay(s.now())
	out := History{UID: uid, Days: days, Entries: []HistoryEntry{}}
	if s.history == nil {
		return out, nil
	}

	entries, err := s.history.Recent(ctx, uid, today.AddDate(0, 0, -days))
	if err != nil {
		return History{}, apperrors.Wrap(apperrors.CodeHistoryError, "failed to load luck history", err)
	}
	out.PersonalTrend = PersonalTrend(entries, today)
	out.Entries = slices.Clone(entries)
	slices.Reverse(out.Entries)
	return out, nil
}

// recordHistory stores the day's score through the queue when one is
// configured, inline otherwise. Failures are logged only.
func (s *service) recordHistory(ctx context.Context, entry HistoryEntry) {
	if entry.UID == "" {
		return
	}
	if s.jobs != nil {
		if err := s.jobs.Enqueue(ctx, JobRecordHistory, entry); err != nil {
			s.logger.Warn("history enqueue failed", "uid", entry.UID, "date", entry.Date, "error", err)
		}
		return
	}
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("history write failed", "uid", entry.UID, "date", entry.Date, "error", err)
	}
}

// HistoryJobHandler returns the queue handler that persists history entries.
func HistoryJobHandler(repo HistoryRepository, logger *slog.Logger) func(ctx context.Context, name string, payload []byte) {
	logger = logger.With("component", "luck.history_worker")
	return func(ctx context.Context, name string, payload []byte) {
		if name != JobRecordHistory {
			logger.Warn("unknown job", "name", name)
			return
		}
		var entry HistoryEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			logger.Warn("history job payload invalid", "error", err)
			return
		}
		if err := repo.Record(ctx, entry); err != nil {
			logger.Warn("history job failed", "uid", entry.UID, "date", entry.Date, "error", err)
		}
	}
}
