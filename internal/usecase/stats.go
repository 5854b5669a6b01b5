package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/totegamma/daybook/internal/domain"
)

const defaultStatsTTL = 5 * time.Minute

// StatsUsecase serves streak and heatmap reads through a per-user generation keyed cache.
// Bumping the generation on every write makes earlier cache entries unreachable.
type StatsUsecase struct {
	store    Store
	activity *ActivityService
	streaks  *StreakService
	cache    StatsCache
	ttl      time.Duration
}

func NewStatsUsecase(store Store, activity *ActivityService, streaks *StreakService, cache StatsCache, ttl time.Duration) *StatsUsecase {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsUsecase{
		store:    store,
		activity: activity,
		streaks:  streaks,
		cache:    cache,
		ttl:      ttl,
	}
}

func (uc *StatsUsecase) GetStreakInfo(ctx context.Context, userID string) (domain.StreakInfo, error) {
	ctx, span := tracer.Start(ctx, "Stats.Usecase.GetStreakInfo")
	defer span.End()

	key := uc.key(userID, "streak")

	var info domain.StreakInfo
	if uc.load(key, &info) {
		return info, nil
	}

	info, err := uc.streaks.GetStreakInfo(ctx, uc.store, userID)
	if err != nil {
		span.RecordError(err)
		return info, boundaryError(err, "failed to get streak info")
	}

	uc.save(ctx, key, info)
	return info, nil
}

func (uc *StatsUsecase) GetHeatmapData(ctx context.Context, userID string, from, to time.Time) ([]domain.ActivityLog, error) {
	ctx, span := tracer.Start(ctx, "Stats.Usecase.GetHeatmapData")
	defer span.End()

	key := uc.key(userID, "heatmap", from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))

	var logs []domain.ActivityLog
	if uc.load(key, &logs) {
		return logs, nil
	}

	logs, err := uc.activity.GetHeatmapData(ctx, uc.store, userID, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, boundaryError(err, "failed to get heatmap data")
	}

	uc.save(ctx, key, logs)
	return logs, nil
}

// Invalidate makes every cached statistic of the user stale.
func (uc *StatsUsecase) Invalidate(ctx context.Context, userID string) {
	if uc.cache == nil {
		return
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	uc.cache.Set(uc.generationKey(userID), []byte(gen), 0)
}

func (uc *StatsUsecase) generationKey(userID string) string {
	return fmt.Sprintf("daybook:gen:%016x", xxh3.HashString(userID))
}

func (uc *StatsUsecase) key(userID, kind string, parts ...string) string {
	if uc.cache == nil {
		return ""
	}
	gen := "0"
	if raw, ok := uc.cache.Get(uc.generationKey(userID)); ok {
		gen = string(raw)
	}

	h := xxh3.New()
	h.WriteString(userID)
	h.WriteString("|" + gen)
	for _, p := range parts {
		h.WriteString("|" + p)
	}
	return fmt.Sprintf("daybook:%s:%016x", kind, h.Sum64())
}

func (uc *StatsUsecase) load(key string, dst any) bool {
	if uc.cache == nil || key == "" {
		return false
	}
	raw, ok := uc.cache.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (uc *StatsUsecase) save(ctx context.Context, key string, value any) {
	if uc.cache == nil || key == "" {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode stats", slog.String("error", err.Error()), slog.String("module", "stats"))
		return
	}
	uc.cache.Set(key, raw, uc.ttl)
}
