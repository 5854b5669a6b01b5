package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/totegamma/daybook/internal/domain"
)

const (
	// No open streak.
	streakStateNone = "none"
	// Open streak whose last day is yesterday.
	streakStateOpen = "open"
	// Open streak that ended before yesterday.
	streakStateLapsed = "lapsed"
	// Open streak that already counts today.
	streakStateCounted = "counted"

	streakEventWrite = "write"
)

var streakEvents = fsm.Events{
	{Name: streakEventWrite, Src: []string{streakStateNone, streakStateOpen, streakStateLapsed}, Dst: streakStateCounted},
	{Name: streakEventWrite, Src: []string{streakStateCounted}, Dst: streakStateCounted},
}

// StreakService drives the per-user writing streak state machine.
type StreakService struct{}

func NewStreakService() *StreakService {
	return &StreakService{}
}

// streakState classifies the open streak relative to today.
func streakState(active *domain.Streak, today time.Time) string {
	switch {
	case active == nil:
		return streakStateNone
	case !active.EndDate.Before(today):
		return streakStateCounted
	case active.EndDate.Equal(today.AddDate(0, 0, -1)):
		return streakStateOpen
	default:
		return streakStateLapsed
	}
}

// newStreakMachine builds a machine positioned at the user's current streak state. Leaving a
// state performs the repository writes for that transition; a failed write cancels the transition
// and is reported through failed.
func newStreakMachine(repo StreakRepository, userID string, active *domain.Streak, today time.Time, failed *error) *fsm.FSM {
	open := func(ctx context.Context) error {
		created, err := repo.Create(ctx, domain.Streak{
			ID:        uuid.NewString(),
			UserID:    userID,
			StartDate: today,
			EndDate:   today,
			Length:    1,
			IsActive:  true,
		})
		if err != nil {
			return err
		}
		if !created {
			// a concurrent write opened today's streak first
			slog.DebugContext(ctx, "streak already opened", slog.String("user", userID), slog.String("module", "streak"))
		}
		return nil
	}

	guard := func(write func(ctx context.Context) error) fsm.Callback {
		return func(ctx context.Context, e *fsm.Event) {
			if err := write(ctx); err != nil {
				*failed = err
				e.Cancel(err)
			}
		}
	}

	return fsm.NewFSM(
		streakState(active, today),
		streakEvents,
		fsm.Callbacks{
			"leave_" + streakStateNone: guard(open),
			"leave_" + streakStateOpen: guard(func(ctx context.Context) error {
				return repo.Extend(ctx, active.ID, today, active.Length+1)
			}),
			"leave_" + streakStateLapsed: guard(func(ctx context.Context) error {
				if err := repo.Close(ctx, active.ID); err != nil {
					return err
				}
				return open(ctx)
			}),
		},
	)
}

// UpdateStreak records that the user wrote on today.
func (s *StreakService) UpdateStreak(ctx context.Context, tx Store, userID string, today time.Time) error {
	repo := tx.Streaks()

	active, err := repo.Active(ctx, userID)
	if err != nil {
		return err
	}

	var failed error
	machine := newStreakMachine(repo, userID, active, today, &failed)
	err = machine.Event(ctx, streakEventWrite)
	if failed != nil {
		return failed
	}
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		return err
	}
	return nil
}

// GetStreakInfo reports the open streak length and the longest streak ever recorded.
func (s *StreakService) GetStreakInfo(ctx context.Context, store Store, userID string) (domain.StreakInfo, error) {
	var info domain.StreakInfo

	active, err := store.Streaks().Active(ctx, userID)
	if err != nil {
		return info, err
	}
	if active != nil {
		info.CurrentStreak = active.Length
	}

	info.LongestStreak, err = store.Streaks().Longest(ctx, userID)
	if err != nil {
		return info, err
	}
	return info, nil
}
