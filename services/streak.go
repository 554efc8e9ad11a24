package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"quiz-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// dayLayout is the canonical calendar-day format for LastActiveDate and the
// trusted "today" input. Days compare by equality, never by elapsed hours.
const dayLayout = "2006-01-02"

// StreakResult is what a streak evaluation reports back to the caller.
type StreakResult struct {
	NewStreakCount int  `json:"new_streak_count"`
	Changed        bool `json:"changed"`
	ShouldNotify   bool `json:"should_notify"`
}

type StreakService struct {
	DB *gorm.DB

	// Ephemeral per-day celebration markers, deliberately not persisted:
	// presentation hints, not authoritative profile state. A streak
	// mutation leaves the day's marker pending; a same-day re-evaluation
	// consumes it, so only the process that performed the mutation ever
	// re-surfaces the celebration, and at most once.
	mu      sync.Mutex
	markers map[string]notifyMarker
}

// notifyMarker tracks one profile's celebration state for a calendar day.
type notifyMarker struct {
	day     string
	pending bool
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db, markers: map[string]notifyMarker{}}
}

// Evaluate advances the profile's streak for the given trusted calendar day
// and persists the result as one guarded update. Repeated invocation for the
// same day never increments twice; a lost race on the guard is retried once
// before ErrStorageConflict surfaces.
func (s *StreakService) Evaluate(profileID, today string) (StreakResult, error) {
	if today == "" {
		return StreakResult{}, models.ErrClock
	}
	day, err := time.Parse(dayLayout, today)
	if err != nil {
		return StreakResult{}, fmt.Errorf("%w: %q is not a calendar day", models.ErrClock, today)
	}

	var res StreakResult
	evalErr := retryOnConflict(func() error {
		var err error
		res, err = s.evaluateOnce(profileID, day)
		return err
	})
	if evalErr != nil {
		return StreakResult{}, evalErr
	}
	return res, nil
}

func (s *StreakService) evaluateOnce(profileID string, day time.Time) (StreakResult, error) {
	today := day.Format(dayLayout)

	var profile models.PlayerProfile
	if err := s.DB.First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StreakResult{}, fmt.Errorf("%w: profile %s", models.ErrNotFound, profileID)
		}
		return StreakResult{}, err
	}

	gap := daysSince(profile.LastActiveDate, day)
	if gap < 0 {
		// last_active_date ahead of the trusted day: the canonical time
		// reference cannot be trusted for this call.
		return StreakResult{}, fmt.Errorf("%w: last active %s is after %s",
			models.ErrClock, *profile.LastActiveDate, today)
	}

	if gap == 0 {
		// Already counted today. No mutation here and no fresh marker:
		// only a celebration still pending from this process's own
		// mutation is surfaced.
		return StreakResult{
			NewStreakCount: profile.StreakCount,
			Changed:        false,
			ShouldNotify:   s.consumePending(profileID, today),
		}, nil
	}

	newStreak := 1
	useFreeze := false
	switch {
	case gap == 1:
		newStreak = profile.StreakCount + 1
	case gap == 2 && profile.StreakFreezes > 0:
		// One missed day covered by a streak freeze: the freeze is consumed
		// silently and the streak continues as if unbroken.
		newStreak = profile.StreakCount + 1
		useFreeze = true
	}

	updates := map[string]interface{}{
		"streak_count":     newStreak,
		"last_active_date": today,
	}
	query := s.DB.Model(&models.PlayerProfile{}).Where("id = ?", profileID)
	if profile.LastActiveDate == nil {
		query = query.Where("last_active_date IS NULL")
	} else {
		query = query.Where("last_active_date = ?", *profile.LastActiveDate)
	}
	if useFreeze {
		updates["streak_freezes"] = gorm.Expr("streak_freezes - 1")
		query = query.Where("streak_freezes > 0")
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return StreakResult{}, result.Error
	}
	if result.RowsAffected == 0 {
		// Another caller advanced the profile between our read and write.
		return StreakResult{}, models.ErrStorageConflict
	}

	s.markPending(profileID, today)
	return StreakResult{NewStreakCount: newStreak, Changed: true, ShouldNotify: true}, nil
}

// markPending records that today's celebration has not been re-surfaced yet.
func (s *StreakService) markPending(profileID, today string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[profileID] = notifyMarker{day: today, pending: true}
}

// consumePending reports whether today's celebration was still pending and
// consumes it, so it is re-surfaced at most once per profile per day.
func (s *StreakService) consumePending(profileID, today string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[profileID]
	if !ok || m.day != today || !m.pending {
		return false
	}
	s.markers[profileID] = notifyMarker{day: today}
	return true
}

// daysSince returns the whole calendar days between last and day
// (0 = same day, 1 = consecutive). A nil last counts as an arbitrarily
// old gap. Month and year boundaries are handled by real date math.
func daysSince(last *string, day time.Time) int {
	if last == nil {
		return int(^uint(0) >> 1) // never active: maximal gap
	}
	lastDay, err := time.Parse(dayLayout, *last)
	if err != nil {
		return int(^uint(0) >> 1) // unreadable marker behaves like a broken streak
	}
	return int(day.Sub(lastDay) / (24 * time.Hour))
}

// EnsureProfile ensures a PlayerProfile row exists for the gateway user
// (idempotent), creating a fresh one on first contact.
func (s *StreakService) EnsureProfile(externalUserID string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.PlayerProfile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			CurrentHearts:  models.MaxHearts,
		}
		if err := s.DB.Create(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the creation race; the winner's row is ours to use.
				err = s.DB.Where("external_user_id = ?", externalUserID).First(&profile).Error
				if err == nil {
					return &profile, nil
				}
			}
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
