package workers

import (
	"log"
	"time"

	"quiz-progression-system/models"
	"quiz-progression-system/services"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StreakReminderWorker pushes a streak-at-risk reminder once a day to
// players who were active yesterday but not yet today. Purely best effort:
// a failed push is logged and skipped.
type StreakReminderWorker struct {
	DB           *gorm.DB
	Notifier     services.Notifier
	MinStreak    int // don't nag players below this streak
	ReminderHour int // UTC hour of day the job fires
}

func NewStreakReminderWorker(db *gorm.DB, notifier services.Notifier) *StreakReminderWorker {
	return &StreakReminderWorker{
		DB:           db,
		Notifier:     notifier,
		MinStreak:    3,
		ReminderHour: 18,
	}
}

func (w *StreakReminderWorker) Start() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(w.ReminderHour), 0, 0))),
		gocron.NewTask(w.RunOnce),
	)

	log.Printf("✅ Streak reminder worker scheduled (daily at %02d:00 UTC)", w.ReminderHour)
}

// RunOnce sends reminders for the current UTC day.
func (w *StreakReminderWorker) RunOnce() {
	today := time.Now().UTC()
	yesterday := today.AddDate(0, 0, -1).Format("2006-01-02")

	var profiles []models.PlayerProfile
	err := w.DB.
		Where("last_active_date = ? AND streak_count >= ?", yesterday, w.MinStreak).
		Find(&profiles).Error
	if err != nil {
		log.Printf("[Reminder] DB error: %v", err)
		return
	}

	sent := 0
	for _, p := range profiles {
		err := w.Notifier.Send(p.ExternalUserID, "Your streak is at risk!",
			"Play one quiz today to keep your streak alive.", "/play")
		if err != nil {
			log.Printf("⚠️ Streak reminder to %s failed: %v", p.ExternalUserID, err)
			continue
		}
		sent++
	}
	log.Printf("🔔 Streak reminders sent: %d/%d", sent, len(profiles))
}
