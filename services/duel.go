package services

import (
	"errors"
	"fmt"
	"log"

	"quiz-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DuelService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewDuelService(db *gorm.DB, notifier Notifier) *DuelService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DuelService{DB: db, Notifier: notifier}
}

// CreateChallenge opens a pending duel from challenger to opponent. If a
// pending duel for this ordered pair already exists, the existing row is
// returned together with ErrDuplicateChallenge so retried requests are safe
// and never create a second row; the store's partial unique index arbitrates
// concurrent creates.
func (s *DuelService) CreateChallenge(challengerID, opponentID, quizID string) (*models.Challenge, error) {
	if challengerID == "" || opponentID == "" || quizID == "" {
		return nil, fmt.Errorf("%w: challenger, opponent and quiz are required", models.ErrValidation)
	}
	if challengerID == opponentID {
		return nil, fmt.Errorf("%w: cannot challenge yourself", models.ErrValidation)
	}

	challenge := models.Challenge{
		ID:           uuid.NewString(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		QuizID:       quizID,
		Status:       models.ChallengeStatusPending,
	}
	if err := s.DB.Create(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Challenge
			findErr := s.DB.
				Where("challenger_id = ? AND opponent_id = ? AND status = ?",
					challengerID, opponentID, models.ChallengeStatusPending).
				First(&existing).Error
			if findErr != nil {
				return nil, findErr
			}
			return &existing, models.ErrDuplicateChallenge
		}
		return nil, err
	}

	go s.notifyParticipant(opponentID, "New duel!",
		"You have been challenged to a quiz duel.", "/duels/"+challenge.ID)

	return &challenge, nil
}

// SubmitScore records the actor's score for a pending challenge and, when
// both slots are filled, finalizes the duel. The score write and the
// read-both-then-decide step share one transaction: the row lock taken by
// the score update serializes near-simultaneous submissions, so the second
// submitter always observes the first one's score before deciding.
func (s *DuelService) SubmitScore(challengeID, actorID string, score int64) (*models.Challenge, error) {
	var challenge models.Challenge

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: challenge %s", models.ErrNotFound, challengeID)
			}
			return err
		}
		if !challenge.IsParticipant(actorID) {
			return models.ErrNotAParticipant
		}
		if challenge.Status == models.ChallengeStatusCompleted {
			return models.ErrChallengeClosed
		}

		slot := "challenger_score"
		if actorID == challenge.OpponentID {
			slot = "opponent_score"
		}

		// Last write wins for the actor's own slot, but only while pending.
		result := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challengeID, models.ChallengeStatusPending).
			Update(slot, score)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Completed between our read and write.
			return models.ErrChallengeClosed
		}

		// Re-read inside the transaction: holding the row lock, this view
		// includes every score committed before ours.
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			return err
		}
		if challenge.ChallengerScore == nil || challenge.OpponentScore == nil {
			return nil // waiting for the other participant
		}

		winnerID := models.WinnerDraw
		if *challenge.ChallengerScore > *challenge.OpponentScore {
			winnerID = challenge.ChallengerID
		} else if *challenge.OpponentScore > *challenge.ChallengerScore {
			winnerID = challenge.OpponentID
		}

		result = tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challengeID, models.ChallengeStatusPending).
			Updates(map[string]interface{}{
				"status":    models.ChallengeStatusCompleted,
				"winner_id": winnerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrChallengeClosed
		}
		challenge.Status = models.ChallengeStatusCompleted
		challenge.WinnerID = winnerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if challenge.Status == models.ChallengeStatusCompleted {
		s.notifyResult(&challenge)
	}
	return &challenge, nil
}

// notifyResult tells both participants the duel is decided. Best effort:
// a failed push never affects the completed challenge.
func (s *DuelService) notifyResult(c *models.Challenge) {
	body := "The duel ended in a draw."
	if c.WinnerID != models.WinnerDraw {
		body = "The duel has a winner!"
	}
	for _, participantID := range []string{c.ChallengerID, c.OpponentID} {
		go s.notifyParticipant(participantID, "Duel finished", body, "/duels/"+c.ID)
	}
}

// notifyParticipant pushes to one participant. The relay is addressed by the
// gateway user id, so the internal profile id is resolved first.
func (s *DuelService) notifyParticipant(profileID, title, body, url string) {
	var profile models.PlayerProfile
	if err := s.DB.Select("external_user_id").First(&profile, "id = ?", profileID).Error; err != nil {
		log.Printf("⚠️ Duel notification skipped, cannot resolve profile %s: %v", profileID, err)
		return
	}
	if err := s.Notifier.Send(profile.ExternalUserID, title, body, url); err != nil {
		log.Printf("⚠️ Duel notification to %s failed: %v", profile.ExternalUserID, err)
	}
}
