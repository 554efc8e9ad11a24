package models

// ChallengeStatus is the duel lifecycle state. Completed is terminal.
type ChallengeStatus string

const (
	ChallengeStatusPending   ChallengeStatus = "pending"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

// WinnerDraw is stored in WinnerID when both scores are equal.
const WinnerDraw = "draw"

// Challenge records an asynchronous two-player quiz duel.
// The partial unique index guarantees at most one pending challenge per
// ordered (challenger, opponent) pair at the store, so two concurrent
// creates cannot both insert.
type Challenge struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	ChallengerID string `gorm:"index;not null;uniqueIndex:uniq_pending_pair,where:status = 'pending'" json:"challenger_id"`
	OpponentID   string `gorm:"index;not null;uniqueIndex:uniq_pending_pair,where:status = 'pending'" json:"opponent_id"`
	QuizID       string `gorm:"not null" json:"quiz_id"`

	Status          ChallengeStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	ChallengerScore *int64          `json:"challenger_score,omitempty"`
	OpponentScore   *int64          `json:"opponent_score,omitempty"`

	// challenger_id, opponent_id or "draw"; set only when completed.
	WinnerID string `json:"winner_id,omitempty"`

	Timestamps
}

// IsParticipant reports whether userID plays a role in this challenge.
func (c *Challenge) IsParticipant(userID string) bool {
	return userID == c.ChallengerID || userID == c.OpponentID
}
