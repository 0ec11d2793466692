package models

import (
	"time"
)

// EnforcementCase tracks one post's progress through its community's
// enforcement steps. A case exists only while enforcement is in flight: it is
// deleted as soon as the post becomes compliant or the final step has run.
// The unique index on PostID keeps duplicate opens out of the table.
type EnforcementCase struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PostID        int64     `json:"post_id" gorm:"uniqueIndex"`
	Community     string    `json:"community" gorm:"index"`
	RuleSetID     uint      `json:"rule_set_id"`
	CurrentStep   int       `json:"current_step"`
	NextActionDue time.Time `json:"next_action_due" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Due reports whether the case's current step is ready to run at the given time.
func (c *EnforcementCase) Due(now time.Time) bool {
	return !c.NextActionDue.After(now)
}

// SeenPost records a post id the scanner has already inspected, so restarts and
// overlapping scan windows do not re-open cases for posts that were compliant
// or already handled.
type SeenPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    int64     `json:"post_id" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}
