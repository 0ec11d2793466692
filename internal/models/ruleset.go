package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action is the kind of moderation step an enforcement ruleset can run.
type Action string

const (
	// ActionWarn posts a warning comment on the offending post.
	ActionWarn Action = "warn"
	// ActionWait defers the next step for a number of hours. No platform side effect.
	ActionWait Action = "wait"
	// ActionRemove removes the post and notifies its author.
	ActionRemove Action = "remove"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionWarn, ActionWait, ActionRemove:
		return true
	}
	return false
}

// RuleSet is one community's tag-enforcement policy: the tags a post title must
// carry plus an ordered sequence of steps to run against posts that lack them.
// A community holds at most one ruleset; storing a new one replaces the old.
type RuleSet struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	Community string    `json:"community" gorm:"uniqueIndex"`
	Tags      string    `json:"tags" gorm:"type:text"` // comma-joined, matched case-insensitively
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Steps []EnforcementStep `json:"steps,omitempty" gorm:"foreignKey:RuleSetID"`
}

// EnforcementStep is a single ordered action within a ruleset. Order is a
// contiguous zero-based sequence; the engine walks it strictly ascending.
type EnforcementStep struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	RuleSetID     uint   `json:"rule_set_id" gorm:"index;uniqueIndex:idx_ruleset_order"`
	Order         int    `json:"order" gorm:"column:step_order;uniqueIndex:idx_ruleset_order"`
	Action        Action `json:"action"`
	DurationHours int    `json:"duration_hours"` // meaningful for wait (and an optional warn cool-down)
	Message       string `json:"message" gorm:"type:text"`
}

func (r *RuleSet) BeforeCreate(tx *gorm.DB) (err error) {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	if r.Community == "" {
		return fmt.Errorf("ruleset requires a community")
	}
	return
}

// TagList splits the stored tag column into a slice, dropping empty entries.
func (r *RuleSet) TagList() []string {
	var tags []string
	for _, t := range strings.Split(r.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SetTagList stores the given tags as the comma-joined column value.
func (r *RuleSet) SetTagList(tags []string) {
	r.Tags = strings.Join(tags, ",")
}

// Validate enforces the per-action field requirements before a step is persisted.
func (s *EnforcementStep) Validate() error {
	if !s.Action.Valid() {
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if s.Order < 0 {
		return fmt.Errorf("step order must not be negative")
	}
	switch s.Action {
	case ActionWarn:
		if strings.TrimSpace(s.Message) == "" {
			return fmt.Errorf("warn step requires a message")
		}
	case ActionWait:
		if s.DurationHours <= 0 {
			return fmt.Errorf("wait step requires a positive duration")
		}
	}
	return nil
}

func (s *EnforcementStep) BeforeCreate(tx *gorm.DB) error {
	return s.Validate()
}

// Wait returns the deferral this step imposes before the next step becomes due.
func (s *EnforcementStep) Wait() time.Duration {
	if s.Action == ActionWait {
		return time.Duration(s.DurationHours) * time.Hour
	}
	return 0
}
