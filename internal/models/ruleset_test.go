package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionValid(t *testing.T) {
	assert.True(t, ActionWarn.Valid())
	assert.True(t, ActionWait.Valid())
	assert.True(t, ActionRemove.Valid())
	assert.False(t, Action("ban").Valid())
	assert.False(t, Action("").Valid())
}

func TestTagListRoundTrip(t *testing.T) {
	var rs RuleSet
	rs.SetTagList([]string{"[News]", "[Rumour]"})
	assert.Equal(t, "[News],[Rumour]", rs.Tags)
	assert.Equal(t, []string{"[News]", "[Rumour]"}, rs.TagList())
}

func TestTagListDropsEmptyEntries(t *testing.T) {
	rs := RuleSet{Tags: "news, ,,rumour"}
	assert.Equal(t, []string{"news", "rumour"}, rs.TagList())
}

func TestStepValidate(t *testing.T) {
	tests := []struct {
		name    string
		step    EnforcementStep
		wantErr string
	}{
		{"warn with message", EnforcementStep{Action: ActionWarn, Message: "tag your post"}, ""},
		{"warn without message", EnforcementStep{Action: ActionWarn}, "requires a message"},
		{"wait with duration", EnforcementStep{Action: ActionWait, DurationHours: 24}, ""},
		{"wait without duration", EnforcementStep{Action: ActionWait}, "requires a positive duration"},
		{"remove", EnforcementStep{Action: ActionRemove}, ""},
		{"unknown action", EnforcementStep{Action: "ban"}, "unknown action"},
		{"negative order", EnforcementStep{Action: ActionRemove, Order: -1}, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStepWait(t *testing.T) {
	wait := EnforcementStep{Action: ActionWait, DurationHours: 24}
	assert.Equal(t, 24*time.Hour, wait.Wait())

	warn := EnforcementStep{Action: ActionWarn, Message: "x", DurationHours: 24}
	assert.Equal(t, time.Duration(0), warn.Wait(), "only wait steps defer execution")
}

func TestCaseDue(t *testing.T) {
	now := time.Now()
	c := EnforcementCase{NextActionDue: now}
	assert.True(t, c.Due(now))
	assert.True(t, c.Due(now.Add(time.Minute)))
	assert.False(t, c.Due(now.Add(-time.Minute)))
}
