package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Demigodrick/community-bot/internal/logger"
	"github.com/Demigodrick/community-bot/internal/metrics"
	"github.com/Demigodrick/community-bot/internal/models"
)

const removalMessage = "Hey there! Your post has been removed from [%s](/c/%s) automatically because its title is missing a required tag. " +
	"You are welcome to resubmit, but please make sure the title carries one of the community's required tags."

// EnforcementService drives enforcement cases through their ruleset's steps.
// A case advances by exactly one step per tick once its due-time has passed,
// and is deleted when the post becomes compliant or the final step has run.
type EnforcementService struct {
	DB           *gorm.DB
	Rules        *RuleService
	Platform     PlatformClient
	Notifier     Notifier
	BotAccountID int64

	tickMu sync.Mutex
	now    func() time.Time
}

func NewEnforcementService(db *gorm.DB, rules *RuleService, platform PlatformClient, notifier Notifier, botAccountID int64) *EnforcementService {
	return &EnforcementService{
		DB:           db,
		Rules:        rules,
		Platform:     platform,
		Notifier:     notifier,
		BotAccountID: botAccountID,
		now:          time.Now,
	}
}

// OpenCase starts enforcement against a post. It is a no-op when the community
// has no ruleset configured or when a case for the post is already open.
func (s *EnforcementService) OpenCase(community string, postID int64) error {
	var existing models.EnforcementCase
	err := s.DB.Where("post_id = ?", postID).First(&existing).Error
	if err == nil {
		logger.WithFields(logrus.Fields{"post_id": postID, "community": community}).
			Debug("enforcement case already open, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check for open case on post %d: %w", postID, err)
	}

	first, err := s.Rules.FirstStep(community)
	if err != nil {
		return err
	}
	if first == nil {
		// Nothing configured for this community.
		return nil
	}

	c := models.EnforcementCase{
		PostID:        postID,
		Community:     community,
		RuleSetID:     first.RuleSetID,
		CurrentStep:   0,
		NextActionDue: s.now().UTC().Add(first.Wait()),
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return fmt.Errorf("open case for post %d: %w", postID, err)
	}

	metrics.IncCaseOpened()
	logger.WithFields(logrus.Fields{
		"post_id":   postID,
		"community": community,
		"due":       c.NextActionDue,
	}).Info("opened enforcement case")
	return nil
}

// ProcessDueCases is the engine tick: close cases whose posts became
// compliant, then execute the current step of every case whose due-time has
// passed. Only one tick runs at a time; an overlapping call returns
// immediately so a slow tick cannot double-execute a step.
func (s *EnforcementService) ProcessDueCases() error {
	if !s.tickMu.TryLock() {
		logger.Log().Debug("enforcement tick already running, skipping")
		return nil
	}
	defer s.tickMu.Unlock()

	if err := s.sweepCompliant(); err != nil {
		return err
	}
	return s.sweepDue()
}

// sweepCompliant re-checks every open case against the post's current title
// and closes the ones that now comply, cleaning up the bot's own warning
// comments on the way out.
func (s *EnforcementService) sweepCompliant() error {
	var cases []models.EnforcementCase
	if err := s.DB.Find(&cases).Error; err != nil {
		return fmt.Errorf("load open cases: %w", err)
	}

	for _, c := range cases {
		clog := logger.WithFields(logrus.Fields{"case_id": c.ID, "post_id": c.PostID, "community": c.Community})

		tags, err := s.Rules.RequiredTags(c.Community)
		if err != nil {
			clog.WithError(err).Warn("cannot load required tags, skipping case")
			continue
		}
		if len(tags) == 0 {
			// Policy was removed under the case. Leave it for manual review.
			clog.Warn("case has no tag policy behind it, leaving for manual review")
			continue
		}

		title, err := s.Platform.GetPostTitle(c.PostID)
		if err != nil {
			clog.WithError(err).Warn("cannot fetch post title, skipping case")
			continue
		}

		if !TitleCompliant(title, tags) {
			continue
		}

		s.removeBotComments(c.PostID)
		if err := s.DB.Delete(&models.EnforcementCase{}, c.ID).Error; err != nil {
			clog.WithError(err).Error("failed to delete compliant case")
			continue
		}
		metrics.IncCaseClosed("compliant")
		clog.Info("post now compliant, case closed")
	}
	return nil
}

// sweepDue executes the current step of every case whose due-time has passed.
// A failed platform call leaves the cursor untouched so the next tick retries.
func (s *EnforcementService) sweepDue() error {
	now := s.now().UTC()

	var cases []models.EnforcementCase
	if err := s.DB.Where("next_action_due <= ?", now).Find(&cases).Error; err != nil {
		return fmt.Errorf("load due cases: %w", err)
	}

	for _, c := range cases {
		clog := logger.WithFields(logrus.Fields{
			"case_id":   c.ID,
			"post_id":   c.PostID,
			"community": c.Community,
			"step":      c.CurrentStep,
		})

		step, err := s.Rules.Step(c.RuleSetID, c.CurrentStep)
		if err != nil {
			clog.WithError(err).Warn("cannot load step, skipping case")
			continue
		}
		if step == nil {
			// Ruleset replaced or truncated under the case. Stuck until an
			// operator clears it; deleting here would hide the inconsistency.
			clog.Warn("no step at cursor, leaving case for manual review")
			continue
		}

		total, err := s.Rules.CountSteps(c.RuleSetID)
		if err != nil {
			clog.WithError(err).Warn("cannot count steps, skipping case")
			continue
		}

		if err := s.executeStep(step, &c); err != nil {
			metrics.IncActionFailure()
			clog.WithError(err).Error("step failed, will retry next tick")
			continue
		}
		metrics.IncActionExecuted(string(step.Action))

		next := c.CurrentStep + 1
		if next >= total {
			if err := s.DB.Delete(&models.EnforcementCase{}, c.ID).Error; err != nil {
				clog.WithError(err).Error("failed to delete completed case")
				continue
			}
			metrics.IncCaseClosed("completed")
			clog.Info("final step executed, case closed")
			continue
		}

		due := now
		if upcoming, err := s.Rules.Step(c.RuleSetID, next); err == nil && upcoming != nil {
			due = now.Add(upcoming.Wait())
		}
		updates := map[string]interface{}{"current_step": next, "next_action_due": due}
		if err := s.DB.Model(&models.EnforcementCase{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
			clog.WithError(err).Error("failed to advance case")
			continue
		}
		clog.WithFields(logrus.Fields{"next_step": next, "due": due}).Info("step executed, case advanced")
	}
	return nil
}

// executeStep performs the platform side effect of a single step. Wait steps
// have none; their delay was already served through the case's due-time.
func (s *EnforcementService) executeStep(step *models.EnforcementStep, c *models.EnforcementCase) error {
	switch step.Action {
	case models.ActionWarn:
		if err := s.Platform.CreateComment(c.PostID, step.Message); err != nil {
			return fmt.Errorf("post warning comment: %w", err)
		}

	case models.ActionRemove:
		reason := fmt.Sprintf("Title is missing a tag required by %s", c.Community)
		if err := s.Platform.RemovePost(c.PostID, reason); err != nil {
			return fmt.Errorf("remove post: %w", err)
		}
		// The removal is the irreversible part; the author PM is best effort.
		msg := fmt.Sprintf(removalMessage, c.Community, c.Community)
		if err := s.Platform.NotifyAuthor(c.PostID, msg); err != nil {
			logger.WithFields(logrus.Fields{"post_id": c.PostID}).
				WithError(err).Warn("post removed but author notification failed")
		}
		if s.Notifier != nil {
			s.Notifier.Send("Post removed",
				fmt.Sprintf("Post %d removed from %s for a missing required tag.", c.PostID, c.Community))
		}

	case models.ActionWait:
		logger.WithFields(logrus.Fields{"post_id": c.PostID, "hours": step.DurationHours}).
			Debug("wait step elapsed")
	}
	return nil
}

// removeBotComments deletes the bot's own warning comments from a post once it
// has become compliant.
func (s *EnforcementService) removeBotComments(postID int64) {
	if s.BotAccountID == 0 {
		return
	}
	comments, err := s.Platform.ListComments(postID)
	if err != nil {
		logger.WithFields(logrus.Fields{"post_id": postID}).
			WithError(err).Warn("cannot list comments for cleanup")
		return
	}
	for _, comment := range comments {
		if comment.CreatorID != s.BotAccountID {
			continue
		}
		if err := s.Platform.DeleteComment(comment.ID); err != nil {
			logger.WithFields(logrus.Fields{"post_id": postID, "comment_id": comment.ID}).
				WithError(err).Warn("cannot delete bot comment")
		}
	}
}
