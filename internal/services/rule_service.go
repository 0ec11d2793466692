package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Demigodrick/community-bot/internal/models"
)

// RuleService persists per-community enforcement rulesets and answers the
// step lookups the engine drives its cursor with.
type RuleService struct {
	DB *gorm.DB
}

func NewRuleService(db *gorm.DB) *RuleService {
	return &RuleService{DB: db}
}

// PutRuleSet stores the full enforcement policy for a community, replacing any
// existing ruleset and its steps in one transaction. Steps must arrive as a
// contiguous zero-based order sequence; there is no incremental step edit.
func (s *RuleService) PutRuleSet(community string, tags []string, steps []models.EnforcementStep) (*models.RuleSet, error) {
	if community == "" {
		return nil, fmt.Errorf("community is required")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("ruleset requires at least one step")
	}
	for i := range steps {
		if steps[i].Order != i {
			return nil, fmt.Errorf("step orders must be contiguous from 0, got %d at position %d", steps[i].Order, i)
		}
		if err := steps[i].Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	ruleset := &models.RuleSet{Community: community}
	ruleset.SetTagList(tags)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.RuleSet
		if err := tx.Where("community = ?", community).Find(&existing).Error; err != nil {
			return err
		}
		for _, old := range existing {
			if err := tx.Where("rule_set_id = ?", old.ID).Delete(&models.EnforcementStep{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.RuleSet{}, old.ID).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(ruleset).Error; err != nil {
			return err
		}
		for i := range steps {
			steps[i].ID = 0
			steps[i].RuleSetID = ruleset.ID
			if err := tx.Create(&steps[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store ruleset for %s: %w", community, err)
	}

	ruleset.Steps = steps
	return ruleset, nil
}

// RequiredTags returns the union of required tags across every ruleset for the
// community. An empty result means the community has no tag policy.
func (s *RuleService) RequiredTags(community string) ([]string, error) {
	var rulesets []models.RuleSet
	if err := s.DB.Where("community = ?", community).Find(&rulesets).Error; err != nil {
		return nil, fmt.Errorf("load rulesets for %s: %w", community, err)
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, rs := range rulesets {
		for _, tag := range rs.TagList() {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// FirstStep returns the lowest-ordered step of the community's ruleset, or nil
// when the community has no enforcement policy configured.
func (s *RuleService) FirstStep(community string) (*models.EnforcementStep, error) {
	var step models.EnforcementStep
	err := s.DB.
		Joins("JOIN rule_sets ON rule_sets.id = enforcement_steps.rule_set_id").
		Where("rule_sets.community = ?", community).
		Order("enforcement_steps.step_order ASC").
		First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load first step for %s: %w", community, err)
	}
	return &step, nil
}

// Step returns the step at the given order within a ruleset, or nil when no
// such step exists (e.g. the ruleset was replaced under an in-flight case).
func (s *RuleService) Step(ruleSetID uint, order int) (*models.EnforcementStep, error) {
	var step models.EnforcementStep
	err := s.DB.Where("rule_set_id = ? AND step_order = ?", ruleSetID, order).First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load step %d of ruleset %d: %w", order, ruleSetID, err)
	}
	return &step, nil
}

// CountSteps returns how many steps a ruleset holds.
func (s *RuleService) CountSteps(ruleSetID uint) (int, error) {
	var count int64
	if err := s.DB.Model(&models.EnforcementStep{}).Where("rule_set_id = ?", ruleSetID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count steps of ruleset %d: %w", ruleSetID, err)
	}
	return int(count), nil
}
