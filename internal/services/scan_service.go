package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Demigodrick/community-bot/internal/logger"
	"github.com/Demigodrick/community-bot/internal/metrics"
	"github.com/Demigodrick/community-bot/internal/models"
)

// ScanService sweeps recent posts in every community that carries a tag policy
// and opens enforcement cases for the ones whose titles lack a required tag.
// Each post is inspected once; the seen_posts table keeps restarts and
// overlapping scan windows from re-judging posts already handled.
type ScanService struct {
	DB       *gorm.DB
	Rules    *RuleService
	Engine   *EnforcementService
	Platform PlatformClient

	// Window bounds how far back the scan reaches.
	Window time.Duration

	now func() time.Time
}

func NewScanService(db *gorm.DB, rules *RuleService, engine *EnforcementService, platform PlatformClient, window time.Duration) *ScanService {
	return &ScanService{
		DB:       db,
		Rules:    rules,
		Engine:   engine,
		Platform: platform,
		Window:   window,
		now:      time.Now,
	}
}

// ScanCommunities runs one scan pass over every community with a ruleset.
func (s *ScanService) ScanCommunities() error {
	var rulesets []models.RuleSet
	if err := s.DB.Find(&rulesets).Error; err != nil {
		return fmt.Errorf("load rulesets: %w", err)
	}

	since := s.now().UTC().Add(-s.Window)
	for _, rs := range rulesets {
		if err := s.scanCommunity(rs, since); err != nil {
			logger.WithFields(logrus.Fields{"community": rs.Community}).
				WithError(err).Warn("community scan failed")
		}
	}
	return nil
}

func (s *ScanService) scanCommunity(rs models.RuleSet, since time.Time) error {
	tags := rs.TagList()
	if len(tags) == 0 {
		return nil
	}

	posts, err := s.Platform.ListRecentPosts(rs.Community, since)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	inspected := 0
	for _, post := range posts {
		fresh, err := s.markSeen(post.ID)
		if err != nil {
			logger.WithFields(logrus.Fields{"post_id": post.ID}).
				WithError(err).Warn("cannot record seen post")
			continue
		}
		if !fresh {
			continue
		}
		inspected++

		if TitleCompliant(post.Title, tags) {
			continue
		}
		if err := s.Engine.OpenCase(rs.Community, post.ID); err != nil {
			logger.WithFields(logrus.Fields{"post_id": post.ID, "community": rs.Community}).
				WithError(err).Error("cannot open enforcement case")
		}
	}

	metrics.AddPostsScanned(inspected)
	return nil
}

// markSeen records a post id and reports whether it was new to the scanner.
func (s *ScanService) markSeen(postID int64) (bool, error) {
	var existing models.SeenPost
	err := s.DB.Where("post_id = ?", postID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := s.DB.Create(&models.SeenPost{PostID: postID}).Error; err != nil {
		return false, err
	}
	return true, nil
}
