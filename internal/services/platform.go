package services

import "time"

// PostRef is the slice of a platform post the bot cares about.
type PostRef struct {
	ID          int64
	Title       string
	CreatorID   int64
	CreatorName string
	Published   time.Time
}

// CommentRef identifies a comment and who wrote it.
type CommentRef struct {
	ID        int64
	CreatorID int64
}

// PlatformClient is the capability surface the enforcement engine needs from
// the federation platform. Implemented by internal/lemmy; tests inject fakes.
type PlatformClient interface {
	GetPostTitle(postID int64) (string, error)
	ListRecentPosts(community string, since time.Time) ([]PostRef, error)
	ListComments(postID int64) ([]CommentRef, error)
	CreateComment(postID int64, body string) error
	DeleteComment(commentID int64) error
	RemovePost(postID int64, reason string) error
	NotifyAuthor(postID int64, message string) error
}

// Notifier delivers operator alerts (e.g. to a Matrix room). A nil Notifier is
// valid and drops everything.
type Notifier interface {
	Send(title, message string)
}
