// Package lemmy is a thin client for the slice of the Lemmy HTTP API v3 the
// bot uses. It implements services.PlatformClient.
package lemmy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Demigodrick/community-bot/internal/services"
)

const apiBase = "/api/v3"

// Client talks to a single Lemmy instance with the bot account's credentials.
type Client struct {
	baseURL  string
	username string
	password string

	httpClient *http.Client

	mu  sync.Mutex
	jwt string
}

// New builds a client for the given instance hostname (no scheme).
func New(instance, username, password string) *Client {
	return &Client{
		baseURL:    "https://" + instance,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the instance URL for testing.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// Login authenticates the bot account and caches the session token.
func (c *Client) Login() error {
	payload := map[string]string{
		"username_or_email": c.username,
		"password":          c.password,
	}
	var out struct {
		JWT string `json:"jwt"`
	}
	if err := c.post("/user/login", payload, &out, false); err != nil {
		return fmt.Errorf("login as %s: %w", c.username, err)
	}
	if out.JWT == "" {
		return fmt.Errorf("login as %s: no token in response", c.username)
	}

	c.mu.Lock()
	c.jwt = out.JWT
	c.mu.Unlock()
	return nil
}

type postView struct {
	Post struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Published string `json:"published"`
	} `json:"post"`
	Creator struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"creator"`
}

// GetPostTitle returns a post's current title.
func (c *Client) GetPostTitle(postID int64) (string, error) {
	post, err := c.getPost(postID)
	if err != nil {
		return "", err
	}
	return post.Post.Name, nil
}

func (c *Client) getPost(postID int64) (*postView, error) {
	var out struct {
		PostView postView `json:"post_view"`
	}
	q := url.Values{"id": {strconv.FormatInt(postID, 10)}}
	if err := c.get("/post", q, &out); err != nil {
		return nil, fmt.Errorf("get post %d: %w", postID, err)
	}
	return &out.PostView, nil
}

// ListRecentPosts returns the newest posts of a community published at or
// after the given time.
func (c *Client) ListRecentPosts(community string, since time.Time) ([]services.PostRef, error) {
	var out struct {
		Posts []postView `json:"posts"`
	}
	q := url.Values{
		"community_name": {community},
		"sort":           {"New"},
		"limit":          {"50"},
	}
	if err := c.get("/post/list", q, &out); err != nil {
		return nil, fmt.Errorf("list posts in %s: %w", community, err)
	}

	var posts []services.PostRef
	for _, pv := range out.Posts {
		published := parseTimestamp(pv.Post.Published)
		if !published.IsZero() && published.Before(since) {
			continue
		}
		posts = append(posts, services.PostRef{
			ID:          pv.Post.ID,
			Title:       pv.Post.Name,
			CreatorID:   pv.Creator.ID,
			CreatorName: pv.Creator.Name,
			Published:   published,
		})
	}
	return posts, nil
}

// ListComments returns the comments on a post.
func (c *Client) ListComments(postID int64) ([]services.CommentRef, error) {
	var out struct {
		Comments []struct {
			Comment struct {
				ID int64 `json:"id"`
			} `json:"comment"`
			Creator struct {
				ID int64 `json:"id"`
			} `json:"creator"`
		} `json:"comments"`
	}
	q := url.Values{
		"post_id": {strconv.FormatInt(postID, 10)},
		"limit":   {"50"},
	}
	if err := c.get("/comment/list", q, &out); err != nil {
		return nil, fmt.Errorf("list comments on post %d: %w", postID, err)
	}

	var comments []services.CommentRef
	for _, cv := range out.Comments {
		comments = append(comments, services.CommentRef{ID: cv.Comment.ID, CreatorID: cv.Creator.ID})
	}
	return comments, nil
}

// CreateComment posts a comment on a post as the bot account.
func (c *Client) CreateComment(postID int64, body string) error {
	payload := map[string]interface{}{
		"post_id": postID,
		"content": body,
	}
	if err := c.post("/comment", payload, nil, true); err != nil {
		return fmt.Errorf("create comment on post %d: %w", postID, err)
	}
	return nil
}

// DeleteComment deletes one of the bot's own comments.
func (c *Client) DeleteComment(commentID int64) error {
	payload := map[string]interface{}{
		"comment_id": commentID,
		"deleted":    true,
	}
	if err := c.post("/comment/delete", payload, nil, true); err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}

// RemovePost removes a post as a moderator action with the given reason.
func (c *Client) RemovePost(postID int64, reason string) error {
	payload := map[string]interface{}{
		"post_id": postID,
		"removed": true,
		"reason":  reason,
	}
	if err := c.post("/post/remove", payload, nil, true); err != nil {
		return fmt.Errorf("remove post %d: %w", postID, err)
	}
	return nil
}

// NotifyAuthor sends a private message to a post's author.
func (c *Client) NotifyAuthor(postID int64, message string) error {
	post, err := c.getPost(postID)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{
		"recipient_id": post.Creator.ID,
		"content":      message,
	}
	if err := c.post("/private_message", payload, nil, true); err != nil {
		return fmt.Errorf("message author of post %d: %w", postID, err)
	}
	return nil
}

func (c *Client) get(path string, query url.Values, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+apiBase+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out, true)
}

func (c *Client) post(path string, payload interface{}, out interface{}, authed bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+apiBase+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, authed)
}

func (c *Client) do(req *http.Request, out interface{}, authed bool) error {
	if authed {
		c.mu.Lock()
		token := c.jwt
		c.mu.Unlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseTimestamp handles the timestamp shapes Lemmy has shipped: RFC 3339 and
// a bare fractional-seconds form without a zone (treated as UTC).
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999", raw); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
