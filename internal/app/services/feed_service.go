package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	"github.com/yigit/campusnet/internal/pkg/websocket"
)

const (
	maxPostLength    = 5000
	maxCommentLength = 2000
)

// EventPublisher receives feed changes
type EventPublisher interface {
	Publish(event websocket.Event)
}

// FeedService manages posts, likes and comments
type FeedService struct {
	posts  *repositories.PostRepository
	gate   *auth.Gate
	events EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewFeedService creates a new FeedService. events may be nil.
func NewFeedService(posts *repositories.PostRepository, gate *auth.Gate, events EventPublisher, logger zerolog.Logger) *FeedService {
	return &FeedService{
		posts:  posts,
		gate:   gate,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *FeedService) publish(eventType, postID, actorID string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(websocket.Event{
		Type:      eventType,
		PostID:    postID,
		ActorID:   actorID,
		Payload:   payload,
		Timestamp: s.now(),
	})
}

// ListPosts returns the posts matching criteria
func (s *FeedService) ListPosts(ctx context.Context, criteria query.Criteria) ([]models.Post, error) {
	if _, err := s.gate.Authorize(ctx, models.PostKind.Name, auth.ActionList); err != nil {
		return nil, err
	}
	return s.posts.List(ctx, criteria)
}

// GetPost returns the post with id
func (s *FeedService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if _, err := s.gate.Authorize(ctx, models.PostKind.Name, auth.ActionGet); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, id)
}

// CreatePost publishes a post authored by the caller
func (s *FeedService) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	d, err := s.gate.Authorize(ctx, models.PostKind.Name, auth.ActionCreate)
	if err != nil {
		return nil, err
	}
	content, err = checkText("content", content, maxPostLength)
	if err != nil {
		return nil, err
	}

	role := string(auth.RoleFaculty)
	if d.Principal.Role == auth.RoleAdmin {
		role = string(auth.RoleAdmin)
	}
	post, err := s.posts.Create(ctx, models.Post{
		AuthorID:   d.Principal.ID,
		AuthorRole: role,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("postID", post.ID).Str("authorID", post.AuthorID).Msg("Post created")
	s.publish(websocket.EventPostCreated, post.ID, d.Principal.ID, post)
	return post, nil
}

// DeletePost removes a post. Authors may delete their own posts.
func (s *FeedService) DeletePost(ctx context.Context, id string) (bool, error) {
	d, err := s.gate.Authorize(ctx, models.PostKind.Name, auth.ActionDelete)
	if err != nil {
		return false, err
	}
	if d.Pending {
		post, err := s.posts.Get(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrResourceNotFound) {
				return false, nil
			}
			return false, err
		}
		if err := s.gate.Allow(d, auth.Target{ID: id, OwnerID: post.AuthorID}); err != nil {
			return false, err
		}
	}

	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info().Str("postID", id).Str("principal", d.Principal.ID).Msg("Post deleted")
		s.publish(websocket.EventPostDeleted, id, d.Principal.ID, nil)
	}
	return deleted, nil
}

// LikePost adds the caller to the post's likes. Liking twice has no further effect.
func (s *FeedService) LikePost(ctx context.Context, id string) (*models.Post, error) {
	return s.setLike(ctx, id, true)
}

// UnlikePost removes the caller from the post's likes
func (s *FeedService) UnlikePost(ctx context.Context, id string) (*models.Post, error) {
	return s.setLike(ctx, id, false)
}

func (s *FeedService) setLike(ctx context.Context, id string, like bool) (*models.Post, error) {
	d, err := s.gate.Authorize(ctx, models.PostKind.Name, auth.ActionLike)
	if err != nil {
		return nil, err
	}

	changed := false
	post, err := s.posts.Modify(ctx, id, func(p *models.Post) error {
		idx := indexOf(p.Likes, d.Principal.ID)
		switch {
		case like && idx < 0:
			p.Likes = append(p.Likes, d.Principal.ID)
			changed = true
		case !like && idx >= 0:
			p.Likes = append(p.Likes[:idx], p.Likes[idx+1:]...)
			changed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		eventType := websocket.EventPostUnliked
		if like {
			eventType = websocket.EventPostLiked
		}
		s.publish(eventType, id, d.Principal.ID, map[string]int{"likes": post.LikeCount()})
	}
	return post, nil
}

// AddComment appends a comment by the caller to the post
func (s *FeedService) AddComment(ctx context.Context, postID, content string) (*models.Post, error) {
	d, err := s.gate.Authorize(ctx, models.PostKind.Name, auth.ActionComment)
	if err != nil {
		return nil, err
	}
	content, err = checkText("content", content, maxCommentLength)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		AuthorID:   d.Principal.ID,
		AuthorRole: string(d.Principal.Role),
		Content:    content,
		CreatedAt:  s.now().Truncate(time.Millisecond),
	}
	post, err := s.posts.Modify(ctx, postID, func(p *models.Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(websocket.EventCommentAdded, postID, d.Principal.ID, comment)
	return post, nil
}

// DeleteComment removes a comment and reports whether it existed.
// Comment authors may delete their own comments.
func (s *FeedService) DeleteComment(ctx context.Context, postID, commentID string) (bool, error) {
	d, err := s.gate.Authorize(ctx, auth.ResourceComment, auth.ActionDelete)
	if err != nil {
		return false, err
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	idx := commentIndex(post.Comments, commentID)
	if idx < 0 {
		return false, nil
	}
	if err := s.gate.Allow(d, auth.Target{ID: commentID, OwnerID: post.Comments[idx].AuthorID}); err != nil {
		return false, err
	}

	removed := false
	_, err = s.posts.Modify(ctx, postID, func(p *models.Post) error {
		// The post may have changed since it was read
		if i := commentIndex(p.Comments, commentID); i >= 0 {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			removed = true
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}

	if removed {
		s.publish(websocket.EventCommentDeleted, postID, d.Principal.ID, map[string]string{"commentId": commentID})
	}
	return removed, nil
}

func checkText(field, text string, max int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewValidationError(field, "is required")
	}
	if len([]rune(text)) > max {
		return "", apperrors.NewValidationError(field, "is too long")
	}
	return text, nil
}

func indexOf(items []string, v string) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}

func commentIndex(comments []models.Comment, id string) int {
	for i, c := range comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}
