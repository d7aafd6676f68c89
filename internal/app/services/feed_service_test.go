package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	"github.com/yigit/campusnet/internal/pkg/websocket"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	a := f.student(t, "21CS001", "a@campus.edu")

	_, err := f.svc.Feed.CreatePost(as(studentPrincipal(a)), "hello")
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.Feed.CreatePost(as(lecturer), "   ")
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "content", verr.Field)

	post, err := f.svc.Feed.CreatePost(as(lecturer), " Hackathon on Friday ")
	require.NoError(t, err)
	assert.Equal(t, "Hackathon on Friday", post.Content)
	assert.Equal(t, lecturer.ID, post.AuthorID)
	assert.Equal(t, "faculty", post.AuthorRole)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)

	byAdmin, err := f.svc.Feed.CreatePost(as(admin), "Exams moved")
	require.NoError(t, err)
	assert.Equal(t, "admin", byAdmin.AuthorRole)

	posts, err := f.svc.Feed.ListPosts(as(studentPrincipal(a)), nil)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	assert.Equal(t, []string{websocket.EventPostCreated, websocket.EventPostCreated}, f.events.types())
}

func TestLikesAreASet(t *testing.T) {
	f := newFixture(t)
	a := f.student(t, "21CS001", "a@campus.edu")
	asA := as(studentPrincipal(a))
	post, err := f.svc.Feed.CreatePost(as(lecturer), "hello")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		post, err = f.svc.Feed.LikePost(asA, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{a.ID}, post.Likes)

	post, err = f.svc.Feed.LikePost(as(lecturer), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, post.LikeCount())

	for i := 0; i < 2; i++ {
		post, err = f.svc.Feed.UnlikePost(asA, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{lecturer.ID}, post.Likes)

	assert.Equal(t, []string{
		websocket.EventPostCreated,
		websocket.EventPostLiked,
		websocket.EventPostLiked,
		websocket.EventPostUnliked,
	}, f.events.types())

	_, err = f.svc.Feed.LikePost(asA, "00000000-0000-4000-8000-00000000abcd")
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	a := f.student(t, "21CS001", "a@campus.edu")
	b := f.student(t, "21CS002", "b@campus.edu")
	asA, asB := as(studentPrincipal(a)), as(studentPrincipal(b))

	post, err := f.svc.Feed.CreatePost(as(lecturer), "hello")
	require.NoError(t, err)

	post, err = f.svc.Feed.AddComment(asA, post.ID, "first")
	require.NoError(t, err)
	post, err = f.svc.Feed.AddComment(asB, post.ID, "second")
	require.NoError(t, err)
	require.Len(t, post.Comments, 2)
	assert.Equal(t, "first", post.Comments[0].Content)
	assert.Equal(t, "student", post.Comments[0].AuthorRole)
	assert.False(t, post.Comments[0].CreatedAt.IsZero())

	first := post.Comments[0].ID
	_, err = f.svc.Feed.DeleteComment(asB, post.ID, first)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	deleted, err := f.svc.Feed.DeleteComment(asA, post.ID, first)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.svc.Feed.DeleteComment(asA, post.ID, first)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.svc.Feed.DeleteComment(as(admin), post.ID, post.Comments[1].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := f.svc.Feed.GetPost(asA, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	other := lecturerWithID("00000000-0000-4000-8000-000000000009")

	post, err := f.svc.Feed.CreatePost(as(lecturer), "hello")
	require.NoError(t, err)

	_, err = f.svc.Feed.DeletePost(as(other), post.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	deleted, err := f.svc.Feed.DeletePost(as(lecturer), post.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.svc.Feed.DeletePost(as(lecturer), post.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.svc.Feed.GetPost(as(lecturer), post.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestFeedWithoutPublisher(t *testing.T) {
	f := newFixture(t)
	feed := NewFeedService(f.repos.Posts, f.svc.Gate, nil, f.svc.Feed.logger)

	_, err := feed.CreatePost(as(lecturer), "quiet")
	require.NoError(t, err)
	_, err = feed.ListPosts(context.Background(), nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}
