package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/models/dto"
	"github.com/yigit/campusnet/internal/app/services"
	"github.com/yigit/campusnet/internal/middleware"
)

// FeedController handles posts, likes and comments
type FeedController struct {
	feed *services.FeedService
}

// NewFeedController creates a new FeedController
func NewFeedController(feed *services.FeedService) *FeedController {
	return &FeedController{feed: feed}
}

// ListPosts returns the feed
// @Summary List posts
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param authorId query string false "Author ID"
// @Param contentContains query string false "Substring of the content"
// @Success 200 {object} dto.APIResponse{data=[]models.Post} "Posts retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Router /posts [get]
func (c *FeedController) ListPosts(ctx *gin.Context) {
	criteria, err := criteriaFromQuery(models.PostKind, ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	posts, err := c.feed.ListPosts(ctx.Request.Context(), criteria)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts, ""))
}

// GetPost returns one post
// @Summary Get a post
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id} [get]
func (c *FeedController) GetPost(ctx *gin.Context) {
	post, err := c.feed.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post, ""))
}

// CreatePost publishes a post
// @Summary Create a post
// @Description Faculty and admins only
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post content"
// @Success 201 {object} dto.APIResponse{data=models.Post} "Post created successfully"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /posts [post]
func (c *FeedController) CreatePost(ctx *gin.Context) {
	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	post, err := c.feed.CreatePost(ctx.Request.Context(), req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post, "Post created successfully"))
}

// DeletePost removes a post
// @Summary Delete a post
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DeleteResult} "Delete result"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /posts/{id} [delete]
func (c *FeedController) DeletePost(ctx *gin.Context) {
	deleted, err := c.feed.DeletePost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DeleteResult{Deleted: deleted}, ""))
}

// LikePost likes a post on behalf of the caller
// @Summary Like a post
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post liked"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/like [post]
func (c *FeedController) LikePost(ctx *gin.Context) {
	post, err := c.feed.LikePost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post, ""))
}

// UnlikePost withdraws the caller's like
// @Summary Unlike a post
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Post} "Like removed"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/like [delete]
func (c *FeedController) UnlikePost(ctx *gin.Context) {
	post, err := c.feed.UnlikePost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post, ""))
}

// AddComment comments on a post
// @Summary Comment on a post
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID" Format(uuid)
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Post} "Comment added"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (c *FeedController) AddComment(ctx *gin.Context) {
	var req dto.CommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	post, err := c.feed.AddComment(ctx.Request.Context(), ctx.Param("id"), req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post, "Comment added successfully"))
}

// DeleteComment removes a comment
// @Summary Delete a comment
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID" Format(uuid)
// @Param commentId path string true "Comment ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DeleteResult} "Delete result"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /posts/{id}/comments/{commentId} [delete]
func (c *FeedController) DeleteComment(ctx *gin.Context) {
	deleted, err := c.feed.DeleteComment(ctx.Request.Context(), ctx.Param("id"), ctx.Param("commentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DeleteResult{Deleted: deleted}, ""))
}
