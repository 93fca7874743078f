package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instaclone/internal/domain"
	"instaclone/internal/service"
)

// PostHandler expone posts, likes, comentarios y bookmarks.
type PostHandler struct {
	logger   *zap.Logger
	postServ *service.PostService
}

func NewPostHandler(logger *zap.Logger, postServ *service.PostService) *PostHandler {
	return &PostHandler{logger: logger, postServ: postServ}
}

// AddPost maneja POST /post/addpost (multipart: caption, image).
func (h *PostHandler) AddPost(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}

	img, closeFn, err := formImage(c, "image")
	if err != nil {
		respondError(c, h.logger, "read post image", err)
		return
	}
	defer closeFn()

	post, err := h.postServ.AddPost(c.Request.Context(), identity.UserID, c.PostForm("caption"), img)
	if err != nil {
		respondError(c, h.logger, "add post", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New post added",
		"post":    post,
	})
}

// Feed maneja GET /post/all.
func (h *PostHandler) Feed(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	posts, err := h.postServ.Feed(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, "feed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

// UserPosts maneja GET /post/userpost/all.
func (h *PostHandler) UserPosts(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	posts, err := h.postServ.UserPosts(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, "user posts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

func (h *PostHandler) Like(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	post, err := h.postServ.Like(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "like post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post liked", "post": post})
}

func (h *PostHandler) Dislike(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	post, err := h.postServ.Dislike(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "dislike post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post disliked", "post": post})
}

// Comment maneja POST /post/:id/comment.
func (h *PostHandler) Comment(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	comment, err := h.postServ.Comment(c.Request.Context(), identity.UserID, c.Param("id"), req.Text)
	if err != nil {
		respondError(c, h.logger, "comment post", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Comment Added",
		"comment": comment,
	})
}

// Comments maneja GET /post/:id/comment/all.
func (h *PostHandler) Comments(c *gin.Context) {
	comments, err := h.postServ.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "list comments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comments": comments})
}

// Delete maneja DELETE /post/delete/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	if err := h.postServ.DeletePost(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		respondError(c, h.logger, "delete post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted"})
}

// Bookmark maneja POST /post/:id/bookmark.
func (h *PostHandler) Bookmark(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	action, err := h.postServ.ToggleBookmark(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "bookmark post", err)
		return
	}
	message := "Post bookmarked"
	if action == domain.BookmarkRemoved {
		message = "Post removed from bookmark"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "action": action})
}
