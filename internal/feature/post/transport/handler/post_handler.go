// Package handler serves the public post pages and the post editor.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/transport/middleware"
	"blog_backend/internal/feature/post/domain/entity"
	"blog_backend/internal/feature/post/transport/http/dto"
	"blog_backend/internal/feature/post/usecase"
	"blog_backend/internal/platform/web"
	"blog_backend/internal/shared/validation"
)

// PostUsecase defines the post store operations used by the pages.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PostUsecase interface {
	Create(ctx context.Context, author entity.Author, title, category, content string) (*entity.Post, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Post, error)
	ListAll(ctx context.Context) ([]entity.Post, error)
}

// PostHandler handles the post pages.
type PostHandler struct {
	uc PostUsecase
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(uc PostUsecase) *PostHandler {
	return &PostHandler{uc: uc}
}

// Index lists every post, newest first.
//
// GET /
func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.uc.ListAll(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageIndex, middleware.ViewData(c, gin.H{"Posts": posts}))
}

// Show renders a single post.
//
// GET /post/:slug/
func (h *PostHandler) Show(c *gin.Context) {
	post, err := h.uc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, usecase.ErrPostNotFound) {
			NotFound(c)
			return
		}
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PagePostView, middleware.ViewData(c, gin.H{
		"Title": post.Title,
		"Post":  post,
	}))
}

// New renders the empty post form. Requires a logged-in user.
//
// GET /admin/post/
func (h *PostHandler) New(c *gin.Context) {
	h.renderForm(c, http.StatusOK, dto.PostForm{}, nil, "")
}

// Create stores a post owned by the current user and redirects to it.
//   - invalid fields: 400
//   - slug still taken after the retry: 409
//
// POST /admin/post/
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusSeeOther, middleware.LoginURL(c.Request.URL.RequestURI()))
		return
	}

	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("post form binding failed", "error", err, "user_id", user.ID)
		h.renderForm(c, http.StatusBadRequest, form, nil, "Invalid request.")
		return
	}

	author := entity.Author{ID: user.ID, Name: user.Name}
	post, err := h.uc.Create(c.Request.Context(), author, form.Title, form.Category, form.Content)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			h.renderForm(c, http.StatusBadRequest, form, verrs, "")
		case errors.Is(err, usecase.ErrSlugConflict):
			slog.Warn("post create conflicted", "error", err, "user_id", user.ID)
			h.renderForm(c, http.StatusConflict, form, nil, "Another post with this title was just published. Please try again.")
		default:
			renderError(c, err)
		}
		return
	}

	c.Redirect(http.StatusSeeOther, post.URL())
}

// NotFound renders the 404 page. It doubles as the engine's NoRoute handler.
func NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, web.PageNotFound, middleware.ViewData(c, gin.H{"Title": "Not found"}))
}

func (h *PostHandler) renderForm(c *gin.Context, status int, form dto.PostForm, errs validation.Errors, message string) {
	c.HTML(status, web.PagePostForm, middleware.ViewData(c, gin.H{
		"Title":  "New post",
		"Form":   form,
		"Errors": errs.Fields(),
		"Error":  message,
	}))
}

func renderError(c *gin.Context, err error) {
	slog.Error("request failed", "error", err, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
	c.HTML(http.StatusInternalServerError, web.PageError, middleware.ViewData(c, gin.H{"Title": "Error"}))
}
