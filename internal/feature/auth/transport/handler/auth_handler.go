// Package handler serves the signup, login and logout pages.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/auth/transport/middleware"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/web"
	"blog_backend/internal/shared/redirect"
	"blog_backend/internal/shared/validation"
)

const invalidCredentialsMessage = "Invalid email or password."

// Credentials registers and verifies users.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type Credentials interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Verify(ctx context.Context, email, password string) (*entity.User, error)
}

// Sessions starts and ends login sessions.
type Sessions interface {
	Establish(ctx context.Context, user *entity.User, remember bool, client usecase.ClientInfo) (string, *entity.Session, error)
	End(ctx context.Context, sessionID string) error
	EndAll(ctx context.Context, userID uint) error
}

// AuthHandler handles the auth pages.
type AuthHandler struct {
	credentials Credentials
	sessions    Sessions
	cookie      middleware.SessionCookie
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(credentials Credentials, sessions Sessions, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{credentials: credentials, sessions: sessions, cookie: cookie}
}

// LoginPage renders the login form. Logged-in users are sent straight to
// the sanitized next target.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, redirect.Sanitize(c.Query("next")))
		return
	}
	form := dto.LoginForm{Next: redirect.Sanitize(c.Query("next"))}
	h.renderLogin(c, http.StatusOK, form, nil, "")
}

// Login verifies the submitted credentials, starts a session and redirects
// to the sanitized next target.
//   - missing or malformed fields: 400
//   - wrong email or password: 401 with a generic message
func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, redirect.Sanitize(c.DefaultPostForm("next", c.Query("next"))))
		return
	}

	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("login form binding failed", "error", err, "remote_addr", c.ClientIP())
		h.renderLogin(c, http.StatusBadRequest, form, nil, "Invalid request.")
		return
	}
	form.Next = redirect.Sanitize(form.Next)

	if err := validation.Struct(form); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			renderError(c, err)
			return
		}
		h.renderLogin(c, http.StatusBadRequest, form, verrs, "")
		return
	}

	user, err := h.credentials.Verify(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "email", form.Email, "remote_addr", c.ClientIP())
			h.renderLogin(c, http.StatusUnauthorized, form, nil, invalidCredentialsMessage)
			return
		}
		renderError(c, err)
		return
	}

	if err := h.startSession(c, user, form.Remember); err != nil {
		renderError(c, err)
		return
	}
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, form.Next)
}

// SignupPage renders the signup form. Logged-in users are sent home.
func (h *AuthHandler) SignupPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, redirect.DefaultPath)
		return
	}
	h.renderSignup(c, http.StatusOK, dto.SignupForm{}, nil, "")
}

// Signup registers a user and logs them in with a browser-session cookie.
//   - invalid fields: 400
//   - email already registered: 409
func (h *AuthHandler) Signup(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, redirect.DefaultPath)
		return
	}

	var form dto.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("signup form binding failed", "error", err, "remote_addr", c.ClientIP())
		h.renderSignup(c, http.StatusBadRequest, form, nil, "Invalid request.")
		return
	}

	user, err := h.credentials.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			h.renderSignup(c, http.StatusBadRequest, form, verrs, "")
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("signup failed", "error", err, "email", form.Email, "remote_addr", c.ClientIP())
			verrs = verrs.Add("email", "A user with this email already exists.")
			h.renderSignup(c, http.StatusConflict, form, verrs, "")
		default:
			renderError(c, err)
		}
		return
	}

	if err := h.startSession(c, user, false); err != nil {
		renderError(c, err)
		return
	}
	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, redirect.DefaultPath)
}

// Logout ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if identity, ok := middleware.CurrentIdentity(c); ok && identity.Session != nil {
		if err := h.sessions.End(c.Request.Context(), identity.Session.ID); err != nil {
			renderError(c, err)
			return
		}
	}
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, redirect.DefaultPath)
}

// LogoutAll ends every session of the current user.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		if err := h.sessions.EndAll(c.Request.Context(), user.ID); err != nil {
			renderError(c, err)
			return
		}
	}
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, redirect.DefaultPath)
}

func (h *AuthHandler) startSession(c *gin.Context, user *entity.User, remember bool) error {
	client := usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
	token, session, err := h.sessions.Establish(c.Request.Context(), user, remember, client)
	if err != nil {
		return err
	}
	h.cookie.Set(c, token, remember, session.ExpiresAt)
	return nil
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, form dto.LoginForm, errs validation.Errors, message string) {
	c.HTML(status, web.PageLogin, middleware.ViewData(c, gin.H{
		"Title":  "Log in",
		"Form":   form,
		"Next":   form.Next,
		"Errors": errs.Fields(),
		"Error":  message,
	}))
}

func (h *AuthHandler) renderSignup(c *gin.Context, status int, form dto.SignupForm, errs validation.Errors, message string) {
	c.HTML(status, web.PageSignup, middleware.ViewData(c, gin.H{
		"Title":  "Sign up",
		"Form":   form,
		"Errors": errs.Fields(),
		"Error":  message,
	}))
}

func renderError(c *gin.Context, err error) {
	slog.Error("request failed", "error", err, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
	c.HTML(http.StatusInternalServerError, web.PageError, middleware.ViewData(c, gin.H{"Title": "Error"}))
}
