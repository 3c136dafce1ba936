// Package router builds the gin engine: middleware chain and routes.
package router

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authmw "blog_backend/internal/feature/auth/transport/middleware"
	posthandler "blog_backend/internal/feature/post/transport/handler"
	"blog_backend/internal/platform/csrf"
	platformhandler "blog_backend/internal/platform/http/handler"
	"blog_backend/internal/platform/http/middleware"
	"blog_backend/internal/shared/ratelimiter"
)

// Deps are the components the routes are served by.
type Deps struct {
	Logger    *slog.Logger
	Templates *template.Template
	CSRF      csrf.Config
	Identity  authmw.IdentityResolver
	Cookie    authmw.SessionCookie
	Limiter   ratelimiter.Limiter
	DB        platformhandler.Pinger

	Auth  *authhandler.AuthHandler
	Posts *posthandler.PostHandler
}

// NewRouter wires the middleware chain and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Logger), middleware.Logger(d.Logger))
	r.SetHTMLTemplate(d.Templates)

	// No session or CSRF handling for probes.
	health := platformhandler.Health(d.DB)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	site := r.Group("/")
	site.Use(csrf.Middleware(d.CSRF), authmw.LoadIdentity(d.Identity, d.Cookie))
	{
		site.GET("/", d.Posts.Index)
		site.GET("/post/:slug/", d.Posts.Show)

		limited := site.Group("/")
		limited.Use(middleware.RateLimit(d.Limiter, http.MethodPost))
		{
			limited.GET("/login", d.Auth.LoginPage)
			limited.POST("/login", d.Auth.Login)
			limited.GET("/signup/", d.Auth.SignupPage)
			limited.POST("/signup/", d.Auth.Signup)
		}
		site.POST("/logout", d.Auth.Logout)
		site.POST("/logout/all", d.Auth.LogoutAll)

		admin := site.Group("/admin")
		admin.Use(authmw.AuthRequired())
		{
			admin.GET("/post/", d.Posts.New)
			admin.POST("/post/", d.Posts.Create)
		}
	}

	// Unknown routes still get the session so the 404 page shows who is
	// logged in.
	r.NoRoute(csrf.Middleware(d.CSRF), authmw.LoadIdentity(d.Identity, d.Cookie), posthandler.NotFound)
	return r
}
