// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/news-cms/internal/config"
	"github.com/iliyamo/news-cms/internal/handler"
	"github.com/iliyamo/news-cms/internal/middleware"
	"github.com/iliyamo/news-cms/internal/model"
	"github.com/iliyamo/news-cms/internal/utils"
)

// Deps bundles everything the routes need.  Explicit construction: the
// caller builds each handler and passes it in, no registry in between.
type Deps struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	News       *handler.NewsHandler
	Issuer     *utils.Issuer
	Redis      *redis.Client
	UploadDir  string
}

// Register sets up all routes.  The guard chain order is fixed: JWTAuth
// always precedes RequireRole, so a role check can never run without an
// authenticated identity in context.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/healthz", handler.Health)
	e.Static("/uploads", d.UploadDir)

	authed := middleware.JWTAuth(d.Issuer)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Session endpoints.  Rate-limited: login and refresh are the natural
	// brute-force targets.
	auth := e.Group("/v1/auth", middleware.RateLimit(config.LoadRateLimitConfig(), d.Redis))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout, authed)

	// User management is admin territory end to end.
	users := e.Group("/v1/users", authed, adminOnly)
	users.GET("", d.Users.List)
	users.GET("/:id", d.Users.Get)
	users.POST("", d.Users.Create)
	users.PATCH("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete)

	// Categories: reading needs a session, writing needs ADMIN.
	categories := e.Group("/v1/categories", authed)
	categories.GET("", d.Categories.List)
	categories.GET("/:id", d.Categories.Get)
	categories.POST("", d.Categories.Create, adminOnly)
	categories.PATCH("/:id", d.Categories.Update, adminOnly)
	categories.DELETE("/:id", d.Categories.Delete, adminOnly)

	// News: public reads (cached), admin writes.
	cache := middleware.ResponseCache(config.LoadCacheConfig(), d.Redis)
	e.GET("/v1/news", d.News.List, cache)
	e.GET("/v1/news/:id", d.News.Get)
	e.POST("/v1/news", d.News.Create, authed, adminOnly)
	e.PATCH("/v1/news/:id", d.News.Update, authed, adminOnly)
	e.DELETE("/v1/news/:id", d.News.Delete, authed, adminOnly)
}
